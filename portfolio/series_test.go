package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(t0 time.Time, hours ...int) []time.Time {
	out := make([]time.Time, len(hours))
	for i, h := range hours {
		out[i] = t0.Add(time.Duration(h) * time.Hour)
	}
	return out
}

func TestReindexCarriesForward(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Time: t0.Add(2 * time.Hour), Value: 10},
		{Time: t0.Add(5 * time.Hour), Value: 20},
	}

	got := s.Reindex(ts(t0, 0, 1, 2, 3, 4, 5, 6))

	want := []float64{0, 0, 10, 10, 10, 20, 20}
	for i, w := range want {
		assert.Equal(t, w, got[i].Value, "index %d", i)
	}
	assert.Len(t, got, 7)
}

func TestReindexOntoSparserTimeline(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Time: t0, Value: 1},
		{Time: t0.Add(time.Hour), Value: 2},
		{Time: t0.Add(2 * time.Hour), Value: 3},
	}

	got := s.Reindex(ts(t0, 2))
	assert.Len(t, got, 1)
	assert.Equal(t, 3.0, got[0].Value)
}

func TestUnionTimeline(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got := unionTimeline(ts(t0, 0, 2, 4), ts(t0, 1, 2, 3), nil)

	assert.Equal(t, ts(t0, 0, 1, 2, 3, 4), got)
}

func TestCumSum(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Time: t0, Value: 1000},
		{Time: t0.Add(time.Hour), Value: -200},
	}

	got := s.CumSum()
	assert.Equal(t, 1000.0, got[0].Value)
	assert.Equal(t, 800.0, got[1].Value)
}

func TestDedupeByTimeKeepsFirst(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Time: t0, Value: 1},
		{Time: t0, Value: 2},
		{Time: t0.Add(time.Hour), Value: 3},
	}

	got := s.dedupeByTime()
	assert.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Value)
}
