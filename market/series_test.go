package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func hourly(t *testing.T, start time.Time, closes ...float64) Series {
	t.Helper()

	s := make(Series, 0, len(closes))
	for i, c := range closes {
		s = append(s, Candle{Time: start.Add(time.Duration(i) * time.Hour), Close: c})
	}
	return s
}

func TestDedupeKeepsFirst(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Time: t0, Close: 100},
		{Time: t0.Add(time.Hour), Close: 110},
		{Time: t0, Close: 999}, // duplicate, must lose
	}

	got := s.Dedupe()
	assert.Len(t, got, 2)
	assert.Equal(t, 100.0, got[0].Close)
}

func TestMergeOverlappingRanges(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cached := hourly(t, t0.Add(time.Hour), 11, 12, 13)  // [t1,t3]
	fetched := hourly(t, t0, 10, 91, 92)                // [t0,t2], overlaps t1,t2

	got := Merge(cached, fetched)

	assert.Len(t, got, 4)
	assert.True(t, got[0].Time.Equal(t0))
	assert.True(t, got[3].Time.Equal(t0.Add(3*time.Hour)))
	// Cached records win on collision.
	assert.Equal(t, 11.0, got[1].Close)
	assert.Equal(t, 12.0, got[2].Close)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].Time.After(got[i-1].Time))
	}
}

func TestAfterIsExclusive(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := hourly(t, t0, 1, 2, 3)

	got := s.After(t0)
	assert.Len(t, got, 2)
	assert.True(t, got[0].Time.Equal(t0.Add(time.Hour)))

	assert.Empty(t, s.After(t0.Add(5*time.Hour)))
}

func TestCloseAfter(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := hourly(t, t0, 6000, 7000)

	c, ok := s.CloseAfter(t0.Add(30 * time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 7000.0, c)

	_, ok = s.CloseAfter(t0.Add(time.Hour))
	assert.False(t, ok)
}

func TestClampGranularity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Hour, ClampGranularity(0))
	assert.Equal(t, time.Hour, ClampGranularity(time.Minute))
	assert.Equal(t, 6*time.Hour, ClampGranularity(6*time.Hour))
}

func TestProductHelpers(t *testing.T) {
	t.Parallel()

	p := Product("BTC-USD")
	assert.Equal(t, "BTC", p.Base())
	assert.Equal(t, "USD", p.Quote())
	assert.Equal(t, "BTCUSD", p.TableName())
	assert.Equal(t, Product("LTC-USD"), ProductFor("LTC"))
}
