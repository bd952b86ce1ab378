package portfolio

import (
	"sort"
	"time"
)

// Point is one observation of a value series.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is a time-ordered value series.
type Series []Point

func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
}

// dedupeByTime drops points repeating an earlier timestamp, keep-first (same
// policy as candle series: the record seen first wins).
func (s Series) dedupeByTime() Series {
	out := make(Series, 0, len(s))
	seen := make(map[int64]bool, len(s))
	for _, p := range s {
		key := p.Time.UnixNano()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// Reindex projects the series onto timeline with last-known-value carry
// forward, zero before the first observation. Both the series and the
// timeline must be sorted ascending; the result has exactly one point per
// timeline instant.
func (s Series) Reindex(timeline []time.Time) Series {
	out := make(Series, 0, len(timeline))
	i := 0
	last := 0.0
	for _, t := range timeline {
		for i < len(s) && !s[i].Time.After(t) {
			last = s[i].Value
			i++
		}
		out = append(out, Point{Time: t, Value: last})
	}
	return out
}

// CumSum returns the running total of the series.
func (s Series) CumSum() Series {
	out := make(Series, len(s))
	total := 0.0
	for i, p := range s {
		total += p.Value
		out[i] = Point{Time: p.Time, Value: total}
	}
	return out
}

// Last returns the final point, or a zero Point for an empty series.
func (s Series) Last() Point {
	if len(s) == 0 {
		return Point{}
	}
	return s[len(s)-1]
}

// addInto accumulates s into dst pointwise. Both must share the same
// timeline.
func addInto(dst, s Series) {
	for i := range s {
		dst[i].Value += s[i].Value
	}
}

// mulPointwise multiplies two series sharing a timeline.
func mulPointwise(a, b Series) Series {
	out := make(Series, len(a))
	for i := range a {
		out[i] = Point{Time: a[i].Time, Value: a[i].Value * b[i].Value}
	}
	return out
}

// unionTimeline merges sorted timestamp sets into one sorted, de-duplicated
// timeline.
func unionTimeline(sets ...[]time.Time) []time.Time {
	var all []time.Time
	for _, set := range sets {
		all = append(all, set...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })

	out := all[:0]
	for _, t := range all {
		if len(out) == 0 || t.After(out[len(out)-1]) {
			out = append(out, t)
		}
	}
	return out
}
