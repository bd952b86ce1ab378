package market

import (
	"sort"
	"time"
)

// Series is a candle sequence for a single product, ordered by time once
// Sort has been called. A persisted series never contains duplicate
// timestamps.
type Series []Candle

// Sort orders the series ascending by time.
func (s Series) Sort() {
	sort.Slice(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
}

// Dedupe removes candles that repeat an earlier timestamp, keeping the first
// occurrence. Keep-first is the policy everywhere in this module: when a
// trade and its fee share an exact timestamp, or a fetch overlaps the cache,
// the record seen first wins.
func (s Series) Dedupe() Series {
	if len(s) < 2 {
		return s
	}
	out := make(Series, 0, len(s))
	seen := make(map[int64]bool, len(s))
	for _, c := range s {
		key := c.Time.UnixNano()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// Merge unions a and b by timestamp, a's record winning on collision, and
// returns the result sorted ascending.
func Merge(a, b Series) Series {
	merged := make(Series, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	merged = merged.Dedupe()
	merged.Sort()
	return merged
}

// After returns the sub-series with timestamps strictly greater than t.
// The series must be sorted.
func (s Series) After(t time.Time) Series {
	i := sort.Search(len(s), func(i int) bool { return s[i].Time.After(t) })
	return s[i:]
}

// FirstTime returns the earliest timestamp, or the zero time for an empty
// series.
func (s Series) FirstTime() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].Time
}

// LastTime returns the latest timestamp, or the zero time for an empty
// series.
func (s Series) LastTime() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Time
}

// CloseAfter returns the close of the first candle strictly after t. The
// boolean is false when no such candle exists. The series must be sorted.
func (s Series) CloseAfter(t time.Time) (float64, bool) {
	rest := s.After(t)
	if len(rest) == 0 {
		return 0, false
	}
	return rest[0].Close, true
}

// Times returns the series timestamps in order.
func (s Series) Times() []time.Time {
	ts := make([]time.Time, len(s))
	for i, c := range s {
		ts[i] = c.Time
	}
	return ts
}
