package market

import "time"

// Candle represents one OHLCV (Open, High, Low, Close, Volume) bar.
type Candle struct {
	Time   time.Time
	Low    float64
	High   float64
	Open   float64
	Close  float64
	Volume float64
}

// MinGranularity is the finest candle granularity the exchange serves
// reliably over long spans. Anything finer gets clamped up.
const MinGranularity = time.Hour

// ClampGranularity returns g, or MinGranularity when g is finer than the
// exchange floor (or zero/negative).
func ClampGranularity(g time.Duration) time.Duration {
	if g < MinGranularity {
		return MinGranularity
	}
	return g
}

// TruncateTo normalizes t down to a granularity boundary in UTC.
func TruncateTo(t time.Time, g time.Duration) time.Time {
	return t.UTC().Truncate(g)
}
