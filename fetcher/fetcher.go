// Package fetcher assembles complete candle series for arbitrary time
// windows, reusing the local cache and paginating exchange calls under the
// per-request row limit.
package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/coinfolio/exchange"
	"github.com/rustyeddy/coinfolio/market"
)

const (
	// DefaultMaxBarsPerCall is the exchange's hard cap on candle rows per
	// historic-rates request.
	DefaultMaxBarsPerCall = 300
	// DefaultRequestDelay spaces out sub-requests to stay under the global
	// rate limit.
	DefaultRequestDelay = 500 * time.Millisecond
	// DefaultDelayAfterCalls is how many sub-requests go out back-to-back
	// before the delay kicks in.
	DefaultDelayAfterCalls = 5
)

// RateSource serves raw candle rows for a window. *exchange.Client satisfies
// it; tests use a stub.
type RateSource interface {
	HistoricRates(ctx context.Context, product market.Product, granularity time.Duration, start, end time.Time) (market.Series, error)
}

// Store is the candle cache contract the fetcher needs.
type Store interface {
	Load(product market.Product) (market.Series, bool, error)
	Store(series market.Series, product market.Product) error
}

// Options tune a Fetcher. Zero values select the defaults above and a
// one-hour granularity.
type Options struct {
	Granularity     time.Duration
	MaxBarsPerCall  int
	RequestDelay    time.Duration
	DelayAfterCalls int
}

func (o Options) withDefaults() Options {
	o.Granularity = market.ClampGranularity(o.Granularity)
	if o.MaxBarsPerCall <= 0 {
		o.MaxBarsPerCall = DefaultMaxBarsPerCall
	}
	if o.RequestDelay <= 0 {
		o.RequestDelay = DefaultRequestDelay
	}
	if o.DelayAfterCalls <= 0 {
		o.DelayAfterCalls = DefaultDelayAfterCalls
	}
	return o
}

type Fetcher struct {
	source RateSource
	cache  Store
	opts   Options
	log    zerolog.Logger
	now    func() time.Time
}

func New(source RateSource, cache Store, opts Options, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		cache:  cache,
		opts:   opts.withDefaults(),
		log:    log,
		now:    time.Now,
	}
}

// Fetch returns the candle series for product covering (start, end] at the
// configured granularity, extending the cached series as needed. A zero end
// means now. Both bounds are truncated to the granularity before use, and
// the returned slice starts strictly after the truncated start.
//
// A sub-window the exchange rejects is logged and skipped; the rest of the
// range is still fetched. Transport failures abort. An entirely empty result
// is returned as an empty series, not an error.
func (f *Fetcher) Fetch(ctx context.Context, product market.Product, start, end time.Time) (market.Series, error) {
	gran := f.opts.Granularity
	if end.IsZero() {
		end = f.now()
	}
	start = market.TruncateTo(start, gran)
	end = market.TruncateTo(end, gran)

	cached, ok, err := f.cache.Load(product)
	if err != nil {
		return nil, err
	}

	var fetched market.Series
	calls := 0
	if !ok {
		fetched, err = f.fetchRange(ctx, product, start, end, &calls)
		if err != nil {
			return nil, err
		}
	} else {
		if first := cached.FirstTime(); first.After(start) {
			head, err := f.fetchRange(ctx, product, start, first, &calls)
			if err != nil {
				return nil, err
			}
			fetched = append(fetched, head...)
		}
		if last := cached.LastTime(); last.Before(end) {
			tail, err := f.fetchRange(ctx, product, last, end, &calls)
			if err != nil {
				return nil, err
			}
			fetched = append(fetched, tail...)
		}
	}

	merged := market.Merge(cached, fetched)
	if len(merged) == 0 {
		return nil, nil
	}

	if err := f.cache.Store(merged, product); err != nil {
		return nil, err
	}
	return merged.After(start), nil
}

// fetchRange pulls [from, to) in sub-windows of at most MaxBarsPerCall bars,
// issued strictly sequentially. calls counts sub-requests across the whole
// Fetch so the rate-limit delay applies to the combined gap fills.
func (f *Fetcher) fetchRange(ctx context.Context, product market.Product, from, to time.Time, calls *int) (market.Series, error) {
	window := f.opts.Granularity * time.Duration(f.opts.MaxBarsPerCall)

	var out market.Series
	for ws := from; ws.Before(to); ws = ws.Add(window) {
		we := ws.Add(window)
		if we.After(to) {
			we = to
		}

		if *calls >= f.opts.DelayAfterCalls {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.opts.RequestDelay):
			}
		}

		rows, err := f.source.HistoricRates(ctx, product, f.opts.Granularity, ws, we)
		*calls++
		if err != nil {
			var apiErr *exchange.APIError
			if errors.As(err, &apiErr) {
				f.log.Warn().
					Str("product", string(product)).
					Time("window_start", ws).
					Time("window_end", we).
					Str("message", apiErr.Message).
					Msg("skipping rejected candle window")
				continue
			}
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
