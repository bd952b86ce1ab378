// Package portfolio rebuilds an account's valuation history from its
// normalized ledger and historical candles: one value series per held asset,
// an aggregate portfolio value series, and a cumulative principal series,
// all aligned on a single timeline.
package portfolio

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/coinfolio/ledger"
	"github.com/rustyeddy/coinfolio/market"
)

// CandleSource provides candle series per product from a start time to now.
// *fetcher.Fetcher satisfies it.
type CandleSource interface {
	Fetch(ctx context.Context, product market.Product, start, end time.Time) (market.Series, error)
}

// Reconstruction is the aligned result: Total, Principal and every PerAsset
// series share one strictly increasing timeline with no gaps after each
// series' first observation.
type Reconstruction struct {
	Timeline  []time.Time
	PerAsset  map[market.Product]Series
	Total     Series
	Principal Series
}

type Reconstructor struct {
	source CandleSource
	log    zerolog.Logger
}

func New(source CandleSource, log zerolog.Logger) *Reconstructor {
	return &Reconstructor{source: source, log: log}
}

// Reconstruct builds the portfolio history for a ledger. Products without
// resolvable candles and principal events without a subsequent candle
// degrade to zero/absent contributions; transport failures from the candle
// source abort.
func (r *Reconstructor) Reconstruct(ctx context.Context, l *ledger.Ledger) (*Reconstruction, error) {
	products := l.Products()

	// Candle history per held product, from its first acquisition.
	candles := make(map[market.Product]market.Series, len(products))
	for _, p := range products {
		first, ok := l.EarliestHolding(p)
		if !ok {
			continue
		}
		series, err := r.source.Fetch(ctx, p, first, time.Time{})
		if err != nil {
			return nil, err
		}
		if len(series) == 0 {
			r.log.Warn().Str("product", string(p)).Msg("no candles for held product")
		}
		candles[p] = series
	}

	timeline := timelineOf(products, candles)

	result := &Reconstruction{
		Timeline: timeline,
		PerAsset: make(map[market.Product]Series, len(products)),
		Total:    zeroSeries(timeline),
	}

	for _, p := range products {
		prices := closeSeries(candles[p]).Reindex(timeline)
		balances := balanceSeries(l.ProductEntries(p)).Reindex(timeline)
		value := mulPointwise(prices, balances)
		result.PerAsset[p] = value
		addInto(result.Total, value)
	}

	// Cash on top of the asset values.
	cash := balanceSeries(l.USD()).Reindex(timeline)
	addInto(result.Total, cash)

	principal, err := r.principalSeries(ctx, l, candles)
	if err != nil {
		return nil, err
	}
	result.Principal = principal.Reindex(timeline)

	return result, nil
}

// principalSeries values every external flow in USD and cumulates them. USD
// transfers count at face value; forked assets are valued at the close of
// the first candle strictly after the credit. Events with no subsequent
// candle are dropped.
func (r *Reconstructor) principalSeries(ctx context.Context, l *ledger.Ledger, candles map[market.Product]market.Series) (Series, error) {
	var events Series
	for _, ev := range l.PrincipalEvents() {
		if ev.Currency == ledger.CashCurrency {
			events = append(events, Point{Time: ev.Time, Value: ev.Amount.InexactFloat64()})
			continue
		}

		product := market.ProductFor(ev.Currency)
		series, ok := candles[product]
		if !ok {
			fetched, err := r.source.Fetch(ctx, product, ev.Time, time.Time{})
			if err != nil {
				return nil, err
			}
			candles[product] = fetched
			series = fetched
		}

		close, ok := series.CloseAfter(ev.Time)
		if !ok {
			r.log.Warn().
				Str("currency", ev.Currency).
				Time("time", ev.Time).
				Msg("dropping principal event with no subsequent candle")
			continue
		}
		events = append(events, Point{Time: ev.Time, Value: close * ev.Amount.InexactFloat64()})
	}

	events.Sort()
	return events.CumSum(), nil
}

// timelineOf unions the candle timestamps of the held products.
func timelineOf(products []market.Product, candles map[market.Product]market.Series) []time.Time {
	sets := make([][]time.Time, 0, len(products))
	for _, p := range products {
		sets = append(sets, candles[p].Times())
	}
	return unionTimeline(sets...)
}

// closeSeries extracts the close prices of a candle series.
func closeSeries(s market.Series) Series {
	out := make(Series, 0, len(s))
	for _, c := range s {
		out = append(out, Point{Time: c.Time, Value: c.Close})
	}
	return out
}

// balanceSeries turns ledger entries into a running-balance series,
// keep-first on duplicate timestamps.
func balanceSeries(entries []ledger.Entry) Series {
	out := make(Series, 0, len(entries))
	for _, e := range entries {
		out = append(out, Point{Time: e.CreatedAt, Value: e.Balance.InexactFloat64()})
	}
	return out.dedupeByTime()
}

func zeroSeries(timeline []time.Time) Series {
	out := make(Series, len(timeline))
	for i, t := range timeline {
		out[i] = Point{Time: t}
	}
	return out
}
