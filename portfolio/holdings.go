package portfolio

import (
	"context"
	"time"

	"github.com/rustyeddy/coinfolio/exchange"
	"github.com/rustyeddy/coinfolio/ledger"
	"github.com/rustyeddy/coinfolio/market"
)

// TickerSource serves spot quotes. *exchange.Client satisfies it.
type TickerSource interface {
	ProductTicker(ctx context.Context, product market.Product) (exchange.Ticker, error)
}

// HoldingValuation is one holding marked to the current spot price.
type HoldingValuation struct {
	Product market.Product
	Time    time.Time // when the holding was acquired
	Amount  float64
	Price   float64
	Value   float64 // Price * Amount
	Payment float64 // USD that funded the buy, negative
	AbsGain float64 // Payment + Value
}

// GainRate returns the holding's percentage gain on the cash paid. It is not
// computable when no payment was attributable (ok=false), never infinite.
func (v HoldingValuation) GainRate() (float64, bool) {
	if v.Payment == 0 {
		return 0, false
	}
	return v.AbsGain / -v.Payment * 100, true
}

// CurrentHoldings values every asset-acquiring entry at the current ticker
// price. One ticker call per distinct product.
func CurrentHoldings(ctx context.Context, src TickerSource, l *ledger.Ledger) ([]HoldingValuation, error) {
	prices := make(map[market.Product]float64)

	var out []HoldingValuation
	for _, h := range l.Holdings() {
		td, ok := h.Detail.(ledger.TradeDetail)
		if !ok || td.ProductID == "" {
			continue
		}

		price, ok := prices[td.ProductID]
		if !ok {
			tick, err := src.ProductTicker(ctx, td.ProductID)
			if err != nil {
				return nil, err
			}
			price = tick.Price.InexactFloat64()
			prices[td.ProductID] = price
		}

		amount := h.Amount.InexactFloat64()
		payment := h.Payment.InexactFloat64()
		value := price * amount
		out = append(out, HoldingValuation{
			Product: td.ProductID,
			Time:    h.CreatedAt,
			Amount:  amount,
			Price:   price,
			Value:   value,
			Payment: payment,
			AbsGain: payment + value,
		})
	}
	return out, nil
}
