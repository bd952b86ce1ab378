package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/coinfolio/market"
)

// SimulateBuy appends a synthetic buy to the ledger: amount units of the
// product's base currency acquired at the given time for payment USD
// (negative, cash out). The running balance continues from the currency's
// latest entry, so the currency must already have history.
func (l *Ledger) SimulateBuy(product market.Product, at time.Time, amount, payment decimal.Decimal) error {
	currency := product.Base()
	entries := l.entries[currency]
	if len(entries) == 0 {
		return fmt.Errorf("simulate buy: no history for %s", currency)
	}

	prev := entries[len(entries)-1].Balance
	entry := Entry{
		Currency:  currency,
		CreatedAt: at.UTC(),
		Amount:    amount,
		Balance:   prev.Add(amount),
		Type:      "simulated buy",
		Detail:    TradeDetail{ProductID: product},
		Payment:   payment,
	}

	entries = append(entries, entry)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	l.entries[currency] = entries
	return nil
}
