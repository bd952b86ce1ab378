package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/coinfolio/exchange"
	"github.com/rustyeddy/coinfolio/market"
)

// Ledger is the full normalized transaction history, grouped by currency and
// sorted by timestamp within each currency.
type Ledger struct {
	currencies []string
	entries    map[string][]Entry
}

// rawDetail covers every detail field the exchange sends; the record type
// decides which variant it becomes.
type rawDetail struct {
	OrderID      string `json:"order_id"`
	TradeID      string `json:"trade_id"`
	ProductID    string `json:"product_id"`
	TransferID   string `json:"transfer_id"`
	TransferType string `json:"transfer_type"`
	Source       string `json:"source"`
}

// Normalize builds a Ledger from raw per-currency histories. Currencies with
// empty histories are dropped. Payment attribution runs for every holding;
// a holding whose trade id has no matching USD debit gets payment zero.
func Normalize(histories map[string][]exchange.LedgerRecord) (*Ledger, error) {
	l := &Ledger{entries: make(map[string][]Entry)}

	for currency, records := range histories {
		if len(records) == 0 {
			continue
		}
		entries := make([]Entry, 0, len(records))
		for _, rec := range records {
			detail, err := parseDetail(rec)
			if err != nil {
				return nil, fmt.Errorf("%s entry at %s: %w", currency, rec.CreatedAt, err)
			}
			entries = append(entries, Entry{
				Currency:  currency,
				CreatedAt: rec.CreatedAt.UTC(),
				Amount:    rec.Amount,
				Balance:   rec.Balance,
				Type:      rec.Type,
				Detail:    detail,
			})
		}
		// Stable keeps the exchange's order for entries sharing a
		// timestamp, which is what makes keep-first dedupe meaningful
		// downstream.
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		})
		l.entries[currency] = entries
		l.currencies = append(l.currencies, currency)
	}
	sort.Strings(l.currencies)

	l.attachPayments()
	return l, nil
}

func parseDetail(rec exchange.LedgerRecord) (Detail, error) {
	if len(rec.Details) == 0 {
		return NoDetail{}, nil
	}
	var raw rawDetail
	if err := json.Unmarshal(rec.Details, &raw); err != nil {
		return nil, fmt.Errorf("parse details: %w", err)
	}

	switch {
	case rec.Type == "transfer" || raw.TransferType != "":
		return TransferDetail{TransferID: raw.TransferID, TransferType: raw.TransferType}, nil
	case raw.Source != "":
		return ForkDetail{Source: raw.Source}, nil
	case raw.TradeID != "" || raw.ProductID != "":
		return TradeDetail{
			TradeID:   raw.TradeID,
			OrderID:   raw.OrderID,
			ProductID: market.Product(raw.ProductID),
		}, nil
	default:
		return NoDetail{}, nil
	}
}

// attachPayments computes the USD outflow funding each holding: the sum of
// negative-amount USD entries sharing the holding's trade id.
func (l *Ledger) attachPayments() {
	debits := make(map[string]decimal.Decimal)
	for _, e := range l.entries[CashCurrency] {
		if !e.Amount.IsNegative() {
			continue
		}
		if id := e.TradeID(); id != "" {
			debits[id] = debits[id].Add(e.Amount)
		}
	}

	for currency, entries := range l.entries {
		if currency == CashCurrency {
			continue
		}
		for i := range entries {
			if !entries[i].IsHolding() {
				continue
			}
			if id := entries[i].TradeID(); id != "" {
				entries[i].Payment = debits[id]
			}
		}
	}
}

// Currencies returns the currencies with history, sorted.
func (l *Ledger) Currencies() []string {
	return l.currencies
}

// Entries returns the sorted entries for one currency.
func (l *Ledger) Entries(currency string) []Entry {
	return l.entries[currency]
}

// USD returns the cash sub-ledger.
func (l *Ledger) USD() []Entry {
	return l.entries[CashCurrency]
}

// Holdings returns every asset-acquiring entry across all non-USD
// currencies, sorted by time.
func (l *Ledger) Holdings() []Entry {
	var out []Entry
	for _, currency := range l.currencies {
		if currency == CashCurrency {
			continue
		}
		for _, e := range l.entries[currency] {
			if e.IsHolding() {
				out = append(out, e)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Products returns the distinct products traded among the holdings, sorted.
func (l *Ledger) Products() []market.Product {
	seen := make(map[market.Product]bool)
	var out []market.Product
	for _, h := range l.Holdings() {
		td, ok := h.Detail.(TradeDetail)
		if !ok || td.ProductID == "" {
			continue
		}
		if !seen[td.ProductID] {
			seen[td.ProductID] = true
			out = append(out, td.ProductID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EarliestHolding returns the first holding timestamp for a product.
func (l *Ledger) EarliestHolding(product market.Product) (time.Time, bool) {
	for _, h := range l.Holdings() {
		if td, ok := h.Detail.(TradeDetail); ok && td.ProductID == product {
			return h.CreatedAt, true
		}
	}
	return time.Time{}, false
}

// ProductEntries returns the trade entries (buys and sells) of a product's
// base currency, in time order.
func (l *Ledger) ProductEntries(product market.Product) []Entry {
	var out []Entry
	for _, e := range l.entries[product.Base()] {
		if td, ok := e.Detail.(TradeDetail); ok && td.ProductID == product {
			out = append(out, e)
		}
	}
	return out
}

// PrincipalEvents returns external value flows in time order: USD deposits
// and withdrawals at face value, plus fork credits on other currencies
// denominated in asset units.
func (l *Ledger) PrincipalEvents() []PrincipalEvent {
	var out []PrincipalEvent
	for _, currency := range l.currencies {
		for _, e := range l.entries[currency] {
			switch d := e.Detail.(type) {
			case TransferDetail:
				if currency == CashCurrency &&
					(d.TransferType == TransferDeposit || d.TransferType == TransferWithdraw) {
					out = append(out, PrincipalEvent{Currency: currency, Time: e.CreatedAt, Amount: e.Amount})
				}
			case ForkDetail:
				if currency != CashCurrency && d.Source == SourceFork {
					out = append(out, PrincipalEvent{Currency: currency, Time: e.CreatedAt, Amount: e.Amount})
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
