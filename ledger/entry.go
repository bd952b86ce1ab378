// Package ledger normalizes raw per-account exchange histories into one
// unified, time-indexed transaction table.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/coinfolio/market"
)

// CashCurrency is the currency principal and valuations are expressed in.
const CashCurrency = "USD"

// Transfer types on TransferDetail.
const (
	TransferDeposit  = "deposit"
	TransferWithdraw = "withdraw"
)

// SourceFork marks an asset credited by a chain split.
const SourceFork = "fork"

// Detail is the transaction-type-specific part of an entry. Exactly one
// variant applies per entry.
type Detail interface {
	isDetail()
}

// TradeDetail annotates match and fee entries.
type TradeDetail struct {
	TradeID   string
	OrderID   string
	ProductID market.Product
}

// TransferDetail annotates deposits and withdrawals.
type TransferDetail struct {
	TransferID   string
	TransferType string
}

// ForkDetail annotates assets credited from a chain split.
type ForkDetail struct {
	Source string
}

// NoDetail is used when the exchange sent no recognizable detail fields.
type NoDetail struct{}

func (TradeDetail) isDetail()    {}
func (TransferDetail) isDetail() {}
func (ForkDetail) isDetail()     {}
func (NoDetail) isDetail()       {}

// Entry is one normalized ledger row.
type Entry struct {
	Currency  string
	CreatedAt time.Time
	Amount    decimal.Decimal
	Balance   decimal.Decimal // running account balance after this entry
	Type      string
	Detail    Detail

	// Payment is the summed USD outflow that funded this holding, matched
	// by trade id. Negative (cash left the account); zero for non-holdings
	// and for holdings with no attributable USD debit.
	Payment decimal.Decimal
}

// IsHolding reports whether the entry acquires a non-cash asset: a non-USD
// entry with a positive amount.
func (e Entry) IsHolding() bool {
	return e.Currency != CashCurrency && e.Amount.IsPositive()
}

// TradeID returns the entry's trade id, empty for non-trade entries.
func (e Entry) TradeID() string {
	if td, ok := e.Detail.(TradeDetail); ok {
		return td.TradeID
	}
	return ""
}

// PrincipalEvent is external value entering or leaving the portfolio: a USD
// deposit/withdrawal, or a forked asset credit (denominated in asset units
// until the reconstructor values it).
type PrincipalEvent struct {
	Currency string
	Time     time.Time
	Amount   decimal.Decimal
}
