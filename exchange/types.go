package exchange

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Account is one currency account on the exchange.
type Account struct {
	ID        string          `json:"id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
	Hold      decimal.Decimal `json:"hold"`
}

// LedgerRecord is one raw entry of an account's transaction history as the
// exchange reports it. Details varies by record type and is parsed into a
// typed variant by the ledger package.
type LedgerRecord struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	Type      string          `json:"type"`
	Details   json.RawMessage `json:"details"`
}

// Ticker is the spot quote for a product.
type Ticker struct {
	Price decimal.Decimal `json:"price"`
	Time  time.Time       `json:"time"`
}

// APIError is an error payload the exchange returns in place of a result
// row list. Callers treat it as a malformed response for the requested
// window, distinct from a transport failure.
type APIError struct {
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return "exchange: " + e.Message
}
