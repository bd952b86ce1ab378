package market

import "strings"

// Product is a trading pair identifier like "BTC-USD".
type Product string

// Base returns the asset being traded ("BTC" for "BTC-USD").
func (p Product) Base() string {
	base, _, _ := strings.Cut(string(p), "-")
	return base
}

// Quote returns the pricing currency ("USD" for "BTC-USD"). Empty when the
// product has no separator.
func (p Product) Quote() string {
	_, quote, _ := strings.Cut(string(p), "-")
	return quote
}

// TableName is the persisted-store key for the product: the identifier with
// its separator stripped ("BTC-USD" -> "BTCUSD").
func (p Product) TableName() string {
	return strings.ReplaceAll(string(p), "-", "")
}

// ProductFor returns the USD pair for a currency ("BTC" -> "BTC-USD").
func ProductFor(currency string) Product {
	return Product(currency + "-USD")
}
