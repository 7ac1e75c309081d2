package types

import "github.com/shopspring/decimal"

// Product is a normalized catalog record. Identity is ID; records are
// replaced wholesale on every catalog reload and never mutated in place.
type Product struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image"`
	DealerID   string          `json:"dealer_id"`
	DealerName string          `json:"dealer_name"`
}

// Dealer is a seller entity. The id list is authoritative from the dealers
// endpoint; names are best-effort enrichment from whichever product carries
// the dealer id.
type Dealer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
