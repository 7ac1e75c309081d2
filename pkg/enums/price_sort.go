package enums

// PriceSort is the catalog price ordering selected by the user.
type PriceSort string

const (
	PriceSortNone PriceSort = "none"
	PriceSortAsc  PriceSort = "asc"
	PriceSortDesc PriceSort = "desc"
)

// Valid reports whether the value is one of the known sort modes.
func (p PriceSort) Valid() bool {
	switch p {
	case PriceSortNone, PriceSortAsc, PriceSortDesc:
		return true
	}
	return false
}

// Cycle rotates none -> asc -> desc -> none.
func (p PriceSort) Cycle() PriceSort {
	switch p {
	case PriceSortNone:
		return PriceSortAsc
	case PriceSortAsc:
		return PriceSortDesc
	default:
		return PriceSortNone
	}
}

// ParsePriceSort maps a raw query value onto a sort mode. Unknown values
// collapse to none, matching how the URL layer ignores junk parameters.
func ParsePriceSort(raw string) PriceSort {
	switch PriceSort(raw) {
	case PriceSortAsc:
		return PriceSortAsc
	case PriceSortDesc:
		return PriceSortDesc
	}
	return PriceSortNone
}
