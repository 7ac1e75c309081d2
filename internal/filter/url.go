package filter

import (
	"net/url"
	"strings"

	"github.com/perxlab/catalog-widget/pkg/enums"
)

const (
	paramDealers   = "dealers"
	paramPriceSort = "priceSort"
)

// Location is the host page address the filter state mirrors itself into.
// Hash-router hosts carry their route and query inside Fragment
// ("/catalog?dealers=a,b"); plain hosts use Query directly.
type Location struct {
	Path     string
	Query    string
	Fragment string
}

func (l Location) hashRouted() bool {
	return strings.HasPrefix(l.Fragment, "/")
}

func (l Location) params() url.Values {
	if l.hashRouted() {
		if idx := strings.Index(l.Fragment, "?"); idx >= 0 {
			if params, err := url.ParseQuery(l.Fragment[idx+1:]); err == nil {
				return params
			}
		}
		return url.Values{}
	}
	params, err := url.ParseQuery(l.Query)
	if err != nil {
		return url.Values{}
	}
	return params
}

// State is the serializable filter selection.
type State struct {
	DealerIDs []string
	Sort      enums.PriceSort
}

// FromLocation reconstructs filter state from a location's query parameters.
// Junk values collapse to the zero state rather than failing.
func FromLocation(loc Location) State {
	params := loc.params()
	state := State{Sort: enums.PriceSortNone}

	if raw := params.Get(paramDealers); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id != "" {
				state.DealerIDs = append(state.DealerIDs, id)
			}
		}
	}
	if raw := params.Get(paramPriceSort); raw != "" {
		state.Sort = enums.ParsePriceSort(raw)
	}
	return state
}

// ApplyTo writes the state into the location's query parameters, preserving
// the path/hash framing. Empty selections omit their parameter entirely.
func (s State) ApplyTo(loc Location) Location {
	// Hand-assembled so dealer ids stay comma-joined instead of %2C-escaped.
	var parts []string
	if len(s.DealerIDs) > 0 {
		escaped := make([]string, 0, len(s.DealerIDs))
		for _, id := range s.DealerIDs {
			escaped = append(escaped, url.QueryEscape(id))
		}
		parts = append(parts, paramDealers+"="+strings.Join(escaped, ","))
	}
	if s.Sort != enums.PriceSortNone && s.Sort.Valid() {
		parts = append(parts, paramPriceSort+"="+string(s.Sort))
	}
	encoded := strings.Join(parts, "&")

	if loc.hashRouted() {
		route := loc.Fragment
		if idx := strings.Index(route, "?"); idx >= 0 {
			route = route[:idx]
		}
		if encoded != "" {
			loc.Fragment = route + "?" + encoded
		} else {
			loc.Fragment = route
		}
		return loc
	}

	loc.Query = encoded
	return loc
}
