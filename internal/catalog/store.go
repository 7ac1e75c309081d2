package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/perxlab/catalog-widget/pkg/enums"
	pkgerrors "github.com/perxlab/catalog-widget/pkg/errors"
	"github.com/perxlab/catalog-widget/pkg/logger"
	"github.com/perxlab/catalog-widget/pkg/types"
)

// Home selection rule: products priced at or above the threshold qualify;
// when fewer than homeMinQualified qualify the home view instead shows the
// first homeFallbackCount catalog entries regardless of price.
var homePriceThreshold = decimal.NewFromInt(10)

const (
	homeMinQualified  = 5
	homeFallbackCount = 8
)

// Fetcher is the slice of the API client the catalog store depends on.
type Fetcher interface {
	FetchProducts(ctx context.Context, dealerIDs []string) ([]types.Product, error)
	FetchDealers(ctx context.Context) ([]string, error)
}

// Params groups dependencies for the catalog store.
type Params struct {
	API Fetcher
	Log *logger.Logger
}

// Store owns the authoritative product catalog, the dealer id list, and a
// derived dealer-filtered view. Fetch failures never escape as errors; they
// surface through Err and leave the previous catalog intact.
type Store struct {
	mu        sync.Mutex
	api       Fetcher
	log       *logger.Logger
	products  []types.Product
	filtered  []types.Product
	dealerIDs []string
	selection []string
	loading   bool
	errMsg    string
	filterGen uint64
	listeners map[int]func()
	nextSub   int
}

// NewStore builds a catalog store with the required dependencies.
func NewStore(params Params) (*Store, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "api client is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Store{
		api:       params.API,
		log:       params.Log,
		listeners: map[int]func(){},
	}, nil
}

// LoadCatalog fetches dealer ids (once) and then the product catalog,
// optionally scoped server-side to dealerScope. On success the catalog is
// replaced wholesale and the filtered view recomputed for the current
// selection; on failure the previous catalog stays and Err carries a message.
func (s *Store) LoadCatalog(ctx context.Context, dealerScope []string) {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	needDealers := len(s.dealerIDs) == 0
	s.mu.Unlock()

	if needDealers {
		if ids, err := s.api.FetchDealers(ctx); err != nil {
			// Dealer ids are an enrichment; product load proceeds without them.
			s.log.Warn(ctx, fmt.Sprintf("loading dealers: %v", err))
		} else {
			s.mu.Lock()
			s.dealerIDs = ids
			s.mu.Unlock()
		}
	}

	products, err := s.api.FetchProducts(ctx, dealerScope)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.log.Error(ctx, "loading products", err)
		return
	}
	s.products = products
	s.filtered = nil
	selection := append([]string(nil), s.selection...)
	s.mu.Unlock()

	s.SetFilter(ctx, selection)
}

// SetFilter recomputes the derived view for the given dealer selection. An
// empty selection yields a copy of the full catalog; otherwise the view is
// refetched server-side scoped to the selection. A stale in-flight response
// never overwrites the result of a later call: results apply only when their
// generation is still the latest issued.
func (s *Store) SetFilter(ctx context.Context, dealerIDs []string) {
	s.mu.Lock()
	s.filterGen++
	gen := s.filterGen
	s.selection = append([]string(nil), dealerIDs...)

	if len(dealerIDs) == 0 {
		s.filtered = append([]types.Product(nil), s.products...)
		s.mu.Unlock()
		s.notify()
		return
	}

	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	products, err := s.api.FetchProducts(ctx, dealerIDs)

	s.mu.Lock()
	if gen != s.filterGen {
		// A newer filter request superseded this one.
		s.mu.Unlock()
		return
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.log.Error(ctx, "loading filtered products", err)
		return
	}
	s.filtered = products
	s.mu.Unlock()
	s.notify()
}

// Dealers returns the dealer list: authoritative ids enriched with names
// observed on products, falling back to a synthetic label; without an id
// list, distinct (id, name) pairs from the catalog in first-seen order.
func (s *Store) Dealers() []types.Dealer {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := map[string]string{}
	order := []string{}
	for _, product := range s.products {
		if product.DealerID == "" || product.DealerName == "" {
			continue
		}
		if _, seen := names[product.DealerID]; !seen {
			names[product.DealerID] = product.DealerName
			order = append(order, product.DealerID)
		}
	}

	if len(s.dealerIDs) > 0 {
		dealers := make([]types.Dealer, 0, len(s.dealerIDs))
		for _, id := range s.dealerIDs {
			name := names[id]
			if name == "" {
				name = fmt.Sprintf("Dealer %s", id)
			}
			dealers = append(dealers, types.Dealer{ID: id, Name: name})
		}
		return dealers
	}

	dealers := make([]types.Dealer, 0, len(order))
	for _, id := range order {
		dealers = append(dealers, types.Dealer{ID: id, Name: names[id]})
	}
	return dealers
}

// Sorted returns a fresh ordered copy of the filtered view. Sorting by price
// is stable: ties keep their filtered-view order.
func (s *Store) Sorted(order enums.PriceSort) []types.Product {
	s.mu.Lock()
	view := append([]types.Product(nil), s.filtered...)
	s.mu.Unlock()

	switch order {
	case enums.PriceSortAsc:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Price.LessThan(view[j].Price)
		})
	case enums.PriceSortDesc:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Price.GreaterThan(view[j].Price)
		})
	}
	return view
}

// HomeSelection returns products priced at or above the home threshold, or
// the first eight catalog entries when fewer than five qualify.
func (s *Store) HomeSelection() []types.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	qualified := make([]types.Product, 0, len(s.products))
	for _, product := range s.products {
		if product.Price.GreaterThanOrEqual(homePriceThreshold) {
			qualified = append(qualified, product)
		}
	}
	if len(qualified) < homeMinQualified {
		limit := homeFallbackCount
		if len(s.products) < limit {
			limit = len(s.products)
		}
		return append([]types.Product(nil), s.products[:limit]...)
	}
	return qualified
}

// Products returns a copy of the full catalog.
func (s *Store) Products() []types.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Product(nil), s.products...)
}

// Filtered returns a copy of the current derived view.
func (s *Store) Filtered() []types.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Product(nil), s.filtered...)
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the human-readable message of the last failed load, or empty.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Subscribe registers a listener invoked after every catalog or filtered-view
// change. The returned function removes the listener.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
