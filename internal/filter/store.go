package filter

import (
	"sync"

	"github.com/perxlab/catalog-widget/pkg/enums"
	pkgerrors "github.com/perxlab/catalog-widget/pkg/errors"
)

// URLSync is the host-side address bar. State changes push into it on every
// mutation; it is read back only once, at store construction. Mid-session
// external edits are not observed.
type URLSync interface {
	Location() Location
	SetLocation(Location)
}

// Params groups dependencies for the filter store.
type Params struct {
	URL URLSync
}

// Store holds the dealer selection and price sort mode. Dealer order is
// whatever the user toggled; filtering treats it as a set.
type Store struct {
	mu        sync.Mutex
	url       URLSync
	dealerIDs []string
	sort      enums.PriceSort
	listeners map[int]func()
	nextSub   int
}

// NewStore builds a filter store seeded from the current URL.
func NewStore(params Params) (*Store, error) {
	if params.URL == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "url sync is required")
	}
	initial := FromLocation(params.URL.Location())
	return &Store{
		url:       params.URL,
		dealerIDs: initial.DealerIDs,
		sort:      initial.Sort,
		listeners: map[int]func(){},
	}, nil
}

// ToggleDealer adds the id to the selection or removes it when present.
func (s *Store) ToggleDealer(id string) {
	s.mu.Lock()
	found := false
	kept := make([]string, 0, len(s.dealerIDs)+1)
	for _, existing := range s.dealerIDs {
		if existing == id {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		kept = append(kept, id)
	}
	s.dealerIDs = kept
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
}

// SetSort sets the price sort mode. Invalid modes collapse to none.
func (s *Store) SetSort(mode enums.PriceSort) {
	if !mode.Valid() {
		mode = enums.PriceSortNone
	}
	s.mu.Lock()
	s.sort = mode
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
}

// CycleSort rotates none -> asc -> desc -> none.
func (s *Store) CycleSort() {
	s.mu.Lock()
	s.sort = s.sort.Cycle()
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
}

// Reset clears the dealer selection and sort mode.
func (s *Store) Reset() {
	s.mu.Lock()
	s.dealerIDs = nil
	s.sort = enums.PriceSortNone
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
}

// DealerIDs returns a copy of the selected dealer ids in toggle order.
func (s *Store) DealerIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dealerIDs...)
}

// Sort returns the current price sort mode.
func (s *Store) Sort() enums.PriceSort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// Selected reports whether the dealer id is part of the selection.
func (s *Store) Selected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.dealerIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Subscribe registers a listener invoked after every filter change. The
// returned function removes the listener.
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

func (s *Store) syncLocked() {
	state := State{DealerIDs: append([]string(nil), s.dealerIDs...), Sort: s.sort}
	s.url.SetLocation(state.ApplyTo(s.url.Location()))
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
