package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/perxlab/catalog-widget/pkg/errors"
	"github.com/perxlab/catalog-widget/pkg/logger"
	"github.com/perxlab/catalog-widget/pkg/types"
)

// Line is one product-quantity pairing. At most one line exists per product
// id and quantity never drops below one; a decrement past one removes the
// line instead.
type Line struct {
	Product  types.Product
	Quantity int
}

// Params groups dependencies for the cart store.
type Params struct {
	Storage Storage
	Log     *logger.Logger
}

// Store owns the cart lines and keeps them consistent with the live catalog
// and with persisted storage. The cart is not a system of record: persistence
// failures degrade to a transient cart instead of raising.
type Store struct {
	mu        sync.Mutex
	storage   Storage
	log       *logger.Logger
	lines     []Line
	listeners map[int]func()
	nextSub   int
}

// NewStore builds a cart store with the required dependencies.
func NewStore(params Params) (*Store, error) {
	if params.Storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart storage is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Store{
		storage:   params.Storage,
		log:       params.Log,
		listeners: map[int]func(){},
	}, nil
}

// AbsorbCatalog reconciles persisted entries against the given catalog.
// Entries resolving to a product become lines referencing the live record;
// the rest are dropped silently. The normalized line set is re-persisted so
// dead entries never resurface.
func (s *Store) AbsorbCatalog(ctx context.Context, products []types.Product) {
	entries, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "loading persisted cart: "+err.Error())
		entries = nil
	}

	byID := make(map[string]types.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	s.mu.Lock()
	if len(entries) == 0 {
		s.lines = nil
		s.mu.Unlock()
		s.notify()
		return
	}

	lines := make([]Line, 0, len(entries))
	for _, entry := range entries {
		product, ok := byID[entry.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, Line{Product: product, Quantity: entry.Quantity})
	}
	s.lines = lines
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// AddProduct bumps an existing line by one or inserts a quantity-1 line.
func (s *Store) AddProduct(ctx context.Context, product types.Product) {
	s.mu.Lock()
	if idx := s.indexLocked(product.ID); idx >= 0 {
		s.lines[idx].Quantity++
	} else {
		s.lines = append(s.lines, Line{Product: product, Quantity: 1})
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// RemoveProduct deletes the matching line; absent ids are a no-op.
func (s *Store) RemoveProduct(ctx context.Context, productID string) {
	s.mu.Lock()
	s.removeLocked(productID)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// SetQuantity sets a line's quantity directly. Zero or below removes the
// line; absent ids are a no-op.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveProduct(ctx, productID)
		return
	}
	s.mu.Lock()
	idx := s.indexLocked(productID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.lines[idx].Quantity = quantity
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Increment raises a line's quantity by one; absent ids are a no-op.
func (s *Store) Increment(ctx context.Context, productID string) {
	s.mu.Lock()
	idx := s.indexLocked(productID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.lines[idx].Quantity++
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Decrement lowers a line's quantity by one, removing the line at one.
func (s *Store) Decrement(ctx context.Context, productID string) {
	s.mu.Lock()
	idx := s.indexLocked(productID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	if s.lines[idx].Quantity > 1 {
		s.lines[idx].Quantity--
	} else {
		s.removeLocked(productID)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Clear empties the cart and removes the storage key entirely.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Warn(ctx, "clearing persisted cart: "+err.Error())
	}
	s.mu.Unlock()
	s.notify()
}

// TotalItems sums quantities over validly resolved lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		if line.Product.ID == "" {
			continue
		}
		total += line.Quantity
	}
	return total
}

// TotalPrice sums price times quantity over validly resolved lines.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		if line.Product.ID == "" {
			continue
		}
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Contains reports whether a line exists for the product id.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(productID) >= 0
}

// QuantityOf returns the line quantity, or zero for absent products.
func (s *Store) QuantityOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(productID); idx >= 0 {
		return s.lines[idx].Quantity
	}
	return 0
}

// Lines returns a copy of the current cart lines.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

// Subscribe registers a listener invoked after every cart change. The
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

func (s *Store) indexLocked(productID string) int {
	if productID == "" {
		return -1
	}
	for i, line := range s.lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(productID string) {
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.Product.ID != productID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
}

func (s *Store) persistLocked(ctx context.Context) {
	entries := make([]Entry, 0, len(s.lines))
	for _, line := range s.lines {
		entries = append(entries, Entry{ProductID: line.Product.ID, Quantity: line.Quantity})
	}
	if err := s.storage.Save(ctx, entries); err != nil {
		s.log.Warn(ctx, "persisting cart: "+err.Error())
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
