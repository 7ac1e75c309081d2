package cart

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/perxlab/catalog-widget/pkg/logger"
	"github.com/perxlab/catalog-widget/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func price(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func product(id, value string) types.Product {
	return types.Product{ID: id, Title: "Product " + id, Price: price(value), DealerID: "d1", DealerName: "Dealer d1"}
}

func newTestStore(t *testing.T, storage Storage) *Store {
	t.Helper()
	store, err := NewStore(Params{Storage: storage, Log: testLogger()})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestNewStoreRequiresStorage(t *testing.T) {
	if _, err := NewStore(Params{Log: testLogger()}); err == nil {
		t.Fatal("expected error creating store without storage")
	}
}

func TestAddProductInsertsAndBumps(t *testing.T) {
	store := newTestStore(t, NewMemoryStorage())
	ctx := context.Background()
	p := product("a", "5")

	store.AddProduct(ctx, p)
	store.AddProduct(ctx, p)

	if got := store.QuantityOf("a"); got != 2 {
		t.Fatalf("expected quantity 2, got %d", got)
	}
	if !store.Contains("a") {
		t.Fatal("expected cart to contain product")
	}
	if got := len(store.Lines()); got != 1 {
		t.Fatalf("expected a single line, got %d", got)
	}
}

func TestSetQuantityDirectAndRemoveAtZero(t *testing.T) {
	store := newTestStore(t, NewMemoryStorage())
	ctx := context.Background()
	store.AddProduct(ctx, product("a", "5"))

	store.SetQuantity(ctx, "a", 7)
	if got := store.QuantityOf("a"); got != 7 {
		t.Fatalf("set quantity must not be additive, got %d", got)
	}

	store.SetQuantity(ctx, "a", 0)
	if store.Contains("a") {
		t.Fatal("quantity zero must remove the line")
	}

	// Absent product is a no-op, never materializes a line.
	store.SetQuantity(ctx, "ghost", 3)
	if store.Contains("ghost") {
		t.Fatal("set quantity on absent product must be a no-op")
	}
}

func TestDecrementRemovesAtOne(t *testing.T) {
	store := newTestStore(t, NewMemoryStorage())
	ctx := context.Background()
	store.AddProduct(ctx, product("a", "5"))
	store.Increment(ctx, "a")

	store.Decrement(ctx, "a")
	if got := store.QuantityOf("a"); got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}

	store.Decrement(ctx, "a")
	if store.Contains("a") {
		t.Fatal("decrement on a quantity-1 line must remove it")
	}

	store.Decrement(ctx, "ghost")
	if store.Contains("ghost") {
		t.Fatal("decrement on absent product must be a no-op")
	}
}

func TestAbsorbCatalogRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	p := product("a", "5")

	first := newTestStore(t, storage)
	first.AddProduct(ctx, p)
	first.SetQuantity(ctx, "a", 3)

	second := newTestStore(t, storage)
	second.AbsorbCatalog(ctx, []types.Product{p})

	if got := second.QuantityOf("a"); got != 3 {
		t.Fatalf("expected persisted quantity 3 after reload, got %d", got)
	}
}

func TestAbsorbCatalogDropsUnresolvedEntries(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	first := newTestStore(t, storage)
	first.AddProduct(ctx, product("a", "5"))
	first.AddProduct(ctx, product("gone", "9"))

	catalog := []types.Product{product("a", "5")}
	second := newTestStore(t, storage)
	second.AbsorbCatalog(ctx, catalog)

	if second.Contains("gone") {
		t.Fatal("unresolvable entry must be dropped")
	}

	// The dead entry must not resurface after the normalizing persist.
	third := newTestStore(t, storage)
	third.AbsorbCatalog(ctx, []types.Product{product("a", "5"), product("gone", "9")})
	if third.Contains("gone") {
		t.Fatal("dropped entry reappeared after persist/reload cycle")
	}
	if got := third.QuantityOf("a"); got != 1 {
		t.Fatalf("surviving entry lost, got quantity %d", got)
	}
}

func TestAbsorbCatalogIsIdempotent(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	catalog := []types.Product{product("a", "5"), product("b", "7")}

	store := newTestStore(t, storage)
	store.AddProduct(ctx, catalog[0])
	store.AddProduct(ctx, catalog[1])
	store.AddProduct(ctx, catalog[1])

	store.AbsorbCatalog(ctx, catalog)
	after := store.Lines()
	store.AbsorbCatalog(ctx, catalog)
	again := store.Lines()

	if len(after) != len(again) {
		t.Fatalf("line count changed: %d vs %d", len(after), len(again))
	}
	for i := range after {
		if after[i].Product.ID != again[i].Product.ID || after[i].Quantity != again[i].Quantity {
			t.Fatalf("line %d changed: %+v vs %+v", i, after[i], again[i])
		}
	}
}

func TestAbsorbCatalogRebindsToLatestProductRecord(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	store := newTestStore(t, storage)
	store.AddProduct(ctx, product("a", "5"))

	updated := product("a", "6")
	updated.Title = "Renamed"
	store.AbsorbCatalog(ctx, []types.Product{updated})

	lines := store.Lines()
	if len(lines) != 1 || lines[0].Product.Title != "Renamed" || !lines[0].Product.Price.Equal(price("6")) {
		t.Fatalf("line must carry the latest catalog record, got %+v", lines)
	}
}

func TestAbsorbCatalogEmptyStorageEmptiesCart(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	store := newTestStore(t, storage)
	store.AddProduct(ctx, product("a", "5"))

	if err := storage.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	store.AbsorbCatalog(ctx, []types.Product{product("a", "5")})

	if store.TotalItems() != 0 {
		t.Fatal("cart must empty when no persisted data exists")
	}
}

func TestClearRemovesStorageKey(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	store := newTestStore(t, storage)
	store.AddProduct(ctx, product("a", "5"))

	store.Clear(ctx)

	if store.TotalItems() != 0 {
		t.Fatal("cart must be empty after clear")
	}
	entries, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if entries != nil {
		t.Fatalf("storage must be gone after clear, got %+v", entries)
	}
}

func TestTotals(t *testing.T) {
	store := newTestStore(t, NewMemoryStorage())
	ctx := context.Background()
	store.AddProduct(ctx, product("a", "5"))
	store.AddProduct(ctx, product("b", "2.50"))
	store.SetQuantity(ctx, "b", 3)

	if got := store.TotalItems(); got != 4 {
		t.Fatalf("expected 4 items, got %d", got)
	}
	if got := store.TotalPrice(); !got.Equal(price("12.5")) {
		t.Fatalf("expected total 12.5, got %s", got)
	}
}

func TestQuantityOfAbsentIsZero(t *testing.T) {
	store := newTestStore(t, NewMemoryStorage())
	if got := store.QuantityOf("nope"); got != 0 {
		t.Fatalf("expected 0 for absent product, got %d", got)
	}
}

type failingStorage struct{}

func (failingStorage) Load(context.Context) ([]Entry, error) {
	return nil, errors.New("storage unavailable")
}
func (failingStorage) Save(context.Context, []Entry) error {
	return errors.New("storage unavailable")
}
func (failingStorage) Clear(context.Context) error {
	return errors.New("storage unavailable")
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	store := newTestStore(t, failingStorage{})
	ctx := context.Background()

	store.AddProduct(ctx, product("a", "5"))
	if got := store.QuantityOf("a"); got != 1 {
		t.Fatalf("cart must keep working without storage, got quantity %d", got)
	}

	store.AbsorbCatalog(ctx, []types.Product{product("a", "5")})
	if store.TotalItems() != 0 {
		t.Fatal("unreadable storage behaves as no data")
	}

	store.Clear(ctx)
}

func TestSubscribeNotifiesOnMutation(t *testing.T) {
	store := newTestStore(t, NewMemoryStorage())
	ctx := context.Background()

	notified := 0
	unsub := store.Subscribe(func() { notified++ })
	store.AddProduct(ctx, product("a", "5"))
	if notified != 1 {
		t.Fatalf("expected one notification, got %d", notified)
	}
	unsub()
	store.Increment(ctx, "a")
	if notified != 1 {
		t.Fatal("unsubscribed listener must not fire")
	}
}

func TestMemoryStorageTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	storage := NewMemoryStorage(WithTTL(10*time.Minute), WithClock(clock))
	ctx := context.Background()

	if err := storage.Save(ctx, []Entry{{ProductID: "a", Quantity: 2}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	now = now.Add(9 * time.Minute)
	entries, err := storage.Load(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("fresh cart must load, got %+v err %v", entries, err)
	}

	now = now.Add(2 * time.Minute)
	entries, err = storage.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if entries != nil {
		t.Fatalf("expired cart must read as absent, got %+v", entries)
	}

	// Key removed: even rolling the clock back yields nothing.
	now = now.Add(-5 * time.Minute)
	entries, _ = storage.Load(ctx)
	if entries != nil {
		t.Fatal("expired blob must be deleted, not retained")
	}
}
