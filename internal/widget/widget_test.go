package widget

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/perxlab/catalog-widget/internal/cart"
	"github.com/perxlab/catalog-widget/internal/catalog"
	"github.com/perxlab/catalog-widget/internal/filter"
	pkgerrors "github.com/perxlab/catalog-widget/pkg/errors"
	"github.com/perxlab/catalog-widget/pkg/logger"
	"github.com/perxlab/catalog-widget/pkg/types"
)

type stubAPI struct {
	mu           sync.Mutex
	products     []types.Product
	dealers      []string
	productCalls [][]string
}

func (s *stubAPI) FetchProducts(_ context.Context, dealerIDs []string) ([]types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productCalls = append(s.productCalls, append([]string(nil), dealerIDs...))
	if len(dealerIDs) == 0 {
		return s.products, nil
	}
	wanted := map[string]struct{}{}
	for _, id := range dealerIDs {
		wanted[id] = struct{}{}
	}
	var filtered []types.Product
	for _, product := range s.products {
		if _, ok := wanted[product.DealerID]; ok {
			filtered = append(filtered, product)
		}
	}
	return filtered, nil
}

func (s *stubAPI) FetchDealers(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dealers, nil
}

type recordingContainer struct {
	mu       sync.Mutex
	views    []View
	released int
	renderEr error
}

func (c *recordingContainer) Render(view View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = append(c.views, view)
	return c.renderEr
}

func (c *recordingContainer) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released++
	return nil
}

func (c *recordingContainer) lastView() (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.views) == 0 {
		return View{}, false
	}
	return c.views[len(c.views)-1], true
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func price(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

type fixture struct {
	widget    *Widget
	registry  *Registry
	container *recordingContainer
	api       *stubAPI
	catalog   *catalog.Store
	cart      *cart.Store
	filter    *filter.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logg := testLogger()

	api := &stubAPI{
		dealers: []string{"d1", "d2"},
		products: []types.Product{
			{ID: "a", Title: "Tires", Price: price(120), DealerID: "d1", DealerName: "Northside"},
			{ID: "b", Title: "Mats", Price: price(45), DealerID: "d2", DealerName: "Eastgate"},
		},
	}

	catalogStore, err := catalog.NewStore(catalog.Params{API: api, Log: logg})
	if err != nil {
		t.Fatalf("catalog store: %v", err)
	}
	cartStore, err := cart.NewStore(cart.Params{Storage: cart.NewMemoryStorage(), Log: logg})
	if err != nil {
		t.Fatalf("cart store: %v", err)
	}
	filterStore, err := filter.NewStore(filter.Params{URL: filter.NewMemoryURL(filter.Location{})})
	if err != nil {
		t.Fatalf("filter store: %v", err)
	}

	container := &recordingContainer{}
	registry := NewRegistry()
	registry.Register("root", []string{"catalog-widget"}, container)

	instance, err := New(Params{
		Registry: registry,
		Catalog:  catalogStore,
		Cart:     cartStore,
		Filter:   filterStore,
		Log:      logg,
	})
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}

	return &fixture{
		widget:    instance,
		registry:  registry,
		container: container,
		api:       api,
		catalog:   catalogStore,
		cart:      cartStore,
		filter:    filterStore,
	}
}

func TestMountRendersInitialRoute(t *testing.T) {
	fix := newFixture(t)
	if err := fix.widget.Mount(context.Background(), Config{Container: "#root"}); err != nil {
		t.Fatalf("mount: %v", err)
	}

	view, ok := fix.container.lastView()
	if !ok {
		t.Fatal("expected at least one render")
	}
	if view.Route != RouteHome {
		t.Fatalf("expected home route, got %s", view.Route)
	}
	if len(fix.catalog.Products()) != 2 {
		t.Fatal("mount must trigger the initial catalog load")
	}
}

func TestMountResolvesContainerByClass(t *testing.T) {
	fix := newFixture(t)
	if err := fix.widget.Mount(context.Background(), Config{Container: ".catalog-widget"}); err != nil {
		t.Fatalf("mount by class: %v", err)
	}
}

func TestMountMissingContainer(t *testing.T) {
	fix := newFixture(t)
	err := fix.widget.Mount(context.Background(), Config{Container: "#nope"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeContainerNotFound) {
		t.Fatalf("expected container not found, got %v", err)
	}
}

func TestMountRequiresContainerOrTarget(t *testing.T) {
	fix := newFixture(t)
	if err := fix.widget.Mount(context.Background(), Config{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestMountWithDirectTarget(t *testing.T) {
	fix := newFixture(t)
	direct := &recordingContainer{}
	if err := fix.widget.Mount(context.Background(), Config{Target: direct}); err != nil {
		t.Fatalf("mount with direct target: %v", err)
	}
	if _, ok := direct.lastView(); !ok {
		t.Fatal("direct target must receive renders")
	}
}

func TestMountScopesInitialLoad(t *testing.T) {
	fix := newFixture(t)
	if err := fix.widget.Mount(context.Background(), Config{Container: "#root", Dealers: []string{"d1"}}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	fix.api.mu.Lock()
	defer fix.api.mu.Unlock()
	first := fix.api.productCalls[0]
	if len(first) != 1 || first[0] != "d1" {
		t.Fatalf("expected dealer-scoped initial load, got %v", first)
	}
}

func TestFilterChangeDrivesScopedRefetchAndRender(t *testing.T) {
	fix := newFixture(t)
	if err := fix.widget.Mount(context.Background(), Config{Container: "#root"}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := fix.widget.Navigate(context.Background(), RouteCatalog); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	fix.filter.ToggleDealer("d2")

	if got := fix.catalog.Filtered(); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected filtered view scoped to d2, got %+v", got)
	}
	view, _ := fix.container.lastView()
	joined := strings.Join(view.Lines, "\n")
	if !strings.Contains(joined, "Mats") || strings.Contains(joined, "Tires") {
		t.Fatalf("catalog view must show only the filtered products:\n%s", joined)
	}
}

func TestCatalogChangeReconcilesCart(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()
	if err := fix.widget.Mount(ctx, Config{Container: "#root"}); err != nil {
		t.Fatalf("mount: %v", err)
	}

	fix.cart.AddProduct(ctx, fix.catalog.Products()[0])

	// Reload with a catalog that no longer carries product "a".
	fix.api.mu.Lock()
	fix.api.products = []types.Product{
		{ID: "b", Title: "Mats", Price: price(45), DealerID: "d2", DealerName: "Eastgate"},
	}
	fix.api.mu.Unlock()
	fix.catalog.LoadCatalog(ctx, nil)

	if fix.cart.Contains("a") {
		t.Fatal("cart must drop products absent from the reloaded catalog")
	}
}

func TestNavigateUnknownRoute(t *testing.T) {
	fix := newFixture(t)
	if err := fix.widget.Mount(context.Background(), Config{Container: "#root"}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := fix.widget.Navigate(context.Background(), "checkout"); err == nil {
		t.Fatal("expected error for unknown route")
	}
}

func TestCartViewShowsTotals(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()
	if err := fix.widget.Mount(ctx, Config{Container: "#root"}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	fix.cart.AddProduct(ctx, fix.catalog.Products()[0])
	fix.cart.Increment(ctx, "a")
	if err := fix.widget.Navigate(ctx, RouteCart); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	view, _ := fix.container.lastView()
	joined := strings.Join(view.Lines, "\n")
	if !strings.Contains(joined, "items: 2") || !strings.Contains(joined, "total: 240.00") {
		t.Fatalf("unexpected cart view:\n%s", joined)
	}
}

func TestDestroyReleasesAndStopsReactions(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()
	if err := fix.widget.Mount(ctx, Config{Container: "#root"}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := fix.widget.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if fix.container.released != 1 {
		t.Fatalf("expected one release, got %d", fix.container.released)
	}

	rendersAfter := len(fix.container.views)
	fix.filter.ToggleDealer("d1")
	fix.container.mu.Lock()
	defer fix.container.mu.Unlock()
	if len(fix.container.views) != rendersAfter {
		t.Fatal("reactions must stop after destroy")
	}

	// Idempotent.
	if err := fix.widget.Destroy(); err != nil {
		t.Fatalf("second destroy: %v", err)
	}
	if fix.container.released != 1 {
		t.Fatal("release must run exactly once")
	}
}

func TestMountTwiceFails(t *testing.T) {
	fix := newFixture(t)
	ctx := context.Background()
	if err := fix.widget.Mount(ctx, Config{Container: "#root"}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := fix.widget.Mount(ctx, Config{Container: "#root"}); err == nil {
		t.Fatal("expected error mounting twice")
	}
}

func TestRegistryResolution(t *testing.T) {
	registry := NewRegistry()
	byID := &recordingContainer{}
	byClass := &recordingContainer{}
	registry.Register("main", nil, byID)
	registry.Register("", []string{"widget-slot"}, byClass)

	if got, ok := registry.Resolve("#main"); !ok || got != Container(byID) {
		t.Fatal("id selector must resolve")
	}
	if got, ok := registry.Resolve(".widget-slot"); !ok || got != Container(byClass) {
		t.Fatal("class selector must resolve")
	}
	if got, ok := registry.Resolve("main"); !ok || got != Container(byID) {
		t.Fatal("bare selector must try ids first")
	}
	if got, ok := registry.Resolve("widget-slot"); !ok || got != Container(byClass) {
		t.Fatal("bare selector must fall back to classes")
	}
	if _, ok := registry.Resolve("#missing"); ok {
		t.Fatal("missing selector must not resolve")
	}
}

func TestRenderErrorIsSwallowed(t *testing.T) {
	fix := newFixture(t)
	fix.container.renderEr = errors.New("render failed")
	if err := fix.widget.Mount(context.Background(), Config{Container: "#root"}); err != nil {
		t.Fatalf("mount must not fail on render errors: %v", err)
	}
}
