package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/perxlab/catalog-widget/internal/api"
	"github.com/perxlab/catalog-widget/internal/cart"
	"github.com/perxlab/catalog-widget/internal/catalog"
	"github.com/perxlab/catalog-widget/internal/filter"
	"github.com/perxlab/catalog-widget/internal/widget"
	"github.com/perxlab/catalog-widget/pkg/config"
	"github.com/perxlab/catalog-widget/pkg/logger"
	"github.com/perxlab/catalog-widget/pkg/metrics"
	"github.com/perxlab/catalog-widget/pkg/redis"
)

// widget-demo mounts the catalog widget into a stdout container and walks
// the three routes once, exercising the full store wiring against a live
// backend (the stubserver by default).
func main() {
	logg := logger.New(logger.Options{ServiceName: "widget-demo"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "widget-demo",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := context.Background()

	storage, cleanup, err := buildStorage(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap cart storage", err)
		os.Exit(1)
	}

	fetchStats := metrics.NewFetchMetrics(prometheus.NewRegistry())
	apiClient, err := api.NewClient(cfg.API, api.WithMetrics(fetchStats))
	if err != nil {
		logg.Error(ctx, "failed to create api client", err)
		os.Exit(1)
	}

	catalogStore, err := catalog.NewStore(catalog.Params{API: apiClient, Log: logg})
	if err != nil {
		logg.Error(ctx, "failed to create catalog store", err)
		os.Exit(1)
	}
	cartStore, err := cart.NewStore(cart.Params{Storage: storage, Log: logg})
	if err != nil {
		logg.Error(ctx, "failed to create cart store", err)
		os.Exit(1)
	}
	filterStore, err := filter.NewStore(filter.Params{
		URL: filter.NewMemoryURL(filter.Location{Path: "/", Fragment: "/" + cfg.Widget.DefaultRoute}),
	})
	if err != nil {
		logg.Error(ctx, "failed to create filter store", err)
		os.Exit(1)
	}

	registry := widget.NewRegistry()
	registry.Register("widget-root", []string{"catalog-widget"}, widget.NewWriterContainer(os.Stdout))

	instance, err := widget.New(widget.Params{
		Registry: registry,
		Catalog:  catalogStore,
		Cart:     cartStore,
		Filter:   filterStore,
		Log:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create widget", err)
		os.Exit(1)
	}

	if err := instance.Mount(ctx, widget.Config{
		Container: "#widget-root",
		Dealers:   cfg.Widget.Dealers,
		Route:     cfg.Widget.DefaultRoute,
	}); err != nil {
		logg.Error(ctx, "failed to mount widget", err)
		os.Exit(1)
	}

	if products := catalogStore.Products(); len(products) > 0 {
		cartStore.AddProduct(ctx, products[0])
	}
	for _, route := range []string{widget.RouteCatalog, widget.RouteCart} {
		if err := instance.Navigate(ctx, route); err != nil {
			logg.Error(ctx, "failed to navigate", err)
		}
	}

	if err := multierr.Combine(instance.Destroy(), cleanup()); err != nil {
		logg.Error(ctx, "teardown finished with errors", err)
		os.Exit(1)
	}
	logg.Info(ctx, "demo complete")
}

// buildStorage picks the redis backend when configured and falls back to the
// in-memory one otherwise. The returned cleanup closes whatever was opened.
func buildStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (cart.Storage, func() error, error) {
	if !cfg.Redis.Enabled() {
		logg.Info(ctx, "redis not configured, using in-memory cart storage")
		return cart.NewMemoryStorage(cart.WithTTL(cfg.Cart.TTL)), func() error { return nil }, nil
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	storage, err := cart.NewRedisStorage(cart.RedisParams{Client: client, Cart: cfg.Cart})
	if err != nil {
		closeErr := client.Close()
		return nil, nil, multierr.Append(err, closeErr)
	}
	return storage, client.Close, nil
}
