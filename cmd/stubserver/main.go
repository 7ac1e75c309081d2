package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/perxlab/catalog-widget/pkg/env"
	"github.com/perxlab/catalog-widget/pkg/logger"
)

// stubserver is the local development backend the widget talks to. It serves
// the goods and dealers endpoints with fixture data plus a /metrics endpoint.
func main() {
	logg := logger.New(logger.Options{ServiceName: "stubserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	port := env.Get("CATALOG_STUB_PORT", "8085")
	addr := ":" + port

	registry := prometheus.NewRegistry()
	router := newRouter(logg, registry, fixtureGoods(), fixtureDealers())
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	ctx := logg.WithField(context.Background(), "addr", addr)
	logg.Info(ctx, "starting stub catalog server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "stub server stopped unexpectedly", err)
		os.Exit(1)
	}
}
