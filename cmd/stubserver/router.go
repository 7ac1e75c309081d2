package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/perxlab/catalog-widget/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// good mirrors the wire shape of one /api/goods/ element.
type good struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Logo       string  `json:"logo,omitempty"`
	Dealer     string  `json:"dealer,omitempty"`
	DealerName string  `json:"dealer_name,omitempty"`
}

func newRouter(logg *logger.Logger, reg prometheus.Registerer, goods []good, dealers []string) *chi.Mux {
	requests := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "stub_requests_total",
		Help: "Requests served by the stub catalog server.",
	}, []string{"path"})

	router := chi.NewRouter()
	router.Use(requestID(logg))
	router.Use(logging(logg))

	router.Get("/api/goods/", func(w http.ResponseWriter, r *http.Request) {
		requests.WithLabelValues("goods").Inc()
		writeJSON(w, filterGoods(goods, r.URL.Query().Get("dealers")))
	})

	router.Get("/api/dealers/", func(w http.ResponseWriter, r *http.Request) {
		requests.WithLabelValues("dealers").Inc()
		writeJSON(w, dealers)
	})

	router.Get("/logo/{file}", func(w http.ResponseWriter, r *http.Request) {
		requests.WithLabelValues("logo").Inc()
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(placeholderSVG))
	})

	return router
}

// filterGoods applies the dealers= query the same way the real backend does:
// empty means all products, otherwise membership in the comma-joined id list.
func filterGoods(goods []good, dealersParam string) []good {
	if dealersParam == "" {
		return goods
	}
	wanted := map[string]struct{}{}
	for _, id := range strings.Split(dealersParam, ",") {
		if id != "" {
			wanted[id] = struct{}{}
		}
	}
	filtered := make([]good, 0, len(goods))
	for _, g := range goods {
		if _, ok := wanted[g.Dealer]; ok {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func requestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				})
			}

			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))

			if logg != nil {
				ctx = logg.WithField(ctx, "duration_ms", time.Since(start).Milliseconds())
				logg.Info(ctx, "request.complete")
			}
		})
	}
}

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="300" height="200"><rect width="300" height="200" fill="#eee"/></svg>`
