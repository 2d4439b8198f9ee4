// Package api assembles the HTTP handler serving every collection.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"BizRecords/internal/catalog"
	"BizRecords/internal/customer"
	"BizRecords/internal/export"
	"BizRecords/internal/invoice"
	"BizRecords/internal/order"
	"BizRecords/internal/shop"
	"BizRecords/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// InvoiceRateLimit caps invoice downloads per client IP per minute.
	// Zero disables the limit.
	InvoiceRateLimit int
}

const (
	readyTimeout      = 2 * time.Second
	invoiceRateWindow = time.Minute
)

type registrar interface {
	Register(r chi.Router)
}

func NewHandler(s *shop.Shop, deps HTTPDeps) http.Handler {
	log := kit.OrNop(deps.Log)

	r := chi.NewRouter()
	setupMiddleware(r, deps)
	metrics := setupMetrics(r, deps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(s, log))

	servers := []registrar{
		&catalog.Server{Catalog: s.Catalog, Log: log, Metrics: metrics},
		&customer.Server{Directory: s.Directory, Log: log, Metrics: metrics},
		&order.Server{Ledger: s.Ledger, Log: log, Metrics: metrics},
		&export.Server{Catalog: s.Catalog, Directory: s.Directory, Ledger: s.Ledger, Log: log},
		&invoice.Server{
			Service: s.Invoices(),
			Limiter: kit.NewIPRateLimiter(deps.InvoiceRateLimit, invoiceRateWindow),
			Log:     log,
			Metrics: metrics,
		},
	}
	for _, srv := range servers {
		srv.Register(r)
	}

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) *kit.Metrics {
	if deps.Registry == nil {
		return nil
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if deps.MetricsEnabled {
		r.With(kit.MetricsAuth(deps.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	return metrics
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(s *shop.Shop, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := s.Ping(ctx); err != nil {
			log.Warn("readyz failed: store", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "store not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
