// Package httpapi serves the product catalog over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/scopecache/internal/catalog"
)

// Catalog is the product service behind the routes.
type Catalog interface {
	ListProducts(ctx context.Context, q catalog.GetProductsQuery) (catalog.Page, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, in catalog.ProductInput) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) (catalog.Product, error)
	EvictProduct(ctx context.Context, id string) error
}

type Config struct {
	Catalog  Catalog
	Logger   *zap.Logger
	Registry *prometheus.Registry // nil => metrics are not collected or served
	Timeout  time.Duration        // 0 => 15s
	MaxBody  int64                // 0 => 512 KiB
}

// NewRouter mounts the catalog routes, /healthz and /metrics.
func NewRouter(cfg Config) (http.Handler, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = 512 * 1024
	}

	r := chi.NewRouter()

	if cfg.Registry != nil {
		m, err := newMetrics(cfg.Registry)
		if err != nil {
			return nil, err
		}
		r.Use(m.middleware)
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(LoggingContext(cfg.Logger))
	r.Use(Recoverer())
	r.Use(chimw.Timeout(cfg.Timeout))
	r.Use(MaxBodySize(cfg.MaxBody))

	h := &productHandler{svc: cfg.Catalog}
	r.Route("/v1/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Delete("/", h.delete)
			r.Delete("/cache", h.evict)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry}))
	}
	return r, nil
}
