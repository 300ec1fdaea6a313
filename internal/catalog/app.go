package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// Keys verifies API keys; nil leaves the product routes open.
	Keys *auth.KeyMaker
	// WriteLimiter throttles mutations per client IP; nil disables it.
	WriteLimiter *kit.IPRateLimiter
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.readyz)
	r.Route("/products", func(pr chi.Router) {
		setupProductRoutes(pr, s, deps)
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupProductRoutes(r chi.Router, s *Server, deps HTTPDeps) {
	r.Group(func(rr chi.Router) {
		rr.Use(auth.RequireAPIKey(deps.Keys, auth.ScopeRead))
		rr.Get("/", s.list)
		rr.Get("/{sku}", s.get)
	})

	r.Group(func(wr chi.Router) {
		wr.Use(auth.RequireAPIKey(deps.Keys, auth.ScopeWrite))
		wr.Use(deps.WriteLimiter.Middleware)
		wr.Post("/", s.create)
		wr.Patch("/{sku}", s.edit)
		wr.Delete("/{sku}", s.remove)
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
