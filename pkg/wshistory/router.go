package wshistory

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// Path is the WebSocket endpoint (default: "/history").
	Path string

	// Handler serves the WebSocket endpoint.
	Handler http.Handler

	// Gatherer, when set, is exposed at /metrics.
	Gatherer prometheus.Gatherer
}

// NewRouter mounts the history endpoint, a health check and optionally
// Prometheus metrics on a chi router.
func NewRouter(cfg RouterConfig) chi.Router {
	if cfg.Path == "" {
		cfg.Path = "/history"
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	}

	if cfg.Handler != nil {
		r.Handle(cfg.Path, cfg.Handler)
	}
	return r
}
