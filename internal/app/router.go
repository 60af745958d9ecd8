package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NetlifyPrefix keeps the paths the existing front end calls working
const NetlifyPrefix = "/.netlify/functions"

// NewRouter mounts every endpoint at /{name} and /.netlify/functions/{name},
// plus /healthz and /metrics.
func NewRouter(a *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, endpoint := range a.Catalog {
		h := a.Handlers[endpoint.Name]
		// Any method reaches the handler so non-POST gets the 405 body it expects
		r.Handle("/"+endpoint.Name, h)
		r.Handle(NetlifyPrefix+"/"+endpoint.Name, h)
	}

	return otelhttp.NewHandler(r, "ai-marketing-functions")
}
