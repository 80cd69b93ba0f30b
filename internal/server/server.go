// Package server is the HTTP front door of filegate. It turns HTTP requests
// into gateway requests and writes the resulting envelopes back verbatim.
package server

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/filegate/internal/gateway"
	"github.com/dmitrymomot/filegate/pkg/health"
	"github.com/dmitrymomot/filegate/pkg/logger"
)

// Server wires the gateway, health probes and metrics onto one chi router.
type Server struct {
	router   *gateway.Router
	claims   ClaimsExtractor
	logger   *slog.Logger
	checks   health.Checks
	gatherer prometheus.Gatherer
}

// New creates a Server.
func New(router *gateway.Router, claims ClaimsExtractor, opts ...Option) *Server {
	s := &Server{
		router: router,
		claims: claims,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler. Anything that is not a probe or the
// metrics endpoint goes to the gateway, which owns route resolution.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID, s.accessLog, s.recoverer)

	r.Get("/healthz", s.liveness)
	r.Get("/readyz", s.readiness)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Handle("/*", http.HandlerFunc(s.serveGateway))
	r.NotFound(s.serveGateway)
	r.MethodNotAllowed(s.serveGateway)

	return r
}

func (s *Server) serveGateway(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeEnvelope(w, s.router.Formatter().Preflight())
		return
	}

	claims, err := s.claims.Claims(r)
	if err != nil {
		s.logger.InfoContext(r.Context(), "discarding caller credentials", slog.String("error", err.Error()))
		claims = nil
	}

	env := s.router.Handle(r.Context(), gateway.Request{
		Path:   r.URL.Path,
		Method: r.Method,
		Query:  firstValues(r.URL.Query()),
		Claims: claims,
	})
	writeEnvelope(w, env)
}

// firstValues flattens repeated query parameters to their first value.
func firstValues(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func writeEnvelope(w http.ResponseWriter, env gateway.Envelope) {
	h := w.Header()
	for k, v := range env.Headers {
		h.Set(k, v)
	}
	w.WriteHeader(env.StatusCode)
	if len(env.Body) > 0 {
		_, _ = w.Write(env.Body)
	}
}
