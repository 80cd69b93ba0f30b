package server

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/filegate/internal/gateway"
	"github.com/dmitrymomot/filegate/pkg/health"
)

// liveness answers 200 while the process can serve HTTP at all.
func (s *Server) liveness(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, &health.Response{Status: health.StatusHealthy})
}

// readiness runs the registered checks and answers 503 naming every failed
// check when any of them fails.
func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	resp := health.Run(r.Context(), s.checks, health.WithLogger(s.logger))

	status := http.StatusOK
	if resp.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeHealth(w, status, resp)
}

// writeHealth writes resp through the same envelope path as gateway responses.
func writeHealth(w http.ResponseWriter, status int, resp *health.Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"status":"unhealthy"}`)
	}
	writeEnvelope(w, gateway.Envelope{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": gateway.ContentTypeJSON},
		Body:       body,
	})
}
