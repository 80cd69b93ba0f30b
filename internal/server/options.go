package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/filegate/pkg/health"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReadinessChecks sets the checks run by /readyz.
func WithReadinessChecks(checks health.Checks) Option {
	return func(s *Server) {
		s.checks = checks
	}
}

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	logger            *slog.Logger
	listener          net.Listener
	address           string
	shutdownHooks     []func(context.Context) error
	shutdownTimeout   time.Duration
	readHeaderTimeout time.Duration
}

// Address sets the listen address (default ":8080").
func Address(addr string) RunOption {
	return func(c *runConfig) {
		c.address = addr
	}
}

// Listener serves on an existing listener instead of opening Address.
func Listener(ln net.Listener) RunOption {
	return func(c *runConfig) {
		c.listener = ln
	}
}

// Logger sets the logger for lifecycle messages.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}

// ShutdownTimeout bounds the graceful shutdown (default 30s).
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.shutdownTimeout = d
	}
}

// ReadHeaderTimeout limits how long a client may take to send headers.
func ReadHeaderTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.readHeaderTimeout = d
	}
}

// ShutdownHook registers fn to run after the HTTP server stops accepting
// requests. Hooks run in registration order and share the shutdown deadline.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		c.shutdownHooks = append(c.shutdownHooks, fn)
	}
}
