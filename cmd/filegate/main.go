// Command filegate serves presigned upload and download URLs for a shared
// S3 bucket, one namespace per authenticated tenant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/filegate/internal/config"
	"github.com/dmitrymomot/filegate/internal/gateway"
	"github.com/dmitrymomot/filegate/internal/metrics"
	"github.com/dmitrymomot/filegate/internal/server"
	"github.com/dmitrymomot/filegate/pkg/health"
	"github.com/dmitrymomot/filegate/pkg/logger"
	"github.com/dmitrymomot/filegate/pkg/storage"
)

const sentryFlushTimeout = 2 * time.Second

func main() {
	configPath := flag.String("config", "filegate.yaml", "Config file path")
	addr := flag.String("addr", "", "Listen address (overrides server.addr)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
	flag.Parse()

	if err := run(*configPath, *addr, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "filegate: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log := logger.New(cfg.Log, os.Stdout, logger.RequestIDExtractor(), logger.TenantExtractor())
	defer logger.Flush(sentryFlushTimeout)

	ctx := context.Background()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}

	router, err := gateway.New(gateway.Config{
		Backend:             store,
		Logger:              log,
		ClaimFields:         cfg.Gateway.ClaimFields,
		CORS:                cfg.CORS,
		QuotaScope:          cfg.Gateway.QuotaScope,
		QuotaCeiling:        cfg.Gateway.QuotaCeiling,
		GrantExpiry:         cfg.Gateway.GrantExpiry,
		SkipExistenceCheck:  cfg.Gateway.SkipExistenceCheck,
		AttachmentDownloads: cfg.Gateway.AttachmentDownloads,
	})
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	srv := server.New(router, server.NewTokenClaims(cfg.Auth),
		server.WithLogger(log),
		server.WithMetrics(reg),
		server.WithReadinessChecks(health.Checks{"storage": store.Ping}),
	)

	log.Info("filegate configured",
		slog.String("bucket", store.Bucket()),
		slog.String("quota_scope", string(cfg.Gateway.QuotaScope)),
		slog.Int64("quota_ceiling", cfg.Gateway.QuotaCeiling),
		slog.Duration("grant_expiry", cfg.Gateway.GrantExpiry),
	)

	return server.Run(ctx, srv.Handler(),
		server.Address(cfg.Server.Addr),
		server.Logger(log),
		server.ShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.ReadHeaderTimeout(cfg.Server.ReadHeaderTimeout),
		server.ShutdownHook(func(context.Context) error {
			logger.Flush(sentryFlushTimeout)
			return nil
		}),
	)
}
