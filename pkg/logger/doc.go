// Package logger provides structured logging with context extraction and Sentry integration.
//
// It wraps log/slog with two additions: attributes injected from the
// request context (request id, tenant) and optional fan-out to Sentry.
//
// # Basic Usage
//
//	log := logger.New(logger.Config{Level: "info", Format: "json"}, os.Stdout,
//		logger.RequestIDExtractor(),
//		logger.TenantExtractor(),
//	)
//
//	ctx = logger.WithRequestID(ctx, "0b6f...")
//	log.InfoContext(ctx, "request handled", slog.Int("status", 200))
//	// {"level":"INFO","msg":"request handled","status":200,"request_id":"0b6f..."}
//
// # Sentry Integration
//
// Set Config.Sentry.DSN to also ship warnings and errors to Sentry. Errors
// create Issues; warnings are stored as logs. Without a DSN, or if Sentry
// fails to initialize, logging continues on the writer alone. Call Flush
// before the process exits.
package logger
