package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor extracts a log attribute from context.
// Return false to skip the attribute for that record.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type (
	requestIDKey struct{}
	tenantKey    struct{}
)

// WithRequestID stores the request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithTenant stores the resolved tenant identity in ctx.
func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// Tenant returns the tenant identity stored in ctx, or "".
func Tenant(ctx context.Context) string {
	v, _ := ctx.Value(tenantKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to every record logged with a
// context carrying one.
func RequestIDExtractor() ContextExtractor {
	return stringExtractor("request_id", RequestID)
}

// TenantExtractor adds "tenant" to every record logged with a context
// carrying one.
func TenantExtractor() ContextExtractor {
	return stringExtractor("tenant", Tenant)
}

func stringExtractor(key string, get func(context.Context) string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := get(ctx); v != "" {
			return slog.String(key, v), true
		}
		return slog.Attr{}, false
	}
}
