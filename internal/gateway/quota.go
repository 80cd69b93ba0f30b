package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/filegate/internal/metrics"
	"github.com/dmitrymomot/filegate/pkg/storage"
)

// DefaultQuotaCeiling is 4.5 GiB.
const DefaultQuotaCeiling int64 = 9 << 29

// QuotaScope selects which objects count towards the ceiling.
type QuotaScope string

const (
	// QuotaScopeBucket sums every object in the shared bucket.
	QuotaScopeBucket QuotaScope = "bucket"
	// QuotaScopeTenant sums only the caller's own namespace.
	QuotaScopeTenant QuotaScope = "tenant"
)

// Valid reports whether s is a known scope.
func (s QuotaScope) Valid() bool {
	return s == QuotaScopeBucket || s == QuotaScopeTenant
}

// Walker is the listing primitive the accountant scans.
type Walker interface {
	Walk(ctx context.Context, prefix string, fn storage.WalkFunc, opts ...storage.ListOption) error
}

// QuotaAccountant admits or denies prospective writes against a fixed ceiling.
//
// Usage is recomputed from a full listing on every call and never cached, so
// out-of-band deletions are picked up immediately. The check is advisory:
// there is no reservation between admission and the client's upload, so
// concurrent admissions can jointly overshoot the ceiling.
type QuotaAccountant struct {
	walker  Walker
	scope   QuotaScope
	ceiling int64
}

// NewQuotaAccountant creates an accountant. A non-positive ceiling selects
// DefaultQuotaCeiling and an unknown scope selects QuotaScopeBucket.
func NewQuotaAccountant(w Walker, ceiling int64, scope QuotaScope) *QuotaAccountant {
	if ceiling <= 0 {
		ceiling = DefaultQuotaCeiling
	}
	if !scope.Valid() {
		scope = QuotaScopeBucket
	}
	return &QuotaAccountant{walker: w, ceiling: ceiling, scope: scope}
}

// Ceiling returns the configured byte limit.
func (q *QuotaAccountant) Ceiling() int64 {
	return q.ceiling
}

// Usage sums object sizes across every listing page within the scope.
func (q *QuotaAccountant) Usage(ctx context.Context, id Identity) (int64, error) {
	prefix := ""
	if q.scope == QuotaScopeTenant {
		prefix = PrefixFor(id)
	}

	start := time.Now()
	var total int64
	err := q.walker.Walk(ctx, prefix, func(obj storage.Object) error {
		total += obj.Size
		return nil
	})
	metrics.QuotaScanDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("computing storage usage: %w", err)
	}

	// A tenant-scoped total is one caller's usage, not the bucket's.
	if q.scope == QuotaScopeBucket {
		metrics.StorageUsageBytes.Set(float64(total))
	}
	return total, nil
}

// Admit checks whether prospective more bytes fit under the ceiling.
// It returns the usage it measured. Denials wrap ErrQuotaExceeded; listing
// failures are reported as backend errors.
func (q *QuotaAccountant) Admit(ctx context.Context, id Identity, prospective int64) (int64, error) {
	usage, err := q.Usage(ctx, id)
	if err != nil {
		return 0, backendError(err)
	}

	// Written as a subtraction so a huge prospective size cannot overflow.
	if prospective > q.ceiling-usage {
		metrics.QuotaRejectionsTotal.Inc()
		return usage, quotaExceeded()
	}
	return usage, nil
}
