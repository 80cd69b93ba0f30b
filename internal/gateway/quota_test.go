package gateway_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filegate/internal/gateway"
	"github.com/dmitrymomot/filegate/internal/metrics"
)

func TestQuotaAccountant_Usage(t *testing.T) {
	t.Parallel()

	t.Run("sums every page", func(t *testing.T) {
		t.Parallel()
		backend := newMemBackend(map[string]int64{
			"alice/a": 100, "alice/b": 200, "bob/c": 300, "bob/nested/d": 400, "carol/e": 500,
		})
		backend.pageSize = 2

		q := gateway.NewQuotaAccountant(backend, 0, "")
		usage, err := q.Usage(context.Background(), "alice")
		require.NoError(t, err)
		require.Equal(t, int64(1500), usage)
		require.Equal(t, 3, backend.walkPages)
		require.Equal(t, gateway.DefaultQuotaCeiling, q.Ceiling())
	})

	t.Run("tenant scope counts only the caller", func(t *testing.T) {
		t.Parallel()
		backend := newMemBackend(map[string]int64{"alice/a": 100, "alice/sub/b": 50, "bob/c": 300})

		q := gateway.NewQuotaAccountant(backend, 1000, gateway.QuotaScopeTenant)
		usage, err := q.Usage(context.Background(), "alice")
		require.NoError(t, err)
		require.Equal(t, int64(150), usage)
	})

	t.Run("empty bucket", func(t *testing.T) {
		t.Parallel()
		usage, err := gateway.NewQuotaAccountant(newMemBackend(nil), 1000, gateway.QuotaScopeBucket).
			Usage(context.Background(), "alice")
		require.NoError(t, err)
		require.Zero(t, usage)
	})
}

func TestQuotaAccountant_Admit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		prospective int64
		wantErr     error
	}{
		{name: "zero size", prospective: 0},
		{name: "fits", prospective: 50},
		{name: "exactly at ceiling", prospective: 100},
		{name: "one byte over", prospective: 101, wantErr: gateway.ErrQuotaExceeded},
		{name: "huge size does not overflow", prospective: math.MaxInt64, wantErr: gateway.ErrQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := newMemBackend(map[string]int64{"alice/a": 400, "bob/b": 500})
			q := gateway.NewQuotaAccountant(backend, 1000, gateway.QuotaScopeBucket)

			usage, err := q.Admit(context.Background(), "alice", tt.prospective)
			require.Equal(t, int64(900), usage)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestQuotaAccountant_AdmitListingFailure(t *testing.T) {
	t.Parallel()

	backend := newMemBackend(nil)
	backend.walkErr = errors.New("listing unavailable")

	_, err := gateway.NewQuotaAccountant(backend, 1000, gateway.QuotaScopeBucket).
		Admit(context.Background(), "alice", 1)
	require.Error(t, err)
	require.Equal(t, gateway.KindBackendError, gateway.AsError(err).Kind)
	require.Contains(t, err.Error(), "listing unavailable")
}

func TestQuotaScope_Valid(t *testing.T) {
	t.Parallel()
	require.True(t, gateway.QuotaScopeBucket.Valid())
	require.True(t, gateway.QuotaScopeTenant.Valid())
	require.False(t, gateway.QuotaScope("global").Valid())
}

// Not parallel: the usage gauge is process-wide.
func TestQuotaAccountant_UsageGauge(t *testing.T) {
	backend := newMemBackend(map[string]int64{"alice/a": 100, "bob/b": 300})

	metrics.StorageUsageBytes.Set(-1)
	_, err := gateway.NewQuotaAccountant(backend, 1000, gateway.QuotaScopeTenant).Usage(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, -1.0, testutil.ToFloat64(metrics.StorageUsageBytes))

	_, err = gateway.NewQuotaAccountant(backend, 1000, gateway.QuotaScopeBucket).Usage(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, 400.0, testutil.ToFloat64(metrics.StorageUsageBytes))
}
