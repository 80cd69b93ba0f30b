package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filegate/internal/config"
	"github.com/dmitrymomot/filegate/internal/gateway"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(`
storage:
  bucket: uploads
auth:
  hmac_secret: s3cret
`))
	require.NoError(t, err)
	require.Equal(t, config.DefaultAddr, cfg.Server.Addr)
	require.Equal(t, config.DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	require.Equal(t, "us-east-1", cfg.Storage.Region)
	require.Equal(t, gateway.QuotaScopeBucket, cfg.Gateway.QuotaScope)
	require.Equal(t, gateway.DefaultQuotaCeiling, cfg.Gateway.QuotaCeiling)
	require.Equal(t, time.Hour, cfg.Gateway.GrantExpiry)
	require.Equal(t, gateway.DefaultClaimFields, cfg.Gateway.ClaimFields)
	require.True(t, cfg.CORS.Enabled)
	require.Equal(t, "*", cfg.CORS.AllowOrigin)
}

func TestParse_Full(t *testing.T) {
	t.Setenv("FILEGATE_TEST_SECRET", "from-env")

	cfg, err := config.Parse([]byte(`
server:
  addr: 127.0.0.1:9090
  shutdown_timeout: 5s
storage:
  bucket: uploads
  region: eu-west-1
  endpoint: http://localhost:9000
  path_style: true
  access_key: minio
  secret_key: ${FILEGATE_TEST_SECRET}
gateway:
  quota_scope: tenant
  quota_ceiling: 1048576
  grant_expiry: 15m
  attachment_downloads: true
  claim_fields: [username]
cors:
  allow_origin: https://app.example.com
auth:
  trust_upstream: true
log:
  level: debug
  format: text
`))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "from-env", cfg.Storage.SecretKey)
	require.True(t, cfg.Storage.PathStyle)
	require.Equal(t, gateway.QuotaScopeTenant, cfg.Gateway.QuotaScope)
	require.Equal(t, int64(1<<20), cfg.Gateway.QuotaCeiling)
	require.Equal(t, 15*time.Minute, cfg.Gateway.GrantExpiry)
	require.True(t, cfg.Gateway.AttachmentDownloads)
	require.Equal(t, []string{"username"}, cfg.Gateway.ClaimFields)
	require.Equal(t, "https://app.example.com", cfg.CORS.AllowOrigin)
	require.True(t, cfg.CORS.Enabled)
	require.True(t, cfg.Auth.TrustUpstream)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing bucket", yaml: "auth: {hmac_secret: x}"},
		{name: "half credentials", yaml: "storage: {bucket: b, access_key: a}\nauth: {hmac_secret: x}"},
		{name: "bad scope", yaml: "storage: {bucket: b}\ngateway: {quota_scope: global}\nauth: {hmac_secret: x}"},
		{name: "negative ceiling", yaml: "storage: {bucket: b}\ngateway: {quota_ceiling: -1}\nauth: {hmac_secret: x}"},
		{name: "expiry too long", yaml: "storage: {bucket: b}\ngateway: {grant_expiry: 200h}\nauth: {hmac_secret: x}"},
		{name: "no token policy", yaml: "storage: {bucket: b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}

	_, err := config.Parse([]byte("storage: [not, a, map]"))
	require.Error(t, err)
	require.NotErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "filegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: {bucket: b}\nauth: {trust_upstream: true}\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "b", cfg.Storage.Bucket)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
