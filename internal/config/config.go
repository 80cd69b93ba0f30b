// Package config loads filegate's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/filegate/internal/gateway"
	"github.com/dmitrymomot/filegate/pkg/logger"
	"github.com/dmitrymomot/filegate/pkg/storage"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig       `yaml:"server"`
	Storage storage.Config     `yaml:"storage"`
	Gateway GatewayConfig      `yaml:"gateway"`
	CORS    gateway.CORSConfig `yaml:"cors"`
	Auth    AuthConfig         `yaml:"auth"`
	Log     logger.Config      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address (default :8080).
	Addr string `yaml:"addr"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// ShutdownTimeout bounds graceful shutdown (default 30s).
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GatewayConfig holds request handling policy.
type GatewayConfig struct {
	// QuotaScope is bucket or tenant.
	QuotaScope gateway.QuotaScope `yaml:"quota_scope"`

	// ClaimFields is the identity claim lookup order.
	ClaimFields []string `yaml:"claim_fields"`

	// QuotaCeiling is the storage limit in bytes.
	QuotaCeiling int64 `yaml:"quota_ceiling"`

	GrantExpiry time.Duration `yaml:"grant_expiry"`

	SkipExistenceCheck  bool `yaml:"skip_existence_check"`
	AttachmentDownloads bool `yaml:"attachment_downloads"`
}

// AuthConfig controls how bearer tokens become claims.
//
// With HMACSecret set, tokens are verified locally. With TrustUpstream set,
// the token signature is assumed to have been checked by an upstream
// authorizer and the claims are read as-is. ClaimsHeader names a header
// carrying a JSON claim object injected by such an authorizer and is only
// honoured together with TrustUpstream.
type AuthConfig struct {
	HMACSecret    string `yaml:"hmac_secret"`
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
	ClaimsHeader  string `yaml:"claims_header"`
	TrustUpstream bool   `yaml:"trust_upstream"`
}

// Defaults.
const (
	DefaultAddr              = ":8080"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
)

// Load reads path, expands ${VAR} references against the environment,
// applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration from data.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{CORS: gateway.DefaultCORSConfig}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Storage.Region == "" {
		c.Storage.Region = storage.DefaultRegion
	}
	if c.Gateway.QuotaScope == "" {
		c.Gateway.QuotaScope = gateway.QuotaScopeBucket
	}
	if c.Gateway.QuotaCeiling == 0 {
		c.Gateway.QuotaCeiling = gateway.DefaultQuotaCeiling
	}
	if c.Gateway.GrantExpiry == 0 {
		c.Gateway.GrantExpiry = gateway.DefaultGrantExpiry
	}
	if len(c.Gateway.ClaimFields) == 0 {
		c.Gateway.ClaimFields = gateway.DefaultClaimFields
	}
}

// Validate reports the first problem found. Failures wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Storage.Bucket == "":
		return fmt.Errorf("%w: storage.bucket is required", ErrInvalidConfig)
	case (c.Storage.AccessKey == "") != (c.Storage.SecretKey == ""):
		return fmt.Errorf("%w: storage.access_key and storage.secret_key must be set together", ErrInvalidConfig)
	case !c.Gateway.QuotaScope.Valid():
		return fmt.Errorf("%w: gateway.quota_scope %q is not bucket or tenant", ErrInvalidConfig, c.Gateway.QuotaScope)
	case c.Gateway.QuotaCeiling < 0:
		return fmt.Errorf("%w: gateway.quota_ceiling must be positive", ErrInvalidConfig)
	case c.Gateway.GrantExpiry < time.Second || c.Gateway.GrantExpiry > maxGrantExpiry:
		return fmt.Errorf("%w: gateway.grant_expiry must be between 1s and 7 days", ErrInvalidConfig)
	case c.Auth.HMACSecret == "" && !c.Auth.TrustUpstream:
		return fmt.Errorf("%w: auth.hmac_secret is required unless auth.trust_upstream is set", ErrInvalidConfig)
	}
	return nil
}

// maxGrantExpiry is the SigV4 presign limit.
const maxGrantExpiry = 7 * 24 * time.Hour
