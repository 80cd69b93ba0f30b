package storage

import (
	"context"
	"time"
)

// Storage defines the backend operations the gateway needs.
// Bytes never pass through it: uploads and downloads are delegated to the
// object store via presigned URLs.
type Storage interface {
	// PresignPut returns a URL that allows a single PUT of the given key.
	PresignPut(ctx context.Context, key string, opts ...URLOption) (string, error)

	// PresignGet returns a URL that allows GET of the given key.
	PresignGet(ctx context.Context, key string, opts ...URLOption) (string, error)

	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Walk calls fn for every object under prefix, following all listing pages.
	// Returning an error from fn stops the walk and that error is returned.
	Walk(ctx context.Context, prefix string, fn WalkFunc, opts ...ListOption) error

	// Delete removes the object stored under key.
	// Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// WalkFunc is invoked by Walk for each listed object.
type WalkFunc func(obj Object) error

// Object describes a listed object.
type Object struct {
	LastModified time.Time
	Key          string
	Size         int64
}

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `yaml:"bucket"`

	// AccessKey is the AWS access key ID.
	// If AccessKey or SecretKey is empty, the default AWS credential chain is used.
	AccessKey string `yaml:"access_key"`

	// SecretKey is the AWS secret access key.
	SecretKey string `yaml:"secret_key"`

	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string `yaml:"endpoint"`

	// Region is the AWS region (default: us-east-1).
	Region string `yaml:"region"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `yaml:"path_style"`
}

// Default configuration values.
const (
	DefaultRegion = "us-east-1"
	// DefaultMaxKeys is the page size requested from ListObjectsV2.
	DefaultMaxKeys = 1000
)

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// validate checks that required configuration fields are set.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return ErrInvalidConfig
	}
	// Static credentials must be supplied as a pair.
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return ErrInvalidConfig
	}
	return nil
}

// staticCredentials reports whether the config carries an explicit key pair.
func (c *Config) staticCredentials() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}
