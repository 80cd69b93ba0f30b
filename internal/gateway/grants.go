package gateway

import (
	"context"
	"time"

	"github.com/dmitrymomot/filegate/pkg/storage"
)

// DefaultGrantExpiry is how long issued URLs stay valid.
const DefaultGrantExpiry = time.Hour

// Grant is a presigned URL scoped to one operation on one key.
type Grant struct {
	URL    string
	Key    string
	Expiry time.Duration
}

// GrantIssuer mints per-request grants and performs list and delete
// against the backend. Grants are never cached or reused.
type GrantIssuer struct {
	backend        storage.Storage
	expiry         time.Duration
	checkExistence bool
	attachment     bool
}

// GrantOption configures a GrantIssuer.
type GrantOption func(*GrantIssuer)

// WithGrantExpiry overrides DefaultGrantExpiry.
func WithGrantExpiry(d time.Duration) GrantOption {
	return func(g *GrantIssuer) {
		if d > 0 {
			g.expiry = d
		}
	}
}

// WithExistenceCheck toggles the HEAD probe before download grants.
func WithExistenceCheck(enabled bool) GrantOption {
	return func(g *GrantIssuer) {
		g.checkExistence = enabled
	}
}

// WithAttachmentDownloads makes download URLs carry
// Content-Disposition: attachment with the original filename.
func WithAttachmentDownloads(enabled bool) GrantOption {
	return func(g *GrantIssuer) {
		g.attachment = enabled
	}
}

// NewGrantIssuer creates an issuer. Existence checks are on by default.
func NewGrantIssuer(backend storage.Storage, opts ...GrantOption) *GrantIssuer {
	g := &GrantIssuer{
		backend:        backend,
		expiry:         DefaultGrantExpiry,
		checkExistence: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IssueUpload returns a PUT grant for key.
func (g *GrantIssuer) IssueUpload(ctx context.Context, key string) (Grant, error) {
	u, err := g.backend.PresignPut(ctx, key, storage.WithExpiry(g.expiry))
	if err != nil {
		return Grant{}, backendError(err)
	}
	return Grant{URL: u, Key: key, Expiry: g.expiry}, nil
}

// IssueDownload returns a GET grant for key, or ErrObjectNotFound when the
// existence check finds nothing stored there.
func (g *GrantIssuer) IssueDownload(ctx context.Context, key string, name Filename) (Grant, error) {
	if g.checkExistence {
		ok, err := g.backend.Exists(ctx, key)
		if err != nil {
			return Grant{}, backendError(err)
		}
		if !ok {
			return Grant{}, objectNotFound()
		}
	}

	opts := []storage.URLOption{storage.WithExpiry(g.expiry)}
	if g.attachment {
		opts = append(opts, storage.WithDownload(name.String()))
	}

	u, err := g.backend.PresignGet(ctx, key, opts...)
	if err != nil {
		return Grant{}, backendError(err)
	}
	return Grant{URL: u, Key: key, Expiry: g.expiry}, nil
}

// List returns the filenames directly under prefix with the prefix stripped.
// The result is never nil.
func (g *GrantIssuer) List(ctx context.Context, prefix string) ([]Filename, error) {
	files := make([]Filename, 0)
	err := g.backend.Walk(ctx, prefix, func(obj storage.Object) error {
		if name, ok := FilenameFromKey(prefix, obj.Key); ok {
			files = append(files, name)
		}
		return nil
	}, storage.WithDelimiter(keySeparator))
	if err != nil {
		return nil, backendError(err)
	}
	return files, nil
}

// Delete removes key. Deleting an absent key succeeds.
func (g *GrantIssuer) Delete(ctx context.Context, key string) error {
	if err := g.backend.Delete(ctx, key); err != nil {
		return backendError(err)
	}
	return nil
}
