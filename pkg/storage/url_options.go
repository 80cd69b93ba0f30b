package storage

import "time"

// URLOption configures presigned URL generation.
type URLOption func(*urlOptions)

// urlOptions holds configuration for URL generation.
type urlOptions struct {
	downloadName string        // Filename for Content-Disposition: attachment
	expiry       time.Duration // Signed URL expiry duration
}

// DefaultURLExpiry is the default expiry for presigned URLs.
const DefaultURLExpiry = time.Hour

func newURLOptions(opts ...URLOption) *urlOptions {
	o := &urlOptions{expiry: DefaultURLExpiry}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithExpiry sets the expiry duration for presigned URLs.
// Non-positive values keep the default of one hour.
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) {
		if d > 0 {
			o.expiry = d
		}
	}
}

// WithDownload sets the filename for the Content-Disposition: attachment
// response header. Only GET URLs honour it.
func WithDownload(filename string) URLOption {
	return func(o *urlOptions) {
		o.downloadName = filename
	}
}

// ListOption configures Walk.
type ListOption func(*listOptions)

type listOptions struct {
	delimiter string
	maxKeys   int32
}

func newListOptions(opts ...ListOption) *listOptions {
	o := &listOptions{maxKeys: DefaultMaxKeys}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDelimiter restricts the walk to direct children of the prefix.
// Keys containing the delimiter after the prefix are rolled up by the backend
// and never passed to the WalkFunc.
func WithDelimiter(d string) ListOption {
	return func(o *listOptions) {
		o.delimiter = d
	}
}

// WithPageSize sets the number of keys requested per listing page.
func WithPageSize(n int32) ListOption {
	return func(o *listOptions) {
		if n > 0 {
			o.maxKeys = n
		}
	}
}

// ResolveURLOptions applies opts and returns the effective expiry and
// attachment name. Storage implementations outside this package use it to
// honour URL options.
func ResolveURLOptions(opts ...URLOption) (expiry time.Duration, downloadName string) {
	o := newURLOptions(opts...)
	return o.expiry, o.downloadName
}

// ResolveListOptions applies opts and returns the effective delimiter and page size.
func ResolveListOptions(opts ...ListOption) (delimiter string, pageSize int32) {
	o := newListOptions(opts...)
	return o.delimiter, o.maxKeys
}
