package gateway_test

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/filegate/pkg/storage"
)

// memBackend is an in-memory storage.Storage that pages its listings.
type memBackend struct {
	mu      sync.Mutex
	objects map[string]int64

	pageSize     int
	walkPages    int
	presignCalls int
	existsCalls  int

	walkErr    error
	presignErr error
	existsErr  error
	deleteErr  error
	panicOn    string
}

var _ storage.Storage = (*memBackend)(nil)

func newMemBackend(objects map[string]int64) *memBackend {
	if objects == nil {
		objects = make(map[string]int64)
	}
	return &memBackend{objects: objects}
}

func (m *memBackend) presign(method, key string, opts ...storage.URLOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOn == method {
		panic("backend exploded")
	}
	m.presignCalls++
	if m.presignErr != nil {
		return "", m.presignErr
	}

	expiry, name := storage.ResolveURLOptions(opts...)
	q := url.Values{}
	q.Set("X-Amz-Expires", fmt.Sprint(int(expiry/time.Second)))
	q.Set("method", method)
	if name != "" {
		q.Set("response-content-disposition", "attachment; filename="+name)
	}
	return "https://bucket.local/" + url.PathEscape(key) + "?" + q.Encode(), nil
}

func (m *memBackend) PresignPut(_ context.Context, key string, opts ...storage.URLOption) (string, error) {
	return m.presign("PUT", key, opts...)
}

func (m *memBackend) PresignGet(_ context.Context, key string, opts ...storage.URLOption) (string, error) {
	return m.presign("GET", key, opts...)
}

func (m *memBackend) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsCalls++
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memBackend) Walk(_ context.Context, prefix string, fn storage.WalkFunc, opts ...storage.ListOption) error {
	m.mu.Lock()
	if m.walkErr != nil {
		m.mu.Unlock()
		return m.walkErr
	}

	delim, size := storage.ResolveListOptions(opts...)
	if m.pageSize > 0 {
		size = int32(m.pageSize)
	}

	var objs []storage.Object
	for k, s := range m.objects {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		if delim != "" && strings.Contains(rest, delim) {
			continue
		}
		objs = append(objs, storage.Object{Key: k, Size: s})
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].Key < objs[j].Key })
	m.mu.Unlock()

	for start := 0; start == 0 || start < len(objs); start += int(size) {
		m.mu.Lock()
		m.walkPages++
		m.mu.Unlock()

		end := min(start+int(size), len(objs))
		for _, obj := range objs[start:end] {
			if err := fn(obj); err != nil {
				return err
			}
		}
		if end == len(objs) {
			break
		}
	}
	return nil
}

func (m *memBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	return nil
}

func (m *memBackend) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
