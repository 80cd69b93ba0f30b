package gateway_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filegate/internal/gateway"
)

func TestGrantIssuer_IssueUpload(t *testing.T) {
	t.Parallel()

	backend := newMemBackend(nil)
	g := gateway.NewGrantIssuer(backend, gateway.WithGrantExpiry(15*time.Minute))

	grant, err := g.IssueUpload(context.Background(), "alice/report.pdf")
	require.NoError(t, err)
	require.Equal(t, "alice/report.pdf", grant.Key)
	require.Equal(t, 15*time.Minute, grant.Expiry)

	u, err := url.Parse(grant.URL)
	require.NoError(t, err)
	require.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	require.Equal(t, "PUT", u.Query().Get("method"))

	// Each call mints a fresh grant.
	_, err = g.IssueUpload(context.Background(), "alice/report.pdf")
	require.NoError(t, err)
	require.Equal(t, 2, backend.presignCalls)
}

func TestGrantIssuer_IssueDownload(t *testing.T) {
	t.Parallel()

	t.Run("missing object", func(t *testing.T) {
		t.Parallel()
		backend := newMemBackend(nil)
		_, err := gateway.NewGrantIssuer(backend).IssueDownload(context.Background(), "alice/x.txt", "x.txt")
		require.ErrorIs(t, err, gateway.ErrObjectNotFound)
		require.Zero(t, backend.presignCalls)
	})

	t.Run("existence check disabled", func(t *testing.T) {
		t.Parallel()
		backend := newMemBackend(nil)
		grant, err := gateway.NewGrantIssuer(backend, gateway.WithExistenceCheck(false)).
			IssueDownload(context.Background(), "alice/x.txt", "x.txt")
		require.NoError(t, err)
		require.NotEmpty(t, grant.URL)
		require.Zero(t, backend.existsCalls)
	})

	t.Run("attachment", func(t *testing.T) {
		t.Parallel()
		backend := newMemBackend(map[string]int64{"alice/x.txt": 1})
		grant, err := gateway.NewGrantIssuer(backend, gateway.WithAttachmentDownloads(true)).
			IssueDownload(context.Background(), "alice/x.txt", "x.txt")
		require.NoError(t, err)

		u, err := url.Parse(grant.URL)
		require.NoError(t, err)
		require.Equal(t, "attachment; filename=x.txt", u.Query().Get("response-content-disposition"))
		require.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	})

	t.Run("probe failure", func(t *testing.T) {
		t.Parallel()
		backend := newMemBackend(nil)
		backend.existsErr = errors.New("head failed")
		_, err := gateway.NewGrantIssuer(backend).IssueDownload(context.Background(), "alice/x.txt", "x.txt")
		require.Equal(t, gateway.KindBackendError, gateway.AsError(err).Kind)
	})
}

func TestGrantIssuer_List(t *testing.T) {
	t.Parallel()

	backend := newMemBackend(map[string]int64{
		"alice/b.txt":        2,
		"alice/a.txt":        1,
		"alice/nested/c.txt": 3,
		"alice2/d.txt":       4,
		"bob/x.txt":          5,
	})
	backend.pageSize = 1
	g := gateway.NewGrantIssuer(backend)

	files, err := g.List(context.Background(), gateway.PrefixFor("alice"))
	require.NoError(t, err)
	require.Equal(t, []gateway.Filename{"a.txt", "b.txt"}, files)
	require.Equal(t, 2, backend.walkPages)

	files, err = g.List(context.Background(), gateway.PrefixFor("nobody"))
	require.NoError(t, err)
	require.NotNil(t, files)
	require.Empty(t, files)

	backend.walkErr = errors.New("list failed")
	_, err = g.List(context.Background(), gateway.PrefixFor("alice"))
	require.Equal(t, gateway.KindBackendError, gateway.AsError(err).Kind)
}

func TestGrantIssuer_Delete(t *testing.T) {
	t.Parallel()

	backend := newMemBackend(map[string]int64{"alice/a.txt": 1})
	g := gateway.NewGrantIssuer(backend)

	require.NoError(t, g.Delete(context.Background(), "alice/a.txt"))
	require.False(t, backend.has("alice/a.txt"))
	require.NoError(t, g.Delete(context.Background(), "alice/a.txt"))

	backend.deleteErr = errors.New("delete failed")
	err := g.Delete(context.Background(), "alice/a.txt")
	require.Equal(t, "delete failed", gateway.AsError(err).Message)
}
