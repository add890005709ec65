package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepub/internal/storage"
)

func seedStore(t *testing.T) *storage.MockStore {
	t.Helper()
	store := storage.NewMockStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "index.html", []byte("<html>home</html>"), "text/html; charset=utf-8"))
	require.NoError(t, store.Put(ctx, "guide/index.html", []byte("<html>guide</html>"), "text/html; charset=utf-8"))
	require.NoError(t, store.Put(ctx, "assets/app.css", []byte("body{}"), "text/css; charset=utf-8"))
	return store
}

func TestPreviewServesCleanURLs(t *testing.T) {
	handler := NewServer(seedStore(t)).Handler()

	for _, tc := range []struct {
		path string
		body string
	}{
		{"/", "<html>home</html>"},
		{"/guide", "<html>guide</html>"},
		{"/guide/", "<html>guide</html>"},
		{"/guide/index.html", "<html>guide</html>"},
		{"/assets/app.css", "body{}"},
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		require.Equal(t, http.StatusOK, rec.Code, "GET %s", tc.path)
		require.Equal(t, tc.body, rec.Body.String(), "GET %s", tc.path)
	}
}

func TestPreviewNotFound(t *testing.T) {
	handler := NewServer(seedStore(t)).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewHeadOmitsBody(t *testing.T) {
	handler := NewServer(seedStore(t)).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/guide", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestPreviewRejectsWrites(t *testing.T) {
	handler := NewServer(seedStore(t)).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/guide", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPreviewSetsETag(t *testing.T) {
	store := seedStore(t)
	handler := NewServer(store).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guide", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("ETag"))
}
