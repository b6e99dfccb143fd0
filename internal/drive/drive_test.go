package drive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(h http.HandlerFunc) (*PublicFetcher, func()) {
	srv := httptest.NewServer(h)
	f := NewPublicFetcher()
	f.baseURL = srv.URL
	return f, srv.Close
}

func TestPublicFetcher_Image(t *testing.T) {
	f, done := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "view", r.URL.Query().Get("export"))
		assert.Equal(t, "abc123", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	})
	defer done()

	data, ct, err := f.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, "png-bytes", string(data))
}

func TestPublicFetcher_NotFound(t *testing.T) {
	f, done := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer done()

	_, _, err := f.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestPublicFetcher_LoginPageIsNotFound(t *testing.T) {
	f, done := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>login</html>"))
	})
	defer done()

	_, _, err := f.Fetch(context.Background(), "private")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestPublicFetcher_ServerError(t *testing.T) {
	f, done := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer done()

	_, _, err := f.Fetch(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUpstream)
}
