package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_RefillsAfterInterval(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.2.3.4 /login"))
	assert.True(t, rl.allow("1.2.3.4 /login"))
	assert.False(t, rl.allow("1.2.3.4 /login"))

	// Other routes and clients keep their own bucket.
	assert.True(t, rl.allow("1.2.3.4 /checkin"))
	assert.True(t, rl.allow("5.6.7.8 /login"))

	now = now.Add(time.Minute)
	assert.True(t, rl.allow("1.2.3.4 /login"))
}

func TestRateLimiter_CleanupDropsStaleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.allow("a")
	now = now.Add(5 * time.Second)
	rl.cleanup()
	assert.Empty(t, rl.buckets)
}

func TestRateLimiter_MiddlewareAnswers429(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Second)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNoContent, do().Code)
	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func brotliRouter(contentType, body string) *gin.Engine {
	r := gin.New()
	r.Use(Brotli())
	r.GET("/x", func(c *gin.Context) { c.Data(http.StatusOK, contentType, []byte(body)) })
	return r
}

func getWith(r http.Handler, acceptEncoding string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestBrotli_CompressesLargeJSON(t *testing.T) {
	body := `{"data":"` + strings.Repeat("ocorrencia ", 400) + `"}`
	w := getWith(brotliRouter("application/json", body), "gzip, br")

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))
	out, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, body, string(out))
}

func TestBrotli_PassesThrough(t *testing.T) {
	large := strings.Repeat("x", 4096)
	cases := []struct {
		name        string
		contentType string
		body        string
		accept      string
	}{
		{"short body", "application/json", `{"ok":true}`, "br"},
		{"client without br", "application/json", large, "gzip"},
		{"pdf", "application/pdf", large, "br"},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", large, "br"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := getWith(brotliRouter(tc.contentType, tc.body), tc.accept)
			assert.Empty(t, w.Header().Get("Content-Encoding"))
			assert.Equal(t, tc.body, w.Body.String())
		})
	}
}

func TestBrotli_SkipsEventStream(t *testing.T) {
	r := brotliRouter("text/event-stream", strings.Repeat("data: x\n\n", 500))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept-Encoding", "br")
	req.Header.Set("Accept", "text/event-stream")
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Empty(t, w.Header().Get("Vary"))
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/uploads/x", CacheControl(24*time.Hour, true), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/x", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/x", nil))
	assert.Equal(t, "public, max-age=86400, immutable", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
