package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shariqkhan335/RFI-PROJ/pkg/logger"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthAndReady(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	defer logger.Replace(zap.New(core))()

	var down error
	g := gin.New()
	RegisterHealth(g, pingFunc(func(context.Context) error { return down }))

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ready"`)

	down = errors.New("data dir missing")
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.JSONEq(t, `"storage unavailable"`, jsonField(t, w.Body.Bytes(), "error"))
	require.NotContains(t, w.Body.String(), "data dir missing")
	entries := logs.FilterMessage("readiness check failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "data dir missing", entries[0].ContextMap()["error"])

	// liveness does not depend on the backend
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStatic(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>Inventory</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "css", "styles.css"), []byte("body{}"), 0o644))

	g := gin.New()
	g.GET("/api/x", func(c *gin.Context) { c.String(http.StatusOK, "api") })
	RegisterStatic(g, root)

	cases := []struct {
		method string
		path   string
		code   int
		body   string
	}{
		{http.MethodGet, "/", http.StatusOK, "<h1>Inventory</h1>"},
		{http.MethodGet, "/css/styles.css", http.StatusOK, "body{}"},
		{http.MethodGet, "/api/x", http.StatusOK, "api"},
		{http.MethodGet, "/css/", http.StatusNotFound, `{"error":"not found"}`},
		{http.MethodGet, "/missing.js", http.StatusNotFound, `{"error":"not found"}`},
		{http.MethodGet, "/../../etc/passwd", http.StatusNotFound, `{"error":"not found"}`},
		{http.MethodPost, "/index.html", http.StatusNotFound, `{"error":"not found"}`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		g.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		require.Equal(t, tc.code, w.Code, tc.path)
		require.Contains(t, w.Body.String(), tc.body, tc.path)
	}
}

func jsonField(t *testing.T, body []byte, key string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	return string(m[key])
}
