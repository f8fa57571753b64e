package devproxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetURL(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		query string
		want  string
	}{
		{name: "chat endpoint", path: "/api/n8n/chat-agent", want: "http://localhost:5678/webhook/chat-agent"},
		{name: "upload endpoint", path: "/api/n8n/upload-pdf", want: "http://localhost:5678/webhook/upload-pdf"},
		{name: "bare prefix", path: "/api/n8n", want: "http://localhost:5678/webhook"},
		{name: "query kept", path: "/api/n8n/topics", query: "limit=5", want: "http://localhost:5678/webhook/topics?limit=5"},
		{name: "lookalike prefix untouched", path: "/api/n8nx/topics", want: "http://localhost:5678/api/n8nx/topics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TargetURL("http://localhost:5678", "/api/n8n", "/webhook", tt.path, tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "prefix without slash", opts: Options{Prefix: "api", Target: "http://localhost:5678"}},
		{name: "relative target", opts: Options{Prefix: "/api", Target: "localhost"}},
		{name: "empty target", opts: Options{Prefix: "/api"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts, zerolog.Nop())
			assert.Error(t, err)
		})
	}
}

func TestServer_ForwardsWithRewrite(t *testing.T) {
	var (
		gotPath   string
		gotQuery  string
		gotMethod string
		gotBody   string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotMethod = r.Method
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"hello"}`))
	}))
	defer backend.Close()

	srv, err := New(Options{Prefix: "/api/n8n", Target: backend.URL, Rewrite: "/webhook"}, zerolog.Nop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/n8n/chat-agent?debug=1", strings.NewReader(`{"chatInput":"hi"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"output":"hello"}`, string(body))
	assert.Equal(t, "/webhook/chat-agent", gotPath)
	assert.Equal(t, "debug=1", gotQuery)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, `{"chatInput":"hi"}`, gotBody)
}

func TestServer_PassesBackendStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "workflow not active", http.StatusNotFound)
	}))
	defer backend.Close()

	srv, err := New(Options{Prefix: "/api/n8n", Target: backend.URL, Rewrite: "/webhook"}, zerolog.Nop())
	require.NoError(t, err)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/n8n/topics", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	srv, err := New(Options{Prefix: "/api/n8n", Target: target, Rewrite: "/webhook"}, zerolog.Nop())
	require.NoError(t, err)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/n8n/topics", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>ragdesk</h1>"), 0o644))

	srv, err := New(Options{Prefix: "/api/n8n", Target: "http://localhost:5678", Rewrite: "/webhook", StaticDir: dir}, zerolog.Nop())
	require.NoError(t, err)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ragdesk")
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, err := New(Options{Prefix: "/api/n8n", Target: "http://localhost:5678", Rewrite: "/webhook"}, zerolog.Nop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/n8n/chat-agent", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
