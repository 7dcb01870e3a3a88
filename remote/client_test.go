package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scriptsync/assert"

	"github.com/andybalholm/brotli"
)

// decodeRequest decompresses and decodes one request body.
func decodeRequest(t *testing.T, r *http.Request, out any) {
	t.Helper()

	assert.Equal(t, "br", r.Header.Get("Content-Encoding"), "content encoding")
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"), "content type")

	body, err := io.ReadAll(brotli.NewReader(r.Body))
	assert.NoError(t, err, "decompress body")
	assert.NoError(t, json.Unmarshal(body, out), "decode body")
}

func TestFetchFileNormalizesContent(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/files/get", r.URL.Path, "request path")
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"), "auth header")

		var req fetchRequest
		decodeRequest(t, r, &req)
		gotPath = req.Path

		json.NewEncoder(w).Encode(fetchResponse{
			Path:    req.Path,
			Content: "a  \r\nb\rc\n",
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "tok-1"})
	content, err := c.FetchFile(context.Background(), "app/main.js")

	assert.NoError(t, err, "fetch")
	assert.Equal(t, "app/main.js", gotPath, "requested path")
	assert.Equal(t, "a\nb\nc\n", content, "normalized content")
}

func TestPushFile(t *testing.T) {
	var got pushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/files/put", r.URL.Path, "request path")
		decodeRequest(t, r, &got)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	err := c.PushFile(context.Background(), "app/main.js", "local()\n")

	assert.NoError(t, err, "push")
	assert.Equal(t, "app/main.js", got.Path, "pushed path")
	assert.Equal(t, "local()\n", got.Content, "pushed content")
}

func TestListFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/files/list", r.URL.Path, "request path")

		var req listRequest
		decodeRequest(t, r, &req)
		assert.Equal(t, "app/", req.Prefix, "list prefix")

		json.NewEncoder(w).Encode(listResponse{
			Paths: []string{"app/main.js", "app/util.js"},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	paths, err := c.ListFiles(context.Background(), "app/")

	assert.NoError(t, err, "list")
	assert.Equal(t, 2, len(paths), "path count")
	assert.Equal(t, "app/main.js", paths[0], "first path")
	assert.Equal(t, "app/util.js", paths[1], "second path")
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "", r.Header.Get("Authorization"), "no auth header")
		json.NewEncoder(w).Encode(fetchResponse{})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.FetchFile(context.Background(), "a.js")
	assert.NoError(t, err, "fetch")
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such file", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.FetchFile(context.Background(), "missing.js")

	assert.True(t, err != nil, "error surfaced")
	assert.True(t, strings.Contains(err.Error(), "404"), "status in error")
	assert.True(t, strings.Contains(err.Error(), "missing.js"), "path in error")
}
