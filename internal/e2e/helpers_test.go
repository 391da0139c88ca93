package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"llmsettings/internal/catalog"
	"llmsettings/internal/httpapi"
	"llmsettings/internal/modellist"
	"llmsettings/internal/persist"
	"llmsettings/internal/settings"
	"llmsettings/pkg/types"
)

// createTempModelsDir creates a temporary directory populated with empty .gguf files.
func createTempModelsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
	}
	return dir
}

// newCatalogServer serves an OpenAI-compatible GET /v1/models and counts hits.
func newCatalogServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

type stack struct {
	srv   *httptest.Server
	store *settings.Store
}

type service struct {
	*settings.Store
	*modellist.Cache
}

func (service) Ready() bool { return true }

// newStack wires file persistence, the catalog router, the cache and the
// HTTP API the way the daemon does.
func newStack(t *testing.T, settingsPath string, listers map[types.ProviderKey]catalog.Lister) *stack {
	t.Helper()
	ctx := context.Background()
	f, err := persist.NewFile(settingsPath, nil)
	if err != nil {
		t.Fatalf("persister: %v", err)
	}
	initial, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	store := settings.New(initial, f)
	cache := modellist.New(modellist.Config{Client: catalog.NewRouter(listers), Writer: store})
	srv := httptest.NewServer(httpapi.NewMux(service{Store: store, Cache: cache}))
	t.Cleanup(srv.Close)
	return &stack{srv: srv, store: store}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func httpDo(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}
