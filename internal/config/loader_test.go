package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: :9999
log_level: debug
store:
  driver: sqlite
  path: /tmp/s.db
fetch_timeout: 5s
refresh_cron: "*/15 * * * *"
providers:
  ollama:
    kind: http
    base_url: http://127.0.0.1:11434/v1
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.LogLevel != "debug" || cfg.Store.Driver != "sqlite" || cfg.Store.Path != "/tmp/s.db" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.RefreshCron != "*/15 * * * *" || cfg.FetchTimeout != "5s" {
		t.Fatalf("unexpected schedule fields: %+v", cfg)
	}
	if cfg.Providers["ollama"].BaseURL != "http://127.0.0.1:11434/v1" {
		t.Fatalf("unexpected providers: %+v", cfg.Providers)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","store":{"driver":"file","path":"/m/s.json"},"max_body_bytes":42,"providers":{"openai":{"kind":"openai","api_key_env":"OPENAI_API_KEY"}}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Store.Path != "/m/s.json" || cfg.MaxBodyBytes != 42 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Providers["openai"].Kind != KindOpenAI || cfg.Providers["openai"].APIKeyEnv != "OPENAI_API_KEY" {
		t.Fatalf("unexpected providers: %+v", cfg.Providers)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\n[cors]\nenabled=true\nallowed_origins=[\"http://a\"]\n[providers.local]\nkind=\"dir\"\ndir=\"/models\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || !cfg.CORS.Enabled || len(cfg.CORS.AllowedOrigins) != 1 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Providers["local"].Dir != "/models" {
		t.Fatalf("unexpected providers: %+v", cfg.Providers)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidContent(t *testing.T) {
	d := t.TempDir()
	cases := map[string]string{
		"bad.yaml": "addr: :8080\n: broken\n",
		"bad.json": `{ "addr": ":8080", "store": }`,
		"bad.toml": "addr=:8080\nstore\n",
	}
	for name, content := range cases {
		p := writeTempFile(t, d, name, content)
		if _, err := Load(p); err == nil {
			t.Fatalf("%s: expected unmarshal error", name)
		}
	}
}
