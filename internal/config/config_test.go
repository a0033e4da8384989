package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"urlembed/internal/provider"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.TimeoutMs != 2000 {
		t.Errorf("default timeout_ms = %d, want 2000", cfg.TimeoutMs)
	}
	if !cfg.History {
		t.Error("default history should be true")
	}
	if cfg.Concurrency != 0 {
		t.Errorf("default concurrency = %d, want 0", cfg.Concurrency)
	}
	if len(cfg.Filters) != 0 {
		t.Errorf("default filters = %v, want none", cfg.Filters)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"negative timeout", func(c *Config) { c.TimeoutMs = -1 }, true},
		{"negative concurrency", func(c *Config) { c.Concurrency = -2 }, true},
		{"known filters", func(c *Config) { c.Filters = []string{"lazy-iframes", "strip-scripts"} }, false},
		{"unknown filter", func(c *Config) { c.Filters = []string{"minify"} }, true},
		{"disable default", func(c *Config) { c.Disable = []string{"twitter"} }, false},
		{"disable unknown", func(c *Config) { c.Disable = []string{"myspace"} }, true},
		{"valid definition", func(c *Config) {
			c.Providers = []provider.Definition{{
				Name:     "example",
				Patterns: []string{`^https://www\.example\.com/video/.*`},
				APIURL:   "https://www.example.com/oembed",
			}}
			c.Disable = []string{"example"}
		}, false},
		{"invalid definition", func(c *Config) {
			c.Providers = []provider.Definition{{Name: "example", Patterns: []string{"("}, APIURL: "https://x"}}
		}, true},
		{"duplicate definition", func(c *Config) {
			d := provider.Definition{Name: "dup", Patterns: []string{`^https://d\.test/`}, Template: "x"}
			c.Providers = []provider.Definition{d, d}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	content := `
timeout_ms = 750
referrer = "www.mysite.com"
concurrency = 4
history = false
filters = ["lazy-iframes"]
disable = ["twitter"]

[[providers]]
name = "example"
patterns = ["^https://www\\.example\\.com/video/.*"]
api_url = "https://www.example.com/oembed"
format = "xml"

[providers.query]
key = "abc"
`
	dir := filepath.Join(tmpDir, "urlembed")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.TimeoutMs != 750 {
		t.Errorf("timeout_ms = %d, want 750", cfg.TimeoutMs)
	}
	if cfg.Referrer != "www.mysite.com" {
		t.Errorf("referrer = %q, want www.mysite.com", cfg.Referrer)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.History {
		t.Error("history should be false")
	}
	if len(cfg.Providers) != 1 {
		t.Fatalf("providers = %d, want 1", len(cfg.Providers))
	}
	d := cfg.Providers[0]
	if d.Name != "example" || d.Format != "xml" || d.Query["key"] != "abc" {
		t.Errorf("provider = %+v", d)
	}
	if d.Patterns[0] != `^https://www\.example\.com/video/.*` {
		t.Errorf("pattern = %q", d.Patterns[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}
	if cfg.TimeoutMs != 2000 {
		t.Errorf("missing file should return defaults, got timeout_ms = %d", cfg.TimeoutMs)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "timeout_ms = ["},
		{"bad value", "concurrency = -1"},
		{"wrong type", `timeout_ms = "fast"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProviderOptions(t *testing.T) {
	cfg := Default()
	cfg.Referrer = "www.mysite.com"

	opts := cfg.ProviderOptions("1.2.3")
	if opts.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", opts.Timeout)
	}
	if opts.Referrer != "www.mysite.com" {
		t.Errorf("Referrer = %q", opts.Referrer)
	}
	if opts.UserAgent != "URLEmbed Module HTTP Agent 1.2.3" {
		t.Errorf("UserAgent = %q", opts.UserAgent)
	}

	cfg.UserAgent = "custom/1.0"
	if got := cfg.ProviderOptions("1.2.3").UserAgent; got != "custom/1.0" {
		t.Errorf("UserAgent = %q, want custom/1.0", got)
	}
}

func TestFactories(t *testing.T) {
	cfg := Default()
	cfg.Disable = []string{"twitter", "clips"}
	cfg.Providers = []provider.Definition{
		{Name: "example", Patterns: []string{`^https://www\.example\.com/`}, APIURL: "https://www.example.com/oembed"},
		{Name: "clips", Patterns: []string{`^https://clips\.test/`}, Template: "x"},
	}

	factories := cfg.Factories()
	names := make([]string, len(factories))
	for i, f := range factories {
		names[i] = f.Name
	}
	joined := strings.Join(names, ",")

	if strings.Contains(joined, "twitter") || strings.Contains(joined, "clips") {
		t.Errorf("disabled providers present: %s", joined)
	}
	if names[len(names)-1] != "example" {
		t.Errorf("configured provider should come last, got %s", joined)
	}
	if len(factories) != len(provider.Defaults()) {
		t.Errorf("len = %d, want %d", len(factories), len(provider.Defaults()))
	}
}

func TestHistoryPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	path, err := HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error: %v", err)
	}
	if want := filepath.Join(dir, "urlembed", "history.db"); path != want {
		t.Errorf("HistoryPath() = %q, want %q", path, want)
	}
}

func TestString(t *testing.T) {
	cfg := Default()
	cfg.Filters = []string{"lazy-iframes"}
	out := cfg.String()
	if !strings.Contains(out, "timeout_ms = 2000") || !strings.Contains(out, `"lazy-iframes"`) {
		t.Errorf("String() = %q", out)
	}
}
