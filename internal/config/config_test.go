package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 40 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 40*time.Second {
			t.Errorf("expected Timeout to be 40s, got %v", cfg.Timeout)
		}
	})

	t.Run("default ArchiveTimeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.ArchiveTimeout != 30*time.Second {
			t.Errorf("expected ArchiveTimeout to be 30s, got %v", cfg.ArchiveTimeout)
		}
	})

	t.Run("default MaxTotalSize is 100 MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxTotalSize != 100*1024*1024 {
			t.Errorf("expected MaxTotalSize to be 100MB, got %d", cfg.MaxTotalSize)
		}
	})

	t.Run("default MaxAssets is 100", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxAssets != 100 {
			t.Errorf("expected MaxAssets to be 100, got %d", cfg.MaxAssets)
		}
	})

	t.Run("default BatchSize is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 5 {
			t.Errorf("expected BatchSize to be 5, got %d", cfg.BatchSize)
		}
	})

	t.Run("inspection and history are on", func(t *testing.T) {
		t.Parallel()
		if !cfg.Inspect || !cfg.SaveToDB {
			t.Error("expected Inspect and SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("server defaults", func(t *testing.T) {
		t.Parallel()
		if cfg.ListenAddress != "127.0.0.1:8080" {
			t.Errorf("unexpected ListenAddress %q", cfg.ListenAddress)
		}
		if cfg.RateLimit != 1 || cfg.RateBurst != 3 {
			t.Errorf("unexpected rate limit %v/%d", cfg.RateLimit, cfg.RateBurst)
		}
	})

	t.Run("defaults validate", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests one validation rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "valid proxy", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1:9050" }},
		{name: "valid IPv6 proxy", modify: func(c *Config) { c.ProxyAddress = "[::1]:1080" }},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, want: ErrInvalidTimeout},
		{name: "negative archive timeout", modify: func(c *Config) { c.ArchiveTimeout = -time.Second }, want: ErrInvalidArchiveTimeout},
		{name: "zero max total size", modify: func(c *Config) { c.MaxTotalSize = 0 }, want: ErrInvalidMaxTotalSize},
		{name: "zero max assets", modify: func(c *Config) { c.MaxAssets = 0 }, want: ErrInvalidMaxAssets},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, want: ErrInvalidBatchSize},
		{name: "zero concurrency", modify: func(c *Config) { c.Concurrency = 0 }, want: ErrInvalidConcurrency},
		{name: "both report formats", modify: func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, want: ErrConflictingReportFormats},
		{name: "proxy without port", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1" }, want: ErrInvalidProxyAddress},
		{name: "proxy with bad port", modify: func(c *Config) { c.ProxyAddress = "proxy:99999" }, want: ErrInvalidProxyAddress},
		{name: "proxy without host", modify: func(c *Config) { c.ProxyAddress = ":1080" }, want: ErrInvalidProxyAddress},
		{name: "zero rate", modify: func(c *Config) { c.RateLimit = 0 }, want: ErrInvalidRateLimit},
		{name: "zero burst", modify: func(c *Config) { c.RateBurst = 0 }, want: ErrInvalidRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestConfigValidateTargets tests the target requirement.
func TestConfigValidateTargets(t *testing.T) {
	t.Parallel()

	t.Run("no targets", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().ValidateTargets(); !errors.Is(err, ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("targets and valid settings", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com/"}
		if err := cfg.ValidateTargets(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("targets do not hide other errors", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com/"}
		cfg.BatchSize = 0
		if err := cfg.ValidateTargets(); !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("expected ErrInvalidBatchSize, got %v", err)
		}
	})
}

// TestFileGetSiteConfig tests merging defaults with site entries.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: SiteConfig{
			Headers:   map[string]string{"Accept-Language": "en", "X-Default": "1"},
			MaxAssets: 50,
		},
		Sites: map[string]SiteConfig{
			"Example.com": {
				Cookie:       "session=abc",
				Headers:      map[string]string{"Accept-Language": "ja"},
				MaxTotalSize: 1024,
				UserAgent:    "custom/1.0",
			},
		},
	}

	t.Run("site overrides defaults", func(t *testing.T) {
		t.Parallel()

		got := file.GetSiteConfig("example.com")
		if got.Cookie != "session=abc" {
			t.Errorf("expected cookie, got %q", got.Cookie)
		}
		if got.MaxAssets != 50 {
			t.Errorf("expected default MaxAssets 50, got %d", got.MaxAssets)
		}
		if got.MaxTotalSize != 1024 {
			t.Errorf("expected MaxTotalSize 1024, got %d", got.MaxTotalSize)
		}
		if got.UserAgent != "custom/1.0" {
			t.Errorf("expected user agent, got %q", got.UserAgent)
		}
		if got.Headers["Accept-Language"] != "ja" || got.Headers["X-Default"] != "1" {
			t.Errorf("headers not merged: %v", got.Headers)
		}
	})

	t.Run("match ignores case and www", func(t *testing.T) {
		t.Parallel()

		if got := file.GetSiteConfig("WWW.EXAMPLE.COM."); got.Cookie != "session=abc" {
			t.Errorf("expected site entry to match, got %+v", got)
		}
	})

	t.Run("unknown site gets defaults", func(t *testing.T) {
		t.Parallel()

		got := file.GetSiteConfig("other.org")
		if got.Cookie != "" || got.MaxAssets != 50 {
			t.Errorf("unexpected config %+v", got)
		}
	})

	t.Run("merging does not modify defaults", func(t *testing.T) {
		t.Parallel()

		_ = file.GetSiteConfig("example.com")
		if file.Defaults.Headers["Accept-Language"] != "en" {
			t.Error("defaults were modified")
		}
	})

	t.Run("nil file", func(t *testing.T) {
		t.Parallel()

		var nilFile *File
		if got := nilFile.GetSiteConfig("example.com"); got.Cookie != "" || got.Headers != nil {
			t.Errorf("expected zero config, got %+v", got)
		}
	})
}

// TestConfigSiteConfig tests that flag values are the base of site settings.
func TestConfigSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("without file", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		got := cfg.SiteConfig("example.com")
		if got.MaxAssets != cfg.MaxAssets || got.MaxTotalSize != cfg.MaxTotalSize || got.UserAgent != cfg.UserAgent {
			t.Errorf("expected flag values, got %+v", got)
		}
	})

	t.Run("flag headers are the base", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Cookie = "a=1"
		cfg.Headers = map[string]string{"X-Flag": "1", "Accept-Language": "en"}
		cfg.SiteConfigs = &File{
			Sites: map[string]SiteConfig{"example.com": {Headers: map[string]string{"Accept-Language": "de"}}},
		}
		got := cfg.SiteConfig("example.com")
		if got.Cookie != "a=1" {
			t.Errorf("expected flag cookie, got %q", got.Cookie)
		}
		if got.Headers["X-Flag"] != "1" || got.Headers["Accept-Language"] != "de" {
			t.Errorf("unexpected headers %v", got.Headers)
		}
		if cfg.Headers["Accept-Language"] != "en" {
			t.Error("flag headers were modified")
		}
	})

	t.Run("file overrides flags", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.SiteConfigs = &File{
			Sites: map[string]SiteConfig{"example.com": {MaxAssets: 7}},
		}
		got := cfg.SiteConfig("example.com")
		if got.MaxAssets != 7 {
			t.Errorf("expected MaxAssets 7, got %d", got.MaxAssets)
		}
		if got.MaxTotalSize != DefaultMaxTotalSize {
			t.Errorf("expected default MaxTotalSize, got %d", got.MaxTotalSize)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		p := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(p, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		return p
	}

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.siteclone")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		p := write(t, `defaults:
  maxAssets: 20
  headers:
    Accept-Language: "en-US"
sites:
  example.com:
    cookie: "session=xyz"
    maxTotalSize: 1048576
    userAgent: "siteclone-test"
    headers:
      Authorization: "Bearer token"
`)

		cfg, err := LoadConfigFile(p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.MaxAssets != 20 {
			t.Errorf("expected default maxAssets 20, got %d", cfg.Defaults.MaxAssets)
		}
		site, ok := cfg.Sites["example.com"]
		if !ok {
			t.Fatal("expected example.com in sites")
		}
		if site.Cookie != "session=xyz" || site.MaxTotalSize != 1048576 || site.UserAgent != "siteclone-test" {
			t.Errorf("unexpected site config %+v", site)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Error("expected Authorization header")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfigFile(write(t, `invalid: yaml: content: [}`)); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects negative budgets", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(write(t, "sites:\n  example.com:\n    maxAssets: -1\n"))
		if err == nil || !strings.Contains(err.Error(), "example.com") {
			t.Errorf("expected error naming the site, got %v", err)
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile(write(t, "defaults:\n  maxAssets: 5\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		p := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(p, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if got := FindConfigFile(p); got != p {
			t.Errorf("expected %q, got %q", p, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("expected %s dir to end with %q, got %q", name, AppName, dir)
		}
	}
}
