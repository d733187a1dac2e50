package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// TestNewConfig verifies the defaults. Changing a default should fail here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default sources point at the tag lists", func(t *testing.T) {
		t.Parallel()
		if cfg.JPSite != "scp-jp" || cfg.JPEntry != "tag-list.txt" {
			t.Errorf("unexpected jp source %q/%q", cfg.JPSite, cfg.JPEntry)
		}
		if cfg.ENSite != "05command" || cfg.ENEntry != "tech-hub-tag-list.txt" {
			t.Errorf("unexpected en source %q/%q", cfg.ENSite, cfg.ENEntry)
		}
	})

	t.Run("default output names", func(t *testing.T) {
		t.Parallel()
		if cfg.JPOutput != "jp_tags.json" {
			t.Errorf("expected jp_tags.json, got %q", cfg.JPOutput)
		}
		if cfg.ENOutput != "en_tags.json" {
			t.Errorf("expected en_tags.json, got %q", cfg.ENOutput)
		}
		if cfg.DictOutput != "en_to_jp.json" {
			t.Errorf("expected en_to_jp.json, got %q", cfg.DictOutput)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Concurrency is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 4 {
			t.Errorf("expected Concurrency to be 4, got %d", cfg.Concurrency)
		}
	})

	t.Run("default directories come from XDG", func(t *testing.T) {
		t.Parallel()
		if cfg.RawDir != XDGCacheDir() {
			t.Errorf("expected RawDir %q, got %q", XDGCacheDir(), cfg.RawDir)
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("history is on by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid default config, got %v", err)
		}
	})
}

func TestConfigDirs(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.RawDir = filepath.Join("data", "raw")

	if got, want := cfg.JPDir(), filepath.Join("data", "raw", "scp-jp"); got != want {
		t.Errorf("JPDir() = %q, want %q", got, want)
	}
	if got, want := cfg.ENDir(), filepath.Join("data", "raw", "05command"); got != want {
		t.Errorf("ENDir() = %q, want %q", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "japanese only is valid", modify: func(c *Config) { c.ENEntry = "" }},
		{name: "english only is valid", modify: func(c *Config) { c.JPEntry = "" }},
		{
			name:   "no entries",
			modify: func(c *Config) { c.JPEntry, c.ENEntry = "", "" },
			want:   ErrNoSource,
		},
		{name: "empty raw dir", modify: func(c *Config) { c.RawDir = "" }, want: ErrNoRawDir},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, want: ErrInvalidTimeout},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "zero concurrency", modify: func(c *Config) { c.Concurrency = 0 }, want: ErrInvalidConcurrency},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, want: ErrInvalidMaxBodySize},
		{name: "zero body size is valid", modify: func(c *Config) { c.MaxBodySize = 0 }},
		{name: "negative diagnostic limit", modify: func(c *Config) { c.DiagnosticLimit = -1 }, want: ErrInvalidDiagnosticLimit},
		{name: "zero debounce", modify: func(c *Config) { c.Debounce = 0 }, want: ErrInvalidDebounce},
		{
			name:   "json and markdown both enabled",
			modify: func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			want:   ErrConflictingReportFormats,
		},
		{name: "json only is valid", modify: func(c *Config) { c.JSONReport = true }},
		{name: "markdown only is valid", modify: func(c *Config) { c.MarkdownReport = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.RawDir = "raw"
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

func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		file := &File{Fetch: FetchConfig{
			Defaults: SiteConfig{Cookie: "wikidot_token7=abc"},
		}}

		cfg := file.GetSiteConfig("scp-wiki")
		if cfg.Cookie != "wikidot_token7=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("site cookie overrides default", func(t *testing.T) {
		t.Parallel()

		file := &File{Fetch: FetchConfig{
			Defaults: SiteConfig{Cookie: "wikidot_token7=abc"},
			Sites: map[string]SiteConfig{
				"05command": {Cookie: "wikidot_token7=xyz"},
			},
		}}

		cfg := file.GetSiteConfig("05command")
		if cfg.Cookie != "wikidot_token7=xyz" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("merges headers from defaults and site", func(t *testing.T) {
		t.Parallel()

		file := &File{Fetch: FetchConfig{
			Defaults: SiteConfig{Headers: map[string]string{
				"Accept-Language": "ja",
				"X-Default":       "1",
			}},
			Sites: map[string]SiteConfig{
				"05command": {Headers: map[string]string{"Accept-Language": "en"}},
			},
		}}

		cfg := file.GetSiteConfig("05command")
		if cfg.Headers["Accept-Language"] != "en" {
			t.Errorf("expected site header to override, got %q", cfg.Headers["Accept-Language"])
		}
		if cfg.Headers["X-Default"] != "1" {
			t.Errorf("expected default header, got %v", cfg.Headers)
		}
		if file.Fetch.Defaults.Headers["Accept-Language"] != "ja" {
			t.Error("merging must not modify the default headers")
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()

		file := &File{}
		cfg := file.GetSiteConfig("scp-jp")
		if cfg.Cookie != "" || len(cfg.Headers) != 0 {
			t.Errorf("expected empty site config, got %+v", cfg)
		}
	})
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	file := &File{
		Sources: map[string]SourceConfig{
			SourceJapanese: {Site: "scp-jp-sandbox", Entry: "list.txt", Output: "jp.json"},
			SourceEnglish:  {Entry: "en-list.txt"},
		},
		Dictionary: "dict.json",
		Icons:      map[string]string{"X": "extra"},
		Encodings:  []string{"utf-8"},
		Fetch: FetchConfig{
			UserAgent:   "custom-agent",
			Proxy:       "127.0.0.1:1080",
			Timeout:     5 * time.Second,
			Concurrency: 2,
			Pages:       []string{"scp-jp:tag-list"},
		},
	}

	t.Run("applies every set value", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		file.Apply(cfg, nil)

		if cfg.JPSite != "scp-jp-sandbox" || cfg.JPEntry != "list.txt" || cfg.JPOutput != "jp.json" {
			t.Errorf("unexpected jp source: %q %q %q", cfg.JPSite, cfg.JPEntry, cfg.JPOutput)
		}
		if cfg.ENSite != DefaultENSite {
			t.Errorf("unset site must keep default, got %q", cfg.ENSite)
		}
		if cfg.ENEntry != "en-list.txt" {
			t.Errorf("expected en entry from file, got %q", cfg.ENEntry)
		}
		if cfg.DictOutput != "dict.json" {
			t.Errorf("expected dict output from file, got %q", cfg.DictOutput)
		}
		if cfg.Icons["X"] != "extra" {
			t.Errorf("expected icon from file, got %v", cfg.Icons)
		}
		if !slices.Equal(cfg.Encodings, []string{"utf-8"}) {
			t.Errorf("unexpected encodings %v", cfg.Encodings)
		}
		if cfg.UserAgent != "custom-agent" || cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("unexpected fetch settings %q %q", cfg.UserAgent, cfg.ProxyAddress)
		}
		if cfg.Timeout != 5*time.Second || cfg.Concurrency != 2 {
			t.Errorf("unexpected timeout/concurrency %v/%d", cfg.Timeout, cfg.Concurrency)
		}
		if !slices.Equal(cfg.Pages, []string{"scp-jp:tag-list"}) {
			t.Errorf("unexpected pages %v", cfg.Pages)
		}
		if cfg.File != file {
			t.Error("expected File to be attached")
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.JPEntry = "flag.txt"
		cfg.Timeout = time.Minute
		set := map[string]bool{"jp-entry": true, "timeout": true}
		file.Apply(cfg, func(flag string) bool { return set[flag] })

		if cfg.JPEntry != "flag.txt" {
			t.Errorf("expected flag entry to win, got %q", cfg.JPEntry)
		}
		if cfg.Timeout != time.Minute {
			t.Errorf("expected flag timeout to win, got %v", cfg.Timeout)
		}
		if cfg.JPOutput != "jp.json" {
			t.Errorf("expected unset flag to take file value, got %q", cfg.JPOutput)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.tagdict")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".tagdict")
		content := `sources:
  jp:
    site: scp-jp
    entry: tag-list.txt
    output: jp_tags.json
  en:
    site: 05command
dictionary: en_to_jp.json
encodings: [utf-8, shift_jis]
icons:
  "\uf071": "warning"
fetch:
  timeout: 45s
  concurrency: 2
  pages:
    - scp-jp:tag-list
  defaults:
    headers:
      Accept-Language: ja
  sites:
    05command:
      cookie: "wikidot_token7=abc"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Sources[SourceJapanese].Output != "jp_tags.json" {
			t.Errorf("unexpected jp source %+v", cfg.Sources[SourceJapanese])
		}
		if cfg.Sources[SourceEnglish].Site != "05command" {
			t.Errorf("unexpected en source %+v", cfg.Sources[SourceEnglish])
		}
		if cfg.Fetch.Timeout != 45*time.Second {
			t.Errorf("expected 45s timeout, got %v", cfg.Fetch.Timeout)
		}
		if cfg.Icons["\uf071"] != "warning" {
			t.Errorf("unexpected icons %v", cfg.Icons)
		}
		if !slices.Equal(cfg.Encodings, []string{"utf-8", "shift_jis"}) {
			t.Errorf("unexpected encodings %v", cfg.Encodings)
		}
		site := cfg.GetSiteConfig("05command")
		if site.Cookie != "wikidot_token7=abc" || site.Headers["Accept-Language"] != "ja" {
			t.Errorf("unexpected site config %+v", site)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".tagdict")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects unknown source names", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".tagdict")
		content := "sources:\n  fr:\n    site: fondationscp\n"
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		if !errors.Is(err, ErrInvalidSource) {
			t.Errorf("expected ErrInvalidSource, got %v", err)
		}
	})

	t.Run("initializes nil maps", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".tagdict")
		if err := os.WriteFile(configPath, []byte("dictionary: d.json\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sources == nil || cfg.Fetch.Sites == nil {
			t.Error("expected maps to be initialized")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q does not end in %q", name, dir, AppName)
		}
	}
}
