package config

import (
	"fmt"
	"maps"
	"time"
)

// Source names accepted under "sources" in the configuration file.
const (
	SourceJapanese = "jp"
	SourceEnglish  = "en"
)

// SiteConfig holds per-wiki request settings.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to the site.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// SourceConfig describes where one tag list lives and where its JSON goes.
type SourceConfig struct {
	// Site is the wiki's unix name and the subdirectory of the raw dir.
	Site string `yaml:"site,omitempty"`

	// Entry is the file the parse starts from.
	Entry string `yaml:"entry,omitempty"`

	// Output is the JSON file name inside the output directory.
	Output string `yaml:"output,omitempty"`
}

// FetchConfig holds settings for mirroring pages.
type FetchConfig struct {
	URLTemplate string        `yaml:"url_template,omitempty"`
	UserAgent   string        `yaml:"user_agent,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`

	// Pages lists "site:page" references to mirror.
	Pages []string `yaml:"pages,omitempty"`

	// Defaults apply to every site unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps a wiki unix name to its request settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// File represents the structure of the .tagdict configuration file.
type File struct {
	// Sources is keyed by "jp" or "en".
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`

	// Dictionary is the output file name of the English to Japanese map.
	Dictionary string `yaml:"dictionary,omitempty"`

	RawDir    string `yaml:"raw_dir,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`

	// Icons maps restriction glyphs to their meaning, on top of the
	// built-in table.
	Icons map[string]string `yaml:"icons,omitempty"`

	// Encodings is the decoder chain, e.g. [utf-8, shift_jis].
	Encodings []string `yaml:"encodings,omitempty"`

	Fetch FetchConfig `yaml:"fetch,omitempty"`
}

// GetSiteConfig returns the request settings for a wiki.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(site string) SiteConfig {
	result := SiteConfig{
		Cookie:  cf.Fetch.Defaults.Cookie,
		Headers: maps.Clone(cf.Fetch.Defaults.Headers),
	}

	siteConfig, ok := cf.Fetch.Sites[site]
	if !ok {
		return result
	}
	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(siteConfig.Headers))
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	return result
}

// Validate checks the source keys.
func (cf *File) Validate() error {
	for name := range cf.Sources {
		if name != SourceJapanese && name != SourceEnglish {
			return fmt.Errorf("%w: %q", ErrInvalidSource, name)
		}
	}
	return nil
}

// Apply copies the values set in the file onto cfg.
// isSet reports whether the CLI flag with the given name was given
// explicitly; such values are left alone so flags win over the file.
// A nil isSet applies everything.
func (cf *File) Apply(cfg *Config, isSet func(flag string) bool) {
	if isSet == nil {
		isSet = func(string) bool { return false }
	}
	setString := func(flag string, dst *string, v string) {
		if v != "" && !isSet(flag) {
			*dst = v
		}
	}

	if jp, ok := cf.Sources[SourceJapanese]; ok {
		setString("jp-site", &cfg.JPSite, jp.Site)
		setString("jp-entry", &cfg.JPEntry, jp.Entry)
		setString("jp-output", &cfg.JPOutput, jp.Output)
	}
	if en, ok := cf.Sources[SourceEnglish]; ok {
		setString("en-site", &cfg.ENSite, en.Site)
		setString("en-entry", &cfg.ENEntry, en.Entry)
		setString("en-output", &cfg.ENOutput, en.Output)
	}
	setString("dict-output", &cfg.DictOutput, cf.Dictionary)
	setString("raw-dir", &cfg.RawDir, cf.RawDir)
	setString("output-dir", &cfg.OutputDir, cf.OutputDir)
	setString("url-template", &cfg.URLTemplate, cf.Fetch.URLTemplate)
	setString("user-agent", &cfg.UserAgent, cf.Fetch.UserAgent)
	setString("proxy", &cfg.ProxyAddress, cf.Fetch.Proxy)

	if len(cf.Encodings) > 0 && !isSet("encoding") {
		cfg.Encodings = cf.Encodings
	}
	if len(cf.Fetch.Pages) > 0 && !isSet("page") {
		cfg.Pages = cf.Fetch.Pages
	}
	if cf.Fetch.Timeout > 0 && !isSet("timeout") {
		cfg.Timeout = cf.Fetch.Timeout
	}
	if cf.Fetch.Concurrency > 0 && !isSet("concurrency") {
		cfg.Concurrency = cf.Fetch.Concurrency
	}
	if len(cf.Icons) > 0 {
		if cfg.Icons == nil {
			cfg.Icons = make(map[string]string, len(cf.Icons))
		}
		maps.Copy(cfg.Icons, cf.Icons)
	}
	cfg.File = cf
}
