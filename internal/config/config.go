package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tagdict"

	// DefaultJPSite is the Japanese wiki that publishes the tag list.
	DefaultJPSite = "scp-jp"

	// DefaultENSite is the English staff wiki that publishes the tech hub
	// tag list.
	DefaultENSite = "05command"

	// DefaultJPEntry is the mirrored file the Japanese tag list starts from.
	// Fragments it includes are resolved next to it.
	DefaultJPEntry = "tag-list.txt"

	// DefaultENEntry is the mirrored English tag list.
	DefaultENEntry = "tech-hub-tag-list.txt"

	// DefaultOutputDir is where JSON outputs are written.
	DefaultOutputDir = "output"

	// Default output file names inside OutputDir.
	DefaultJPOutput   = "jp_tags.json"
	DefaultENOutput   = "en_tags.json"
	DefaultDictOutput = "en_to_jp.json"

	// DefaultTimeout is the per-request timeout used when fetching pages.
	// Wikidot occasionally stalls on large fragments, so this is generous.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of pages fetched at once.
	// Higher values tend to hit wikidot rate limiting.
	DefaultConcurrency = 4

	// DefaultUserAgent identifies tagdict in HTTP requests.
	DefaultUserAgent = "tagdict/1.0 (+https://github.com/nao1215/tagdict)"

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultDiagnosticLimit is how many diagnostics a report lists.
	DefaultDiagnosticLimit = 10

	// DefaultDebounce is the quiet period watch mode waits for before
	// re-running.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultLogLevel is used when neither --log-level nor --verbose is set.
	// Diagnostics are logged at warn and error, so they stay visible.
	DefaultLogLevel = "warn"

	// DefaultLogFormat is the slog handler format.
	DefaultLogFormat = "text"
)

// Config holds all configuration options for tagdict.
// It is populated from defaults, then the configuration file, then CLI
// flags, and passed down explicitly. Core packages never read it directly.
type Config struct {
	// RawDir is the root of the mirrored page sources. Each wiki has its
	// own subdirectory named after the site.
	// Defaults to the XDG cache directory.
	RawDir string

	// JPSite and ENSite name the subdirectories of RawDir holding each
	// source. An empty entry disables the corresponding source.
	JPSite  string
	JPEntry string
	ENSite  string
	ENEntry string

	// OutputDir receives the JSON outputs. An empty file name disables
	// that output.
	OutputDir  string
	JPOutput   string
	ENOutput   string
	DictOutput string

	// Encodings is the decoder chain tried on every source file.
	// Empty selects UTF-8 followed by the common Japanese legacy encodings.
	Encodings []string

	// Icons extends the built-in restriction icon table.
	Icons map[string]string

	// Pages lists the pages mirrored by fetch as "site:page" references.
	// Empty selects the built-in page list.
	Pages []string

	// URLTemplate builds page URLs; {site} and {page} are substituted.
	URLTemplate string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Timeout is the per-request timeout for fetching.
	Timeout time.Duration

	// Concurrency is the number of pages fetched at once.
	Concurrency int

	// MaxBodySize is the maximum response body size in bytes.
	// Set to 0 to use the default (10MB).
	MaxBodySize int64

	// Verbose enables debug logging. It wins over LogLevel.
	Verbose bool

	// LogLevel is one of debug, info, warn or error.
	LogLevel string

	// LogFormat is "text" or "json".
	LogFormat string

	// LogFile redirects logs to a file instead of stderr.
	LogFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .tagdict is searched in the current directory
	// and then in the home directory.
	ConfigFilePath string

	// File is the parsed configuration file, if any.
	// It carries per-site fetch settings that have no flag equivalent.
	File *File

	// JSONReport and MarkdownReport select the run report format.
	// Both false selects the plain-text summary. They are mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// DiagnosticLimit is how many diagnostics reports list individually.
	DiagnosticLimit int

	// DBDir is the directory holding the run history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB records each run in the history database.
	// Enabled by default so lookup and history have data.
	SaveToDB bool

	// Debounce is the quiet period watch mode waits for.
	Debounce time.Duration
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		RawDir:          XDGCacheDir(),
		JPSite:          DefaultJPSite,
		JPEntry:         DefaultJPEntry,
		ENSite:          DefaultENSite,
		ENEntry:         DefaultENEntry,
		OutputDir:       DefaultOutputDir,
		JPOutput:        DefaultJPOutput,
		ENOutput:        DefaultENOutput,
		DictOutput:      DefaultDictOutput,
		UserAgent:       DefaultUserAgent,
		Timeout:         DefaultTimeout,
		Concurrency:     DefaultConcurrency,
		MaxBodySize:     DefaultMaxBodySize,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		DiagnosticLimit: DefaultDiagnosticLimit,
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
		Debounce:        DefaultDebounce,
	}
}

// JPDir returns the directory the Japanese source is read from.
func (c *Config) JPDir() string {
	return filepath.Join(c.RawDir, c.JPSite)
}

// ENDir returns the directory the English source is read from.
func (c *Config) ENDir() string {
	return filepath.Join(c.RawDir, c.ENSite)
}

// XDGDataDir returns the XDG data directory for tagdict.
// On Linux: ~/.local/share/tagdict
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for tagdict.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for tagdict.
// Mirrored raw pages live here unless --raw-dir is given.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks that the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.JPEntry == "" && c.ENEntry == "" {
		return ErrNoSource
	}
	if c.RawDir == "" {
		return ErrNoRawDir
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.DiagnosticLimit < 0 {
		return ErrInvalidDiagnosticLimit
	}
	if c.Debounce <= 0 {
		return ErrInvalidDebounce
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
