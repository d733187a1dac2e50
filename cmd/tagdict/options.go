package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/tagdict/internal/config"
	"github.com/nao1215/tagdict/internal/database"
	"github.com/nao1215/tagdict/internal/fetch"
	seclog "github.com/nao1215/tagdict/internal/log"
	"github.com/nao1215/tagdict/internal/pipeline"
	"github.com/nao1215/tagdict/internal/report"
	"github.com/spf13/cobra"
)

// addSourceFlags registers the flags selecting the raw sources and the
// JSON outputs.
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("raw-dir", "r", "",
		"Directory holding mirrored pages, one subdirectory per site (default: XDG cache directory)")
	f.String("jp-site", config.DefaultJPSite, "Raw subdirectory of the Japanese tag list")
	f.String("jp-entry", config.DefaultJPEntry, "Entry file of the Japanese tag list")
	f.String("en-site", config.DefaultENSite, "Raw subdirectory of the English tag list")
	f.String("en-entry", config.DefaultENEntry, "Entry file of the English tag list")
	f.StringSlice("encoding", nil,
		"Encodings tried in order when decoding sources (default: utf-8,shift_jis,euc-jp,iso-2022-jp)")
	f.StringP("output-dir", "d", config.DefaultOutputDir, "Directory for JSON outputs")
	f.String("jp-output", config.DefaultJPOutput, "File name of the Japanese records")
	f.String("en-output", config.DefaultENOutput, "File name of the English records")
	f.String("dict-output", config.DefaultDictOutput, "File name of the English to Japanese dictionary")
}

// addFetchFlags registers the flags controlling page downloads.
func addFetchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceP("page", "p", nil,
		`Page to mirror as "site:page" (repeatable, default: the tag list pages)`)
	f.String("url-template", fetch.DefaultURLTemplate, "Page URL template; {site} and {page} are substituted")
	f.String("user-agent", config.DefaultUserAgent, "User-Agent header sent with requests")
	f.String("proxy", "", "SOCKS5 proxy address (host:port)")
	f.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	f.IntP("concurrency", "n", config.DefaultConcurrency, "Number of pages fetched at once")
	f.Int64("max-body-size", config.DefaultMaxBodySize, "Maximum response body size in bytes")
}

// addReportFlags registers the flags controlling the run report.
func addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolP("json", "j", false, "Output the run report as JSON (mutually exclusive with --markdown)")
	f.BoolP("markdown", "m", false, "Output the run report as Markdown (mutually exclusive with --json)")
	f.StringP("report", "o", "", "Write the run report to this file (creates directories if needed)")
	f.Int("diagnostics", config.DefaultDiagnosticLimit, "Number of diagnostics listed in the report")
}

// addDBFlag registers the history database directory flag.
func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")
}

// buildConfig creates a Config from defaults, the configuration file and
// the command's flags. Flags given explicitly win over the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	file, err := loadConfigFile(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	if file != nil {
		file.Apply(cfg, cmd.Flags().Changed)
	}
	return cfg, nil
}

// applyFlags copies the flags set on the command line onto cfg. Flags the
// command does not define are never reported as changed.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()

	strs := map[string]*string{
		"config":       &cfg.ConfigFilePath,
		"log-level":    &cfg.LogLevel,
		"log-format":   &cfg.LogFormat,
		"log-file":     &cfg.LogFile,
		"raw-dir":      &cfg.RawDir,
		"jp-site":      &cfg.JPSite,
		"jp-entry":     &cfg.JPEntry,
		"en-site":      &cfg.ENSite,
		"en-entry":     &cfg.ENEntry,
		"output-dir":   &cfg.OutputDir,
		"jp-output":    &cfg.JPOutput,
		"en-output":    &cfg.ENOutput,
		"dict-output":  &cfg.DictOutput,
		"url-template": &cfg.URLTemplate,
		"user-agent":   &cfg.UserAgent,
		"proxy":        &cfg.ProxyAddress,
		"report":       &cfg.ReportFile,
		"db-dir":       &cfg.DBDir,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	bools := map[string]*bool{
		"verbose":  &cfg.Verbose,
		"json":     &cfg.JSONReport,
		"markdown": &cfg.MarkdownReport,
		"save":     &cfg.SaveToDB,
	}
	for name, dst := range bools {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	lists := map[string]*[]string{
		"encoding": &cfg.Encodings,
		"page":     &cfg.Pages,
	}
	for name, dst := range lists {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	ints := map[string]*int{
		"concurrency": &cfg.Concurrency,
		"diagnostics": &cfg.DiagnosticLimit,
	}
	for name, dst := range ints {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	durations := map[string]*time.Duration{
		"timeout":  &cfg.Timeout,
		"debounce": &cfg.Debounce,
	}
	for name, dst := range durations {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetDuration(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed("max-body-size") {
		v, err := fs.GetInt64("max-body-size")
		if err != nil {
			return err
		}
		cfg.MaxBodySize = v
	}
	return nil
}

// loadConfigFile finds and loads the configuration file.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise a missing file yields nil.
func loadConfigFile(path string) (*config.File, error) {
	found := config.FindConfigFile(path)
	if found == "" {
		if path != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil, nil
	}

	file, err := config.LoadConfigFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	return file, nil
}

// setupLogger creates the secure logger described by cfg. The returned
// function closes the log file, if any.
func setupLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func(), error) {
	level, err := seclog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	w := stderr
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := seclog.OpenLogFile(cfg.LogFile)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger, err := seclog.New(w, seclog.Options{Level: level, Format: cfg.LogFormat})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}

// setup builds and validates the configuration and the logger for cmd.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, func(), error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("configuration error: %w", err)
	}
	logger, closeFn, err := setupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, closeFn, nil
}

// signalContext returns a context cancelled on interrupt or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// runnerConfig maps cfg onto the pipeline inputs and outputs.
func runnerConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		JPDir:      cfg.JPDir(),
		JPEntry:    cfg.JPEntry,
		ENDir:      cfg.ENDir(),
		ENEntry:    cfg.ENEntry,
		OutputDir:  cfg.OutputDir,
		JPOutput:   cfg.JPOutput,
		ENOutput:   cfg.ENOutput,
		DictOutput: cfg.DictOutput,
		Encodings:  cfg.Encodings,
		Icons:      cfg.Icons,
	}
}

// openStore opens the history database when saving is enabled.
// It returns nil when saving is disabled.
func openStore(cfg *config.Config, logger *slog.Logger) (*database.TagDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())
	return db, nil
}

// writeSummary prints the plain-text summary to stderr and, when requested,
// the JSON or Markdown report to stdout or the report file.
func writeSummary(cmd *cobra.Command, cfg *config.Config, summary *report.Summary) error {
	writers := []report.Writer{
		report.NewSimpleWriter(cmd.ErrOrStderr(), report.WithVerbose(cfg.Verbose)),
	}

	if cfg.JSONReport || cfg.MarkdownReport || cfg.ReportFile != "" {
		out, closeFn, err := reportOutput(cmd, cfg.ReportFile)
		if err != nil {
			return err
		}
		defer closeFn()

		switch {
		case cfg.JSONReport:
			writers = append(writers, report.NewJSONWriter(out, report.WithPrettyPrint()))
		case cfg.MarkdownReport:
			writers = append(writers, report.NewMarkdownWriter(out))
		default:
			writers = append(writers, report.NewSimpleWriter(out, report.WithVerbose(true)))
		}
	}

	_, err := report.NewMultiWriter(writers...).Write(summary)
	return err
}

// reportOutput opens the report destination: path, or stdout when empty.
func reportOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
