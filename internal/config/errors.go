package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// They are sentinels so callers can use errors.Is.
var (
	// ErrNoSource is returned when neither the Japanese nor the English
	// entry file is set.
	ErrNoSource = errors.New("no source specified: set --jp-entry or --en-entry")

	// ErrNoRawDir is returned when the raw page directory is empty.
	ErrNoRawDir = errors.New("no raw directory specified: set --raw-dir")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the fetch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to select the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidDiagnosticLimit is returned when the diagnostic limit is negative.
	ErrInvalidDiagnosticLimit = errors.New("invalid diagnostic limit: must be non-negative")

	// ErrInvalidDebounce is returned when the watch debounce interval is not positive.
	ErrInvalidDebounce = errors.New("invalid debounce interval: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidSource is returned when the configuration file names a
	// source other than jp or en.
	ErrInvalidSource = errors.New("invalid source name: must be jp or en")
)
