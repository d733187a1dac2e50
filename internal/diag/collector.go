package diag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Diagnostic is one recorded problem.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string

	// File and Line locate the problem when known. Line is 0 otherwise.
	File string
	Line int

	// Details carries free-form context such as the offending text.
	Details map[string]string
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Kind, d.Message)
	if d.File != "" {
		fmt.Fprintf(&b, " (%s", d.File)
		if d.Line > 0 {
			fmt.Fprintf(&b, ":%d", d.Line)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Option is a function that configures a Diagnostic.
type Option func(*Diagnostic)

// At sets the file and line of a diagnostic.
func At(file string, line int) Option {
	return func(d *Diagnostic) {
		d.File = file
		d.Line = line
	}
}

// WithDetail attaches a key/value pair to a diagnostic.
func WithDetail(key, value string) Option {
	return func(d *Diagnostic) {
		if d.Details == nil {
			d.Details = make(map[string]string)
		}
		d.Details[key] = value
	}
}

// Collector is an append-only list of diagnostics for one run.
// It is safe for concurrent use.
type Collector struct {
	logger *slog.Logger

	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates a Collector that also logs every diagnostic it
// receives. If logger is nil, slog.Default() is used.
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// Add records a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()

	level := slog.LevelWarn
	if d.Severity == SeverityError {
		level = slog.LevelError
	}

	attrs := []any{"kind", d.Kind.String()}
	if d.File != "" {
		attrs = append(attrs, "file", d.File)
	}
	if d.Line > 0 {
		attrs = append(attrs, "line", d.Line)
	}
	for k, v := range d.Details {
		attrs = append(attrs, k, v)
	}
	c.logger.Log(context.Background(), level, d.Message, attrs...)
}

// Warn records a warning-severity diagnostic.
func (c *Collector) Warn(kind Kind, msg string, opts ...Option) {
	c.Add(build(kind, SeverityWarning, msg, opts))
}

// Error records an error-severity diagnostic.
func (c *Collector) Error(kind Kind, msg string, opts ...Option) {
	c.Add(build(kind, SeverityError, msg, opts))
}

func build(kind Kind, sev Severity, msg string, opts []Option) Diagnostic {
	d := Diagnostic{Kind: kind, Severity: sev, Message: msg}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// All returns a copy of every recorded diagnostic in insertion order.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the number of recorded diagnostics.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CountByKind returns the number of diagnostics per kind.
// Kinds with no diagnostics are absent from the map.
func (c *Collector) CountByKind() map[Kind]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[Kind]int)
	for _, d := range c.items {
		counts[d.Kind]++
	}
	return counts
}

// HasCritical reports whether any FileNotFound, ParseError or
// ValidationError diagnostic was recorded.
func (c *Collector) HasCritical() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.items {
		if d.Kind.Critical() {
			return true
		}
	}
	return false
}

// Summary renders the per-kind counts followed by the first n messages.
func (c *Collector) Summary(n int) string {
	items := c.All()
	if len(items) == 0 {
		return "no errors"
	}

	counts := c.CountByKind()
	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s):", len(items))
	for _, k := range Kinds() {
		if counts[k] > 0 {
			fmt.Fprintf(&b, " %s=%d", k, counts[k])
		}
	}
	b.WriteString("\n")

	for i, d := range items {
		if i >= n {
			fmt.Fprintf(&b, "  ... and %d more\n", len(items)-n)
			break
		}
		fmt.Fprintf(&b, "  - %s\n", d.Error())
	}
	return b.String()
}
