package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// SimpleWriter outputs the end-of-run summary as plain text.
type SimpleWriter struct {
	baseWriter

	// verbose lists every kept diagnostic message.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables listing of diagnostic messages.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(s *Summary) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70) + "\n")
	sb.WriteString("tagdict run " + s.RunID + "\n")
	sb.WriteString(strings.Repeat("=", 70) + "\n")
	fmt.Fprintf(&sb, "Status:   %s\n", s.Status())
	fmt.Fprintf(&sb, "Duration: %s\n", s.Duration)
	sb.WriteString("\n")

	for _, src := range s.Sources {
		fmt.Fprintf(&sb, "[%s] %d record(s) from %s", src.Name, src.Records, src.Entry)
		if src.Output != "" {
			fmt.Fprintf(&sb, " -> %s", src.Output)
		}
		sb.WriteString("\n")
	}

	if c := s.Coverage; c != nil {
		fmt.Fprintf(&sb, "[dict] %d/%d English tag(s) matched (%.1f%%)", c.Matched, c.Total, c.Ratio()*100)
		if s.Dictionary != "" {
			fmt.Fprintf(&sb, " -> %s", s.Dictionary)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("-", 70) + "\n")
	if s.TotalDiagnostics == 0 {
		sb.WriteString("no errors\n")
	} else {
		fmt.Fprintf(&sb, "%d error(s):", s.TotalDiagnostics)
		for _, name := range slices.Sorted(maps.Keys(s.DiagnosticCounts)) {
			fmt.Fprintf(&sb, " %s=%d", name, s.DiagnosticCounts[name])
		}
		sb.WriteString("\n")
		if w.verbose {
			for _, d := range s.Diagnostics {
				sb.WriteString("  - " + formatDiagnostic(d) + "\n")
			}
			if rest := s.TotalDiagnostics - len(s.Diagnostics); rest > 0 {
				fmt.Fprintf(&sb, "  ... and %d more\n", rest)
			}
		}
	}

	return io.WriteString(w.output, sb.String())
}
