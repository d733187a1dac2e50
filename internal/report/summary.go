package report

import (
	"time"

	"github.com/nao1215/tagdict/internal/diag"
	"github.com/nao1215/tagdict/internal/dict"
)

// DefaultDiagnosticLimit is the number of diagnostic messages kept in a
// summary.
const DefaultDiagnosticLimit = 10

// SourceStats describes one parsed source.
type SourceStats struct {
	// Name identifies the source, e.g. "jp" or "en".
	Name string `json:"name"`

	// Entry is the entry file that was parsed.
	Entry string `json:"entry"`

	// Digest is the SHA3-256 digest of the raw bytes read.
	Digest string `json:"digest,omitempty"`

	// Records is the number of records emitted.
	Records int `json:"records"`

	// Output is the file the records were written to.
	Output string `json:"output,omitempty"`
}

// DiagnosticLine is a rendered diagnostic.
type DiagnosticLine struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// Summary describes the outcome of one run.
type Summary struct {
	RunID     string        `json:"run_id"`
	Version   string        `json:"version"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Sources    []SourceStats  `json:"sources"`
	Coverage   *dict.Coverage `json:"coverage,omitempty"`
	Dictionary string         `json:"dictionary,omitempty"`

	// DiagnosticCounts maps a diagnostic kind name to its count.
	DiagnosticCounts map[string]int `json:"diagnostic_counts"`

	// Diagnostics holds at most the first DefaultDiagnosticLimit entries.
	Diagnostics      []DiagnosticLine `json:"diagnostics"`
	TotalDiagnostics int              `json:"total_diagnostics"`

	// Critical is true when any critical diagnostic was recorded.
	Critical bool `json:"critical"`
}

// NewSummary creates a Summary and fills the diagnostic fields from diags,
// keeping at most limit messages.
func NewSummary(runID, version string, startedAt time.Time, diags *diag.Collector, limit int) *Summary {
	s := &Summary{
		RunID:            runID,
		Version:          version,
		StartedAt:        startedAt,
		Sources:          make([]SourceStats, 0),
		DiagnosticCounts: make(map[string]int),
		Diagnostics:      make([]DiagnosticLine, 0),
	}
	s.SetDiagnostics(diags, limit)
	return s
}

// SetDiagnostics refreshes the diagnostic fields from diags.
func (s *Summary) SetDiagnostics(diags *diag.Collector, limit int) {
	if diags == nil {
		return
	}

	all := diags.All()
	s.TotalDiagnostics = len(all)
	s.Critical = diags.HasCritical()

	s.DiagnosticCounts = make(map[string]int)
	for kind, n := range diags.CountByKind() {
		s.DiagnosticCounts[kind.String()] = n
	}

	s.Diagnostics = make([]DiagnosticLine, 0, min(limit, len(all)))
	for i, d := range all {
		if i >= limit {
			break
		}
		s.Diagnostics = append(s.Diagnostics, DiagnosticLine{
			Kind:     d.Kind.String(),
			Severity: d.Severity.String(),
			Message:  d.Message,
			File:     d.File,
			Line:     d.Line,
		})
	}
}

// AddSource appends the statistics of one parsed source.
func (s *Summary) AddSource(stats SourceStats) {
	s.Sources = append(s.Sources, stats)
}

// Status returns a one-word status for the run.
func (s *Summary) Status() string {
	switch {
	case s.Critical:
		return "FAILED"
	case s.TotalDiagnostics > 0:
		return "OK (with warnings)"
	default:
		return "OK"
	}
}
