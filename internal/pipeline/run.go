package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/tagdict/internal/diag"
	"github.com/nao1215/tagdict/internal/dict"
	"github.com/nao1215/tagdict/internal/model"
	"github.com/nao1215/tagdict/internal/report"
)

// Lang selects one of the two source documents of a run.
type Lang string

const (
	// Japanese is the scp-jp tag list.
	Japanese Lang = "jp"

	// English is the tech hub tag list.
	English Lang = "en"
)

// Document is the state of one source document within a run.
type Document struct {
	// Dir is the directory the entry and its fragments are read from.
	Dir string

	// Entry is the entry file name relative to Dir.
	Entry string

	// Text is the entry with every include expanded.
	Text string

	// Digest is the SHA3-256 digest of the bytes read.
	Digest string

	// Output is the JSON file the records were written to.
	Output string

	// Records is the number of records emitted.
	Records int
}

// Enabled reports whether the document takes part in the run.
func (d *Document) Enabled() bool {
	return d.Entry != ""
}

// Run is the state shared by the steps of one run.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration

	// Diags collects every diagnostic of the run.
	Diags *diag.Collector

	JP Document
	EN Document

	// Tokens is the lexed Japanese document.
	Tokens []model.Token

	// Tags are the emitted Japanese records.
	Tags []model.Tag

	// EnglishTags are the parsed English records.
	EnglishTags []model.EnglishTag

	Dictionary       model.Dictionary
	Coverage         *dict.Coverage
	DictionaryOutput string

	// Skipped is set when the sources did not change since the last
	// recorded run and nothing was parsed.
	Skipped bool

	// Steps lists the steps that completed, per pipeline.
	Steps map[string][]string
}

// NewRun creates a Run with a fresh ID.
func NewRun(diags *diag.Collector) *Run {
	return &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Diags:     diags,
		Steps:     make(map[string][]string),
	}
}

// Document returns the document for lang.
func (r *Run) Document(lang Lang) *Document {
	if lang == English {
		return &r.EN
	}
	return &r.JP
}

// Summary builds the run summary, keeping at most limit diagnostic
// messages.
func (r *Run) Summary(version string, limit int) *report.Summary {
	s := report.NewSummary(r.ID, version, r.StartedAt, r.Diags, limit)
	s.Duration = r.Duration
	for _, lang := range []Lang{Japanese, English} {
		doc := r.Document(lang)
		if !doc.Enabled() {
			continue
		}
		s.AddSource(report.SourceStats{
			Name:    string(lang),
			Entry:   doc.Entry,
			Digest:  doc.Digest,
			Records: doc.Records,
			Output:  doc.Output,
		})
	}
	s.Coverage = r.Coverage
	s.Dictionary = r.DictionaryOutput
	return s
}
