package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/tagdict/internal/analyze"
	"github.com/nao1215/tagdict/internal/database"
	"github.com/nao1215/tagdict/internal/dict"
	"github.com/nao1215/tagdict/internal/emitter"
	"github.com/nao1215/tagdict/internal/enparser"
	"github.com/nao1215/tagdict/internal/lexer"
	"github.com/nao1215/tagdict/internal/model"
	"github.com/nao1215/tagdict/internal/report"
	"github.com/nao1215/tagdict/internal/source"
)

// LoadStep reads a document's entry file and expands its includes.
type LoadStep struct {
	lang      Lang
	encodings []string
	logger    *slog.Logger
}

// NewLoadStep creates a LoadStep. An empty encodings list selects
// source.DefaultEncodings.
func NewLoadStep(lang Lang, encodings []string, logger *slog.Logger) *LoadStep {
	return &LoadStep{lang: lang, encodings: encodings, logger: logger}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load_" + string(s.lang)
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, run *Run) error {
	doc := run.Document(s.lang)

	decoder, err := source.NewDecoder(s.encodings)
	if err != nil {
		return err
	}
	loader := source.NewLoader(doc.Dir, run.Diags,
		source.WithDecoder(decoder),
		source.WithLogger(s.logger),
	)

	text, err := loader.Load(ctx, doc.Entry)
	if err != nil {
		return err
	}
	doc.Text = text
	doc.Digest = loader.Digest()
	return nil
}

// LexStep tokenizes the Japanese document.
type LexStep struct{}

// Name returns the step name.
func (s *LexStep) Name() string {
	return "lex"
}

// Do executes the lex step.
func (s *LexStep) Do(_ context.Context, run *Run) error {
	run.Tokens = lexer.New(run.JP.Entry, run.Diags).Lex(run.JP.Text)
	return nil
}

// EmitStep turns the Japanese tokens into tag records.
type EmitStep struct {
	icons  map[string]string
	logger *slog.Logger
}

// NewEmitStep creates an EmitStep. icons extends the default icon table.
func NewEmitStep(icons map[string]string, logger *slog.Logger) *EmitStep {
	return &EmitStep{icons: icons, logger: logger}
}

// Name returns the step name.
func (s *EmitStep) Name() string {
	return "emit"
}

// Do executes the emit step.
func (s *EmitStep) Do(_ context.Context, run *Run) error {
	analyzer := analyze.New(run.Diags, analyze.WithIcons(s.icons), analyze.WithLogger(s.logger))
	em := emitter.New(analyzer, run.Diags, emitter.WithLogger(s.logger))

	run.Tags = em.Emit(run.Tokens, run.JP.Entry)
	run.JP.Records = len(run.Tags)
	return nil
}

// ParseEnglishStep parses the English document.
type ParseEnglishStep struct {
	logger *slog.Logger
}

// NewParseEnglishStep creates a ParseEnglishStep.
func NewParseEnglishStep(logger *slog.Logger) *ParseEnglishStep {
	return &ParseEnglishStep{logger: logger}
}

// Name returns the step name.
func (s *ParseEnglishStep) Name() string {
	return "parse_en"
}

// Do executes the English parse step.
func (s *ParseEnglishStep) Do(_ context.Context, run *Run) error {
	parser := enparser.New(run.Diags, enparser.WithLogger(s.logger))
	run.EnglishTags = parser.Parse(run.EN.Text, run.EN.Entry)
	run.EN.Records = len(run.EnglishTags)
	return nil
}

// DumpStep writes a document's records as JSON.
type DumpStep struct {
	lang Lang
	path string
}

// NewDumpStep creates a DumpStep writing to path.
func NewDumpStep(lang Lang, path string) *DumpStep {
	return &DumpStep{lang: lang, path: path}
}

// Name returns the step name.
func (s *DumpStep) Name() string {
	return "dump_" + string(s.lang)
}

// Do executes the dump step.
func (s *DumpStep) Do(_ context.Context, run *Run) error {
	var v any
	if s.lang == English {
		v = nonNil(run.EnglishTags)
	} else {
		v = nonNil(run.Tags)
	}
	if err := report.DumpJSON(s.path, v, run.Diags); err != nil {
		return err
	}
	run.Document(s.lang).Output = s.path
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// DictStep joins the English records to the Japanese ones.
type DictStep struct {
	path string
}

// NewDictStep creates a DictStep. An empty path skips writing the
// dictionary file.
func NewDictStep(path string) *DictStep {
	return &DictStep{path: path}
}

// Name returns the step name.
func (s *DictStep) Name() string {
	return "dict"
}

// Do executes the dictionary step.
func (s *DictStep) Do(_ context.Context, run *Run) error {
	run.Dictionary = dict.Build(run.EnglishTags, run.Tags)
	coverage := dict.Measure(run.Dictionary, run.Tags)
	run.Coverage = &coverage

	if s.path == "" {
		return nil
	}
	if err := report.DumpJSON(s.path, run.Dictionary, run.Diags); err != nil {
		return err
	}
	run.DictionaryOutput = s.path
	return nil
}

// RunStore persists runs. *database.TagDB implements it.
type RunStore interface {
	InsertRun(ctx context.Context, run *database.Run, tags []model.Tag, dict model.Dictionary) error
	LatestRun(ctx context.Context) (*database.Run, error)
}

// PersistStep records the run in the history database.
type PersistStep struct {
	store RunStore
}

// NewPersistStep creates a PersistStep.
func NewPersistStep(store RunStore) *PersistStep {
	return &PersistStep{store: store}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, run *Run) error {
	record := &database.Run{
		ID:          run.ID,
		StartedAt:   run.StartedAt,
		Duration:    run.Duration,
		JPDigest:    run.JP.Digest,
		ENDigest:    run.EN.Digest,
		JPCount:     run.JP.Records,
		ENCount:     run.EN.Records,
		Diagnostics: run.Diags.Count(),
		HasCritical: run.Diags.HasCritical(),
	}
	if run.Coverage != nil {
		record.Matched = run.Coverage.Matched
	}
	if err := s.store.InsertRun(ctx, record, run.Tags, run.Dictionary); err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	return nil
}
