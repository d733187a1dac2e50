// Package emitter builds validated tag records from lexer tokens.
package emitter

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/tagdict/internal/analyze"
	"github.com/nao1215/tagdict/internal/category"
	"github.com/nao1215/tagdict/internal/diag"
	"github.com/nao1215/tagdict/internal/model"
)

// Emitter turns a token sequence into tag records.
type Emitter struct {
	analyzer *analyze.Analyzer
	diags    *diag.Collector
	logger   *slog.Logger

	// record assembles one tag. Replaced in tests.
	record func(def model.TagDefinition, path []string, file string) model.Tag
}

// Option is a function that configures an Emitter.
type Option func(*Emitter)

// WithLogger sets a custom logger for the emitter.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// New creates an Emitter that analyzes descriptions with analyzer and
// reports to diags.
func New(analyzer *analyze.Analyzer, diags *diag.Collector, opts ...Option) *Emitter {
	e := &Emitter{analyzer: analyzer, diags: diags}
	e.record = e.assemble
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Emit returns one record per tag definition in tokens, in order.
// Records failing validation are still returned; a tag whose
// construction fails is reported and skipped.
func (e *Emitter) Emit(tokens []model.Token, file string) []model.Tag {
	e.seedIndex(tokens)

	tracker := category.NewTracker(file, e.diags, e.logger)
	tags := make([]model.Tag, 0, len(tokens))

	for _, tok := range tokens {
		switch t := tok.(type) {
		case model.Heading:
			tracker.Apply(t)
		case model.TagDefinition:
			if tag, ok := e.build(t, tracker.Path(), file); ok {
				tags = append(tags, tag)
			}
		}
	}

	e.logger.Info("emitted tags", "file", file, "tags", len(tags))
	return tags
}

// seedIndex teaches the analyzer every name defined in tokens so that
// mentions of tags defined later in the file resolve to real slugs.
func (e *Emitter) seedIndex(tokens []model.Token) {
	index := e.analyzer.Index()
	for _, tok := range tokens {
		if def, ok := tok.(model.TagDefinition); ok {
			index.Add(def.NameLocal, def.Slug)
			index.Add(def.NameForeign, def.Slug)
		}
	}
}

// build assembles the record for def. A panic is reported and the tag
// skipped.
func (e *Emitter) build(def model.TagDefinition, path []string, file string) (tag model.Tag, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.diags.Error(diag.KindParseError, "failed to build tag record",
				diag.At(file, def.LineNumber),
				diag.WithDetail("slug", def.Slug),
				diag.WithDetail("panic", fmt.Sprint(r)),
			)
			tag, ok = model.Tag{}, false
		}
	}()
	return e.record(def, path, file), true
}

func (e *Emitter) assemble(def model.TagDefinition, path []string, file string) model.Tag {
	loc := model.SourceLocation{File: file, Line: def.LineNumber}
	e.validate(def, loc)

	if len(path) == 0 {
		path = []string{model.Uncategorized}
	}

	result := e.analyzer.Analyze(def.Description, loc)

	return model.Tag{
		Slug:             def.Slug,
		NameLocal:        def.NameLocal,
		NameForeign:      def.NameForeign,
		DescriptionRaw:   def.Description,
		DescriptionPlain: result.Plain,
		CategoryPath:     path,
		Restrictions:     e.analyzer.Restrictions(def.Icons, loc),
		Meta:             result.Meta,
		SourceLocation:   loc,
	}
}

func (e *Emitter) validate(def model.TagDefinition, loc model.SourceLocation) {
	if def.Slug == "" {
		e.diags.Error(diag.KindValidationError, "tag has an empty slug",
			diag.At(loc.File, loc.Line), diag.WithDetail("name", def.NameLocal))
	}
	if def.NameLocal == "" {
		e.diags.Error(diag.KindValidationError, "tag has an empty name",
			diag.At(loc.File, loc.Line), diag.WithDetail("slug", def.Slug))
	}
	if def.Description == "" {
		e.logger.Warn("tag has an empty description",
			"file", loc.File, "line", loc.Line, "slug", def.Slug)
	}
}
