package analyze

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/tagdict/internal/diag"
	"github.com/nao1215/tagdict/internal/model"
)

// Result is the outcome of analyzing one description.
type Result struct {
	Meta  model.Meta
	Plain string
}

// Analyzer extracts restrictions and description annotations.
// It is safe for concurrent use once configured.
type Analyzer struct {
	icons  IconTable
	index  *SlugIndex
	diags  *diag.Collector
	logger *slog.Logger

	// extract runs the extractors. Replaced in tests.
	extract func(raw string, loc model.SourceLocation) Result
}

// Option is a function that configures an Analyzer.
type Option func(*Analyzer)

// WithIcons extends the default icon table.
func WithIcons(extra map[string]string) Option {
	return func(a *Analyzer) {
		a.icons = a.icons.Merge(extra)
	}
}

// WithSlugIndex sets the name to slug index used to resolve mentions.
func WithSlugIndex(index *SlugIndex) Option {
	return func(a *Analyzer) {
		a.index = index
	}
}

// WithLogger sets a custom logger for the analyzer.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer reporting to diags.
func New(diags *diag.Collector, opts ...Option) *Analyzer {
	a := &Analyzer{
		icons: DefaultIcons(),
		diags: diags,
	}
	a.extract = a.runExtractors
	for _, opt := range opts {
		opt(a)
	}
	if a.index == nil {
		a.index = NewSlugIndex()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Index returns the analyzer's name to slug index.
func (a *Analyzer) Index() *SlugIndex {
	return a.index
}

// Analyze extracts the annotations of raw and its plain-text form.
// A failure inside any extractor is reported and degrades the result to
// the raw text with empty annotations.
func (a *Analyzer) Analyze(raw string, loc model.SourceLocation) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			a.diags.Error(diag.KindParseError, "description analysis failed",
				diag.At(loc.File, loc.Line),
				diag.WithDetail("panic", fmt.Sprint(r)),
			)
			res = Result{Meta: model.NewMeta(), Plain: raw}
		}
	}()
	return a.extract(raw, loc)
}

func (a *Analyzer) runExtractors(raw string, loc model.SourceLocation) Result {
	body, footnotes, unterminated := StripFootnotes(raw)
	if unterminated {
		a.diags.Error(diag.KindParseError, "unterminated footnote",
			diag.At(loc.File, loc.Line),
		)
	}

	meta := model.NewMeta()
	meta.Footnotes = footnotes
	meta.RelatedPages = ScanLinks(raw)
	meta.RelatedTags = a.MineTags(raw)
	meta.TargetPageTypes = PageTypes(raw)

	plain := PlainText(body)
	meta.OtherNotes = OtherNotes(plain)

	a.logger.Debug("analyzed description",
		"file", loc.File,
		"line", loc.Line,
		"related_tags", len(meta.RelatedTags),
		"related_pages", len(meta.RelatedPages),
	)

	return Result{Meta: meta, Plain: plain}
}
