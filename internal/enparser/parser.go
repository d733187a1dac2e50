// Package enparser parses the English tech-hub tag list.
//
// The English list uses a different layout from the Japanese one: each tag
// is a bold external link followed by "--" and a description, and
// metadata follows as italic "Key: values" bullets.
//
//	+ Primary Tags
//	* **[http://scp-wiki.wikidot.com/system:page-tags/tag/scp scp]** -- SCP articles.
//	* //Related: 'tale', 'goi-format'//
package enparser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/nao1215/tagdict/internal/category"
	"github.com/nao1215/tagdict/internal/diag"
	"github.com/nao1215/tagdict/internal/lexer"
	"github.com/nao1215/tagdict/internal/model"
)

var (
	tagPattern  = regexp.MustCompile(`^\*\s*\*\*\[https?://[^ \]]+\s+([^\]]+)\]\*\*`)
	descPattern = regexp.MustCompile(`--\s*(.*)`)
	metaPattern = regexp.MustCompile(`^\*\s*//\s*([^:/]+):\s*(.*?)\s*//`)
)

// Parser parses English tag-list text.
type Parser struct {
	diags  *diag.Collector
	logger *slog.Logger
}

// Option is a function that configures a Parser.
type Option func(*Parser)

// WithLogger sets a custom logger for the parser.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New creates a Parser reporting to diags.
func New(diags *diag.Collector, opts ...Option) *Parser {
	p := &Parser{diags: diags}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Parse returns the tags defined in text, in order. Meta lines attach to
// the closest preceding tag.
func (p *Parser) Parse(text, file string) []model.EnglishTag {
	tracker := category.NewTracker(file, p.diags, p.logger)
	tags := make([]model.EnglishTag, 0)
	current := -1

	for i, raw := range lexer.SplitLines(text) {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if h, ok := lexer.MatchHeading(line); ok {
			h.LineNumber = lineNo
			tracker.Apply(h)
			continue
		}

		if m := tagPattern.FindStringSubmatch(line); m != nil {
			tag := p.newTag(m, line, file, lineNo, tracker.Path())
			tags = append(tags, tag)
			current = len(tags) - 1
			continue
		}

		if strings.HasPrefix(line, "* **[http") {
			p.diags.Error(diag.KindParseError, "malformed tag line",
				diag.At(file, lineNo), diag.WithDetail("text", line))
			continue
		}

		if current < 0 {
			continue
		}
		if m := metaPattern.FindStringSubmatch(line); m != nil {
			key := MetaKey(m[1])
			tags[current].Meta[key] = append(tags[current].Meta[key], MetaValues(m[2])...)
		}
	}

	p.logger.Info("parsed english tags", "file", file, "tags", len(tags))
	return tags
}

func (p *Parser) newTag(m []string, line, file string, lineNo int, path []string) model.EnglishTag {
	name := strings.TrimSpace(m[1])
	if name == "" {
		p.diags.Error(diag.KindValidationError, "tag has an empty name", diag.At(file, lineNo))
	}

	var desc string
	if d := descPattern.FindStringSubmatch(line[len(m[0]):]); d != nil {
		desc = strings.TrimSpace(d[1])
	}
	if desc == "" {
		p.logger.Warn("tag has an empty description", "file", file, "line", lineNo, "name", name)
	}

	if len(path) == 0 {
		path = []string{model.Uncategorized}
	}

	return model.EnglishTag{
		Name:           name,
		Description:    desc,
		CategoryPath:   path,
		Meta:           make(map[string][]string),
		SourceLocation: model.SourceLocation{File: file, Line: lineNo},
	}
}

// MetaKey normalizes a meta key: trimmed, lowercased, spaces to "-".
func MetaKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "-")
}

// MetaValues splits a comma-separated meta value list and removes quotes.
func MetaValues(s string) []string {
	values := make([]string, 0)
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(strings.ReplaceAll(v, "'", ""))
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}
