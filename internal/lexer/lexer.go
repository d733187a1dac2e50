// Package lexer turns expanded tag-list markup into heading and
// tag-definition tokens.
//
// Lines that are neither headings nor tag definitions are discarded.
// A tag definition absorbs the indented lines that follow it into its
// description; this indentation heuristic is best-effort and a stray
// indented line after a definition will be absorbed as well.
package lexer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/tagdict/internal/diag"
	"github.com/nao1215/tagdict/internal/model"
)

// MaxHeadingLevel is the deepest heading the tag-list format uses.
const MaxHeadingLevel = 2

var (
	headingPattern = regexp.MustCompile(`^(\++)[ \t]+(.+?)[ \t]*$`)
	anchorPattern  = regexp.MustCompile(`^(.*?)\s*\[\[#\s*([^\]]+?)\s*\]\]\s*$`)

	tagPattern = regexp.MustCompile(
		`^[ \t\x{3000}]*\*[ \t\x{3000}]*` +
			`(?P<icons>(?:,,[^,]+,,[ \t\x{3000}]*)*)` +
			`(?:\*\*)?\[\[\[/system:page-tags/tag/(?P<slug>[^|\]]*)\|(?P<name>[^\]]*)\]\]\](?:\*\*)?` +
			`[ \t\x{3000}]*(?://\((?P<foreign>[^)]*)\)//[ \t\x{3000}]*)?` +
			`-\s*(?P<desc>.*)$`)

	tagIcons   = tagPattern.SubexpIndex("icons")
	tagSlug    = tagPattern.SubexpIndex("slug")
	tagName    = tagPattern.SubexpIndex("name")
	tagForeign = tagPattern.SubexpIndex("foreign")
	tagDesc    = tagPattern.SubexpIndex("desc")
)

// Lexer tokenizes one source file.
type Lexer struct {
	file  string
	diags *diag.Collector

	// classify consumes the line at an index. Replaced in tests.
	classify func(lines []string, i int) (int, model.Token)
}

// New creates a Lexer. file is only used to locate diagnostics.
func New(file string, diags *diag.Collector) *Lexer {
	l := &Lexer{file: file, diags: diags}
	l.classify = l.classifyLine
	return l
}

// Lex returns the heading and tag-definition tokens of text in source order.
func (l *Lexer) Lex(text string) []model.Token {
	lines := SplitLines(text)
	tokens := make([]model.Token, 0)

	for i := 0; i < len(lines); {
		next, tok := l.lexLine(lines, i)
		if tok != nil {
			tokens = append(tokens, tok)
		}
		i = next
	}
	return tokens
}

// lexLine classifies lines[i] and returns the index of the next
// unconsumed line. A panic is reported and the line is skipped.
func (l *Lexer) lexLine(lines []string, i int) (next int, tok model.Token) {
	defer func() {
		if r := recover(); r != nil {
			l.diags.Error(diag.KindParseError, "failed to lex line",
				diag.At(l.file, i+1),
				diag.WithDetail("panic", fmt.Sprint(r)),
				diag.WithDetail("text", lines[i]),
			)
			next, tok = i+1, nil
		}
	}()
	return l.classify(lines, i)
}

// classifyLine recognizes a heading or a tag definition with its
// continuation lines.
func (l *Lexer) classifyLine(lines []string, i int) (int, model.Token) {
	line := lines[i]
	if h, ok := l.heading(line, i+1); ok {
		return i + 1, h
	}

	def, ok := matchTag(line)
	if !ok {
		return i + 1, nil
	}
	def.LineNumber = i + 1
	def.SourceLine = line

	j := i + 1
	var parts []string
	for j < len(lines) && IsContinuation(lines[j]) {
		parts = append(parts, strings.TrimSpace(lines[j]))
		j++
	}
	if len(parts) > 0 {
		def.Description = strings.Join(append([]string{def.Description}, parts...), "\n")
	}
	return j, def
}

// heading recognizes a heading line. Levels deeper than MaxHeadingLevel
// are reported and not returned.
func (l *Lexer) heading(line string, lineNo int) (model.Token, bool) {
	h, ok := MatchHeading(line)
	if !ok {
		return nil, false
	}
	h.LineNumber = lineNo

	if h.Level > MaxHeadingLevel {
		l.diags.Error(diag.KindParseError, "heading deeper than two levels ignored",
			diag.At(l.file, lineNo),
			diag.WithDetail("level", strconv.Itoa(h.Level)),
			diag.WithDetail("title", h.Title),
		)
		return nil, true
	}
	return h, true
}

// MatchHeading parses a "+ title [[# id]]" line of any depth.
// LineNumber is left zero.
func MatchHeading(line string) (model.Heading, bool) {
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return model.Heading{}, false
	}
	title, id := splitAnchor(m[2])
	return model.Heading{Level: len(m[1]), Title: title, ID: id}, true
}

func splitAnchor(title string) (string, string) {
	if m := anchorPattern.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return strings.TrimSpace(title), ""
}

func matchTag(line string) (model.TagDefinition, bool) {
	m := tagPattern.FindStringSubmatch(line)
	if m == nil {
		return model.TagDefinition{}, false
	}
	return model.TagDefinition{
		Icons:       strings.TrimSpace(m[tagIcons]),
		Slug:        strings.TrimSpace(m[tagSlug]),
		NameLocal:   strings.TrimSpace(m[tagName]),
		NameForeign: strings.TrimSpace(m[tagForeign]),
		Description: strings.TrimSpace(m[tagDesc]),
	}, true
}

// IsContinuation reports whether line continues the description of the
// preceding tag definition: it must be indented, non-blank, and not look
// like a bullet, heading or tag definition.
func IsContinuation(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "+") {
		return false
	}
	if headingPattern.MatchString(line) || tagPattern.MatchString(line) {
		return false
	}
	switch []rune(line)[0] {
	case ' ', '\t', '\u3000':
		return true
	default:
		return false
	}
}

// SplitLines normalizes line endings and splits text into lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
