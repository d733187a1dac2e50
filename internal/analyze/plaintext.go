package analyze

import (
	"regexp"
	"strings"
)

// blockNames are wrapper directives whose content is kept.
var blockNames = []string{"div", "span", "size", "code", "collapsible", "a", "tab", "tabview", "module", "html"}

// blockPatterns holds one pattern per block name; RE2 has no
// backreferences to pair an opening tag with its own closing tag.
var blockPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(blockNames))
	for i, name := range blockNames {
		out[i] = regexp.MustCompile(`(?is)\[\[` + name + `(?:\s[^\]]*)?\]\](.*?)\[\[/` + name + `\]\]`)
	}
	return out
}()

// wrapper is an inline markup pair replaced by repl.
type wrapper struct {
	pattern *regexp.Regexp
	repl    string
}

var wrappers = []wrapper{
	{regexp.MustCompile(`(?s)\*\*(.+?)\*\*`), "${1}"},
	// Italics never open or close right after a colon, so the "//" of a
	// bare URL survives.
	{regexp.MustCompile(`(?s)(^|[^:])//(.*?[^:])//`), "${1}${2}"},
	{regexp.MustCompile(`(?s)__(.+?)__`), "${1}"},
	// Strikethrough hugs its text; " -- " is a dash separator.
	{regexp.MustCompile(`(?s)--(\S(?:.*?\S)?)--`), "${1}"},
	{regexp.MustCompile(`(?s)\{\{(.+?)\}\}`), "${1}"},
	{regexp.MustCompile(`(?s),,(.+?),,`), "${1}"},
	{regexp.MustCompile(`(?s)\^\^(.+?)\^\^`), "${1}"},
	{regexp.MustCompile(`(?s)@@(.+?)@@`), "${1}"},
}

// PlainText strips wiki markup from text. Links become their display
// text, wrappers and blocks become their content, other directives are
// removed and whitespace is collapsed.
func PlainText(text string) string {
	s := tripleLinkPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := tripleLinkPattern.FindStringSubmatch(m)
		return linkText(sub[1], sub[2])
	})

	for _, p := range blockPatterns {
		for {
			next := p.ReplaceAllString(s, "${1}")
			if next == s {
				break
			}
			s = next
		}
	}

	s = directivePattern.ReplaceAllString(s, " ")

	s = singleLinkPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := singleLinkPattern.FindStringSubmatch(m)
		return linkText(sub[1], sub[2])
	})

	for _, w := range wrappers {
		s = w.pattern.ReplaceAllString(s, w.repl)
	}

	return strings.Join(strings.Fields(s), " ")
}
