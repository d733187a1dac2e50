package analyze

import "strings"

const (
	footnoteOpen  = "[[footnote]]"
	footnoteClose = "[[/footnote]]"
)

// StripFootnotes removes [[footnote]] blocks from text and returns the
// remaining body and the footnote contents in order. An opening marker
// without a closing one takes the rest of the text as its content and
// sets unterminated.
func StripFootnotes(text string) (body string, notes []string, unterminated bool) {
	notes = make([]string, 0)
	var b strings.Builder

	rest := text
	for {
		i := strings.Index(rest, footnoteOpen)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		after := rest[i+len(footnoteOpen):]

		j := strings.Index(after, footnoteClose)
		if j < 0 {
			if note := strings.TrimSpace(after); note != "" {
				notes = append(notes, note)
			}
			unterminated = true
			break
		}
		if note := strings.TrimSpace(after[:j]); note != "" {
			notes = append(notes, note)
		}
		rest = after[j+len(footnoteClose):]
	}

	return b.String(), notes, unterminated
}
