package analyze

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// noteContext is the number of runes kept on each side of a prohibition.
const noteContext = 50

var (
	obligationPattern  = regexp.MustCompile(`必ず[^。\n]*?(?:ください|必要があります|ねばなりません)。?`)
	prohibitionPattern = regexp.MustCompile(`(?:使用|付与|併用)(?:でき)?(?:ない|ません)`)
)

// OtherNotes returns obligation sentences and prohibition phrases with
// their surrounding context, in order of appearance and without duplicates.
func OtherNotes(text string) []string {
	notes := make([]string, 0)
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		notes = append(notes, s)
	}

	for _, m := range obligationPattern.FindAllString(text, -1) {
		add(m)
	}

	runes := []rune(text)
	for _, loc := range prohibitionPattern.FindAllStringIndex(text, -1) {
		start := utf8.RuneCountInString(text[:loc[0]])
		end := start + utf8.RuneCountInString(text[loc[0]:loc[1]])
		add(string(runes[max(0, start-noteContext):min(len(runes), end+noteContext)]))
	}

	return notes
}
