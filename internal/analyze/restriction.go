package analyze

import (
	"maps"
	"regexp"
	"strings"

	"github.com/nao1215/tagdict/internal/diag"
	"github.com/nao1215/tagdict/internal/model"
)

// UnknownIconMeaning is the meaning given to icons missing from the table.
const UnknownIconMeaning = "unknown icon"

var iconPattern = regexp.MustCompile(`,,([^,]+),,`)

// IconTable maps a restriction icon glyph to its meaning.
type IconTable map[string]string

// DefaultIcons returns the icons used by the tag list. The glyphs are
// Font Awesome private-use code points, except U+FE01, the variation
// selector older tag-list revisions use for "use prohibited".
func DefaultIcons() IconTable {
	return IconTable{
		"\ufe01": "use prohibited",
		"\uf05e": "use prohibited",
		"\uf023": "edit restricted",
		"\uf0ac": "relaxed for translations",
		"\uf005": "starred",
		"\uf071": "caution",
	}
}

// Merge returns a copy of t extended with extra. Entries in extra win.
func (t IconTable) Merge(extra map[string]string) IconTable {
	out := make(IconTable, len(t)+len(extra))
	maps.Copy(out, t)
	maps.Copy(out, extra)
	return out
}

// SplitIcons returns the icon codes found in a ",,X,, ,,Y,," run.
func SplitIcons(s string) []string {
	matches := iconPattern.FindAllStringSubmatch(s, -1)
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		if code := strings.TrimSpace(m[1]); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// Restrictions decodes an icon run into restrictions, in order.
// Each unknown icon is kept with UnknownIconMeaning and reported once.
func (a *Analyzer) Restrictions(icons string, loc model.SourceLocation) []model.Restriction {
	codes := SplitIcons(icons)
	out := make([]model.Restriction, 0, len(codes))
	for _, code := range codes {
		meaning, ok := a.icons[code]
		if !ok {
			meaning = UnknownIconMeaning
			a.diags.Error(diag.KindParseError, "unknown restriction icon",
				diag.At(loc.File, loc.Line),
				diag.WithDetail("icon", code),
			)
		}
		out = append(out, model.Restriction{Icon: code, Meaning: meaning})
	}
	return out
}
