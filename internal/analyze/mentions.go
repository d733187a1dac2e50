package analyze

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/tagdict/internal/model"
)

// tagLinkPattern matches tag-system links in both the triple-bracket and
// the single-bracket URL forms.
var tagLinkPattern = regexp.MustCompile(
	`\[\[\[(/?` + regexp.QuoteMeta(TagNamespace) + `[^|\]]+)(?:\|([^\]]*))?\]\]\]` +
		`|\[\*?(https?://[^\s\]]*/` + regexp.QuoteMeta(TagNamespace) + `[^\s\]]+)(?:\s+([^\]]*))?\]`)

// mentionRule binds a natural-language pattern to a relation type. The
// first capture group is the mentioned tag name.
type mentionRule struct {
	relation string
	pattern  *regexp.Regexp
}

const italicName = `//([^/\n]+)//`

// mentionRules are applied independently; a description may match any
// number of them.
var mentionRules = []mentionRule{
	{model.RelationExclusiveAlternative, regexp.MustCompile(italicName + `タグと(?:は)?併用(?:でき)?(?:ない|ません)`)},
	{model.RelationSubstitute, regexp.MustCompile(italicName + `タグ(?:を|の)(?:代わりに|代替として)(?:使用|使って)(?:して)?ください`)},
	{model.RelationSeeAlso, regexp.MustCompile(italicName + `タグ(?:を|も)(?:参照|確認)(?:して)?ください`)},
	{model.RelationRequiredCoTag, regexp.MustCompile(`必ず` + italicName + `タグと併用(?:して)?(?:ください|する必要があります|されねばなりません)`)},
	{model.RelationRecommendedCoTag, regexp.MustCompile(`適切(?:な)?(?:ら)?(?:ば)?` + italicName + `タグと併用(?:して)?ください`)},
	{model.RelationMention, regexp.MustCompile(`「([^」]+)」タグ`)},
	{model.RelationRequiredCoTag, regexp.MustCompile(`(?i)must (?:always )?be used (?:together |in conjunction )?with (?:the )?` + italicName)},
	{model.RelationSeeAlso, regexp.MustCompile(`(?i)see (?:also )?(?:the )?` + italicName + ` tag`)},
	{model.RelationExclusiveAlternative, regexp.MustCompile(`(?i)(?:do not|don't|should not|cannot|can't) (?:be )?(?:combined|combine|used|use) (?:together )?with (?:the )?` + italicName)},
}

// SlugIndex maps tag display names to slugs. It is safe for concurrent use.
type SlugIndex struct {
	mu    sync.RWMutex
	slugs map[string]string
}

// NewSlugIndex creates an empty index.
func NewSlugIndex() *SlugIndex {
	return &SlugIndex{slugs: make(map[string]string)}
}

// Add records that name refers to slug. The first mapping for a name wins.
func (x *SlugIndex) Add(name, slug string) {
	name, slug = strings.TrimSpace(name), strings.TrimSpace(slug)
	if name == "" || slug == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.slugs[name]; !ok {
		x.slugs[name] = slug
	}
}

// Lookup returns the slug recorded for name.
func (x *SlugIndex) Lookup(name string) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	slug, ok := x.slugs[strings.TrimSpace(name)]
	return slug, ok
}

// Len returns the number of names in the index.
func (x *SlugIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.slugs)
}

// GuessSlug derives a slug from a display name when no mapping is known:
// the name is lowercased and whitespace runs become "-".
func GuessSlug(name string) string {
	return cases.Lower(language.Und).String(strings.Join(strings.Fields(name), "-"))
}

// MineTags returns the tags related to text. Explicit tag links come first
// as link-reference, followed by every natural-language match in rule
// order. Duplicate (slug, relation) pairs are dropped.
func (a *Analyzer) MineTags(text string) []model.RelatedTag {
	tags := make([]model.RelatedTag, 0)
	seen := make(map[model.RelatedTag]bool)
	add := func(t model.RelatedTag) {
		if t.Slug == "" || seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}

	local := make(map[string]string)
	for _, m := range tagLinkPattern.FindAllStringSubmatch(text, -1) {
		target, display := m[1], m[2]
		if target == "" {
			target, display = m[3], m[4]
		}
		slug := tagSlug(target)
		if d := strings.TrimSpace(display); d != "" {
			local[d] = slug
		}
		add(model.RelatedTag{Slug: slug, RelationType: model.RelationLinkReference})
	}

	// Tag links inside phrasing such as "//[[[...|X]]]//タグと併用" are
	// matched by their display text.
	flat := tagLinkPattern.ReplaceAllStringFunc(text, func(s string) string {
		m := tagLinkPattern.FindStringSubmatch(s)
		if m[1] != "" {
			return linkText(m[1], m[2])
		}
		return linkText(m[3], m[4])
	})

	for _, rule := range mentionRules {
		for _, m := range rule.pattern.FindAllStringSubmatch(flat, -1) {
			name := strings.TrimSpace(m[1])
			add(model.RelatedTag{Slug: a.resolve(name, local), RelationType: rule.relation})
		}
	}

	return tags
}

func (a *Analyzer) resolve(name string, local map[string]string) string {
	if slug, ok := local[name]; ok {
		return slug
	}
	if slug, ok := a.index.Lookup(name); ok {
		return slug
	}
	return GuessSlug(name)
}
