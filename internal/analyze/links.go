package analyze

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/tagdict/internal/model"
)

// TagNamespace is the path segment that marks tag-system links.
const TagNamespace = "system:page-tags/tag/"

var (
	// [[[target]]] or [[[target|display]]]
	tripleLinkPattern = regexp.MustCompile(`\[\[\[([^|\]]+)(?:\|([^\]]*))?\]\]\]`)

	// [http://url display], [/page display], [#anchor display], [*url display]
	singleLinkPattern = regexp.MustCompile(`\[\*?((?:https?://|/|#)[^\s\[\]|]*)(?:(?:\s+|\|)([^\[\]]+))?\]`)

	// any [[...]] directive
	directivePattern = regexp.MustCompile(`\[\[[^\]]*\]\]`)
)

// ScanLinks returns the non-tag pages linked from text, in order of first
// appearance and without duplicates. Tag-system links are left to MineTags.
func ScanLinks(text string) []model.RelatedPage {
	pages := make([]model.RelatedPage, 0)
	seen := make(map[string]bool)

	add := func(target, display string) {
		if isTagTarget(target) {
			return
		}
		slug := pageSlug(target)
		if slug == "" || seen[slug] {
			return
		}
		seen[slug] = true

		page := model.RelatedPage{Slug: slug}
		if d := strings.TrimSpace(display); d != "" {
			page.DisplayName = &d
		}
		pages = append(pages, page)
	}

	for _, m := range tripleLinkPattern.FindAllStringSubmatch(text, -1) {
		add(m[1], m[2])
	}

	rest := tripleLinkPattern.ReplaceAllString(text, " ")
	rest = directivePattern.ReplaceAllString(rest, " ")
	for _, m := range singleLinkPattern.FindAllStringSubmatch(rest, -1) {
		add(m[1], m[2])
	}

	return pages
}

func isTagTarget(target string) bool {
	return strings.Contains(target, TagNamespace)
}

// pageSlug normalizes a link target: relative page links lose their
// leading slash, absolute URLs are kept as they are.
func pageSlug(target string) string {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return strings.TrimPrefix(target, "/")
}

// tagSlug extracts the tag slug from a tag-system link target.
func tagSlug(target string) string {
	i := strings.Index(target, TagNamespace)
	if i < 0 {
		return ""
	}
	slug := target[i+len(TagNamespace):]
	if j := strings.IndexAny(slug, "#?/"); j >= 0 {
		slug = slug[:j]
	}
	if unescaped, err := url.PathUnescape(slug); err == nil {
		slug = unescaped
	}
	return strings.TrimSpace(slug)
}

// linkText is the text a link collapses to: its display text, or the
// slug of its target.
func linkText(target, display string) string {
	if d := strings.TrimSpace(display); d != "" {
		return d
	}
	if isTagTarget(target) {
		return tagSlug(target)
	}
	return pageSlug(target)
}
