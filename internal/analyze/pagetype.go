package analyze

import (
	"regexp"
	"slices"
	"strings"
)

// Page types reported by PageTypes.
const (
	PageTypeSCP        = "scp"
	PageTypeTale       = "tale"
	PageTypeGoIFormat  = "goi-format"
	PageTypeGuide      = "guide"
	PageTypeSupplement = "supplement"
)

var pageTypeKeywords = map[string][]string{
	PageTypeSCP:        {"SCP報告書", "オブジェクト", "アイテム", "//scp//", "SCP article", "SCP object"},
	PageTypeTale:       {"Tale", "物語", "コンテンツ", "//tale//"},
	PageTypeGoIFormat:  {"GoI", "フォーマット", "//goi-format//"},
	PageTypeGuide:      {"ガイド", "解説", "//ガイド//", "guide"},
	PageTypeSupplement: {"補足", "サプリメント", "//補足//", "supplement"},
}

var (
	scpPhrasePattern = regexp.MustCompile(`(?:SCP報告書|SCPオブジェクト)の記事に付与`)

	// "//tale//タグが付与されている", "//scp//ページにしか付与できない"
	typedPhrasePattern = regexp.MustCompile(`//(scp|tale|goi-format|補足)//(?:タグ|ページ|記事)(?:が付与されて|に付与|にしか付与でき)(?:いる|ない)`)
)

var phraseTypes = map[string]string{
	"scp":        PageTypeSCP,
	"tale":       PageTypeTale,
	"goi-format": PageTypeGoIFormat,
	"補足":         PageTypeSupplement,
}

// PageTypes returns the sorted set of page types text refers to, from
// canonical phrasing and keyword containment.
func PageTypes(text string) []string {
	found := make(map[string]bool)

	if scpPhrasePattern.MatchString(text) {
		found[PageTypeSCP] = true
	}
	for _, m := range typedPhrasePattern.FindAllStringSubmatch(text, -1) {
		found[phraseTypes[m[1]]] = true
	}
	for pageType, keywords := range pageTypeKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				found[pageType] = true
				break
			}
		}
	}

	types := make([]string, 0, len(found))
	for t := range found {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
