// Package analyze recovers structured annotations from tag descriptions.
//
// The Analyzer composes several independent extractors:
//   - Restrictions: decodes ",,X,," restriction icons
//   - ScanLinks: collects links to non-tag pages
//   - MineTags: finds related tags from tag links and natural-language phrasing
//   - PageTypes: guesses which page types a tag applies to
//   - StripFootnotes: separates [[footnote]] blocks from the body
//   - PlainText: removes all remaining markup
//   - OtherNotes: keeps obligation and prohibition sentences
//
// Every extractor is heuristic. They favor reporting a possible relation
// over silently dropping one.
package analyze
