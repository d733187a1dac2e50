package fetch

import (
	"fmt"
	"strings"

	"github.com/nao1215/tagdict/internal/source"
)

// Page identifies a wiki page.
type Page struct {
	// Site is the wiki's unix name, e.g. "scp-jp".
	Site string `yaml:"site"`

	// Name is the full page name, e.g. "fragment:tag-list-basic".
	Name string `yaml:"page"`
}

// String returns the page as "site:name".
func (p Page) String() string {
	return p.Site + ":" + p.Name
}

// FileName returns the file name the page is mirrored to.
func (p Page) FileName() string {
	return source.PageFileName(p.Name)
}

// ParsePage parses "site:page". The page part may itself contain colons.
func ParsePage(ref string) (Page, error) {
	site, name, ok := strings.Cut(strings.TrimSpace(ref), ":")
	if !ok || site == "" || name == "" {
		return Page{}, fmt.Errorf("%w: %q", ErrInvalidPage, ref)
	}
	return Page{Site: site, Name: name}, nil
}

// DefaultPages returns the Japanese tag list with its fragments and the
// English tech hub tag list.
func DefaultPages() []Page {
	return []Page{
		{Site: "scp-jp", Name: "tag-list"},
		{Site: "scp-jp", Name: "fragment:tag-list-basic"},
		{Site: "scp-jp", Name: "fragment:tag-list-series"},
		{Site: "scp-jp", Name: "fragment:tag-list-universe"},
		{Site: "scp-jp", Name: "fragment:tag-list-event"},
		{Site: "scp-jp", Name: "fragment:tag-list-unused"},
		{Site: "scp-jp", Name: "fragment:tag-list-faq"},
		{Site: "05command", Name: "tech-hub-tag-list"},
	}
}
