package fetch

import (
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// ExtractSource returns the wiki source carried by an HTML page. The text
// of a div with class "page-source" is preferred, then the element with
// id "page-content". <br> elements become newlines and non-breaking spaces
// become spaces.
func ExtractSource(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	node := findNode(doc, func(n *html.Node) bool {
		return n.Data == "div" && hasClass(n, "page-source")
	})
	if node == nil {
		node = findNode(doc, func(n *html.Node) bool {
			return getAttr(n, "id") == "page-content"
		})
	}
	if node == nil {
		return "", ErrNoSource
	}

	var sb strings.Builder
	afterBreak := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteString("\n")
			afterBreak = true
			return
		case n.Type == html.TextNode:
			text := strings.ReplaceAll(n.Data, "\u00a0", " ")
			if afterBreak {
				text = strings.TrimPrefix(text, "\n")
			}
			sb.WriteString(text)
			afterBreak = false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	return strings.Trim(sb.String(), "\n"), nil
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(getAttr(n, "class")), class)
}

// getAttr returns the value of an attribute.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
