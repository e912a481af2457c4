package cleaner

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultStripSelectors are elements whose text is never rendered.
var DefaultStripSelectors = []string{"script", "style", "noscript", "template"}

// StripCleaner removes non-rendered elements and comments from the DOM so
// their text cannot end up in table cells. Table structure is untouched.
type StripCleaner struct {
	selectors []string
}

// NewStrip creates a strip cleaner. With no selectors the defaults apply.
func NewStrip(selectors ...string) *StripCleaner {
	if len(selectors) == 0 {
		selectors = DefaultStripSelectors
	}
	return &StripCleaner{selectors: selectors}
}

// Clean parses content, drops matching elements and comments and renders
// the document back to HTML.
func (c *StripCleaner) Clean(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(strings.Join(c.selectors, ", ")).Remove()
	for _, n := range doc.Nodes {
		removeComments(n)
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out, nil
}

// Name returns the cleaner type.
func (c *StripCleaner) Name() string {
	return "strip"
}

func removeComments(n *html.Node) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		if child.Type == html.CommentNode {
			n.RemoveChild(child)
		} else {
			removeComments(child)
		}
		child = next
	}
}
