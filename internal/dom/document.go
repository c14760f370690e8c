// Package dom provides a read-only view over a parsed HTML document with
// the query surface the locator generators need: id/class/name/tag
// lookups, CSS selector matching, and XPath evaluation. All three query
// engines share one parse, so node identity holds across them.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Document wraps a parsed HTML tree. It is safe for concurrent readers;
// nothing in this package mutates the tree.
type Document struct {
	root *html.Node
	gq   *goquery.Document
}

// Parse parses HTML from r into a Document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{
		root: root,
		gq:   goquery.NewDocumentFromNode(root),
	}, nil
}

// ParseString parses an HTML string into a Document.
func ParseString(s string) (*Document, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("html content required")
	}
	return Parse(strings.NewReader(s))
}

// Root returns the document's <html> element.
func (d *Document) Root() *Element {
	for n := d.root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return d.wrap(n)
		}
	}
	return nil
}

// Body returns the document's <body> element, or nil if absent.
func (d *Document) Body() *Element {
	matches := d.ElementsByTagName("body")
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// ElementsByID returns every element carrying the given id, in document
// order. Well-formed documents have at most one, but duplicate ids occur
// in the wild and uniqueness checking depends on seeing them all.
func (d *Document) ElementsByID(id string) []*Element {
	return d.collect(func(n *html.Node) bool {
		return attrValue(n, "id") == id
	})
}

// ElementsByClassName returns every element whose class list contains
// the given token.
func (d *Document) ElementsByClassName(class string) []*Element {
	return d.collect(func(n *html.Node) bool {
		for _, c := range strings.Fields(attrValue(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	})
}

// ElementsByName returns every element with the given name attribute.
func (d *Document) ElementsByName(name string) []*Element {
	return d.collect(func(n *html.Node) bool {
		return attrValue(n, "name") == name
	})
}

// ElementsByTagName returns every element with the given tag, in
// document order. The tag is matched case-insensitively.
func (d *Document) ElementsByTagName(tag string) []*Element {
	tag = strings.ToLower(tag)
	return d.collect(func(n *html.Node) bool {
		return strings.ToLower(n.Data) == tag
	})
}

// QuerySelectorAll evaluates a CSS selector against the document and
// returns all matches in document order. An invalid selector returns an
// error rather than panicking.
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compiling selector %q: %w", selector, err)
	}
	return d.wrapAll(d.gq.FindMatcher(sel).Nodes), nil
}

// XPathAll evaluates an XPath expression against the document and
// returns the ordered node snapshot.
func (d *Document) XPathAll(expr string) ([]*Element, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling xpath %q: %w", expr, err)
	}
	return d.wrapAll(htmlquery.QuerySelectorAll(d.root, compiled)), nil
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{node: n, doc: d}
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	elements := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elements = append(elements, d.wrap(n))
		}
	}
	return elements
}

func (d *Document) collect(match func(*html.Node) bool) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, d.wrap(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
