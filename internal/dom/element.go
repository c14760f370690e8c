package dom

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Element is a read-only handle on one element node in a Document.
type Element struct {
	node *html.Node
	doc  *Document
}

// Tag returns the lowercase tag name.
func (e *Element) Tag() string {
	return strings.ToLower(e.node.Data)
}

// ID returns the id attribute, or "".
func (e *Element) ID() string {
	return attrValue(e.node, "id")
}

// ClassName returns the raw class attribute value.
func (e *Element) ClassName() string {
	return attrValue(e.node, "class")
}

// Classes returns the space-separated class tokens.
func (e *Element) Classes() []string {
	return strings.Fields(e.ClassName())
}

// Attr returns the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// Attributes returns a copy of all attributes.
func (e *Element) Attributes() map[string]string {
	attrs := make(map[string]string, len(e.node.Attr))
	for _, a := range e.node.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

// TextContent returns the element's concatenated text content.
func (e *Element) TextContent() string {
	return htmlquery.InnerText(e.node)
}

// OuterHTML renders the element including its own tag.
func (e *Element) OuterHTML() string {
	return htmlquery.OutputHTML(e.node, true)
}

// Parent returns the closest ancestor element, or nil at the tree root.
func (e *Element) Parent() *Element {
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return e.doc.wrap(p)
		}
	}
	return nil
}

// SameNode reports whether both handles point at the same DOM node.
func (e *Element) SameNode(other *Element) bool {
	return other != nil && e.node == other.node
}

// IndexAmongSameTag returns the 1-based position of the element among
// its element siblings that share its tag.
func (e *Element) IndexAmongSameTag() int {
	index := 1
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && strings.EqualFold(s.Data, e.node.Data) {
			index++
		}
	}
	return index
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}
