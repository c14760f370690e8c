package aria

import (
	"strings"

	"github.com/locateflow/locateflow/internal/dom"
	"github.com/locateflow/locateflow/internal/domain"
)

// implicitRoles maps tag names to their implicit ARIA role.
var implicitRoles = map[string]string{
	"a":        "link",
	"article":  "article",
	"aside":    "complementary",
	"button":   "button",
	"footer":   "contentinfo",
	"form":     "form",
	"h1":       "heading",
	"h2":       "heading",
	"h3":       "heading",
	"h4":       "heading",
	"h5":       "heading",
	"h6":       "heading",
	"header":   "banner",
	"img":      "img",
	"li":       "listitem",
	"main":     "main",
	"nav":      "navigation",
	"ol":       "list",
	"option":   "option",
	"section":  "region",
	"select":   "combobox",
	"table":    "table",
	"textarea": "textbox",
	"ul":       "list",
}

// implicitInputRoles maps input type values to their implicit role.
var implicitInputRoles = map[string]string{
	"button":   "button",
	"checkbox": "checkbox",
	"email":    "textbox",
	"number":   "spinbutton",
	"radio":    "radio",
	"range":    "slider",
	"reset":    "button",
	"search":   "searchbox",
	"submit":   "button",
	"tel":      "textbox",
	"text":     "textbox",
	"url":      "textbox",
}

// stateAttrs are the boolean states surfaced in a snapshot. The
// required and disabled entries also match the bare HTML attributes.
var stateAttrs = []string{"required", "disabled", "expanded", "pressed", "selected", "hidden"}

// BuildSnapshot assembles the structured accessibility view of el:
// resolved role, accessible name and description, boolean states, and
// the role hierarchy of its ancestors.
func BuildSnapshot(el *dom.Element, doc *dom.Document) (*domain.AriaSnapshot, error) {
	if el == nil {
		return nil, domain.NewInvalidArgument("element")
	}
	if doc == nil {
		return nil, domain.NewInvalidArgument("document")
	}

	snap := &domain.AriaSnapshot{
		Element:               el.Tag(),
		AriaAttributes:        map[string]string{},
		AccessibleName:        accessibleName(el, doc),
		AccessibleDescription: accessibleDescription(el, doc),
		Role:                  ResolveRole(el),
		States:                map[string]bool{},
		Hierarchy:             roleHierarchy(el),
	}

	for name, value := range el.Attributes() {
		if name == "role" || strings.HasPrefix(name, "aria-") {
			snap.AriaAttributes[name] = value
		}
	}
	for _, state := range stateAttrs {
		if v, ok := el.Attr("aria-" + state); ok {
			snap.States[state] = v != "false"
		} else if el.HasAttr(state) {
			snap.States[state] = true
		}
	}
	return snap, nil
}

// ResolveRole returns the explicit role attribute when present, the
// implicit role for the tag otherwise, and "generic" as the fallback.
func ResolveRole(el *dom.Element) string {
	if role, ok := el.Attr("role"); ok && role != "" {
		return role
	}
	tag := el.Tag()
	if tag == "input" {
		t, _ := el.Attr("type")
		if t == "" {
			t = "text"
		}
		if role, ok := implicitInputRoles[strings.ToLower(t)]; ok {
			return role
		}
		return "textbox"
	}
	if role, ok := implicitRoles[tag]; ok {
		return role
	}
	return "generic"
}

// accessibleName resolves the element's name following the platform
// precedence: aria-label, aria-labelledby reference, associated label,
// own text content.
func accessibleName(el *dom.Element, doc *dom.Document) string {
	if label, ok := el.Attr("aria-label"); ok && label != "" {
		return label
	}
	if ref, ok := el.Attr("aria-labelledby"); ok && ref != "" {
		if text := referencedText(doc, ref); text != "" {
			return text
		}
	}
	if id := el.ID(); id != "" {
		for _, label := range doc.ElementsByTagName("label") {
			if forID, ok := label.Attr("for"); ok && forID == id {
				return strings.TrimSpace(label.TextContent())
			}
		}
	}
	return strings.TrimSpace(el.TextContent())
}

func accessibleDescription(el *dom.Element, doc *dom.Document) string {
	ref, ok := el.Attr("aria-describedby")
	if !ok || ref == "" {
		return ""
	}
	return referencedText(doc, ref)
}

// referencedText joins the text content of the elements an id-reference
// list points at, in reference order.
func referencedText(doc *dom.Document, refs string) string {
	var parts []string
	for _, id := range strings.Fields(refs) {
		for _, target := range doc.ElementsByID(id) {
			if text := strings.TrimSpace(target.TextContent()); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " ")
}

// roleHierarchy lists the roles of the element's ancestors from the
// outermost down, skipping generic containers.
func roleHierarchy(el *dom.Element) []string {
	var chain []string
	for p := el.Parent(); p != nil; p = p.Parent() {
		if role := ResolveRole(p); role != "generic" {
			chain = append(chain, role)
		}
	}
	// Collected innermost first; reverse to outermost first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
