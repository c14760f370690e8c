package patterns

import (
	"strings"

	"github.com/locateflow/locateflow/internal/domain"
)

// tagStability buckets tag names by how meaningfully they identify an
// element. Semantic landmarks rank highest, generic containers lowest.
var tagStability = map[string]int{
	// Landmarks
	"main": 60, "nav": 60, "header": 60, "footer": 60,
	"aside": 60, "section": 60, "article": 60, "form": 60,
	// Interactive controls
	"button": 50, "input": 50, "select": 50, "textarea": 50,
	"label": 50, "fieldset": 50,
	// Content structure
	"h1": 45, "h2": 45, "h3": 45, "h4": 45, "h5": 45, "h6": 45,
	"table": 45, "thead": 45, "tbody": 45, "tr": 45, "td": 45, "th": 45,
	"ul": 45, "ol": 45, "li": 45, "img": 45,
	// Generic containers
	"div": 25, "span": 25, "p": 25, "a": 25,
}

// IDStability scores an id value 0-100 for resilience to markup edits.
func IDStability(v string) int {
	switch {
	case IsUUID(v):
		return 25
	case IsAutoGeneratedID(v):
		return 30
	case IsSemanticName(v):
		return 95
	default:
		return 70
	}
}

// ClassStability scores a single class token 0-100.
func ClassStability(v string) int {
	switch {
	case IsAutoGeneratedClass(v):
		return 25
	case IsUtilityClass(v):
		return 65
	case IsBEMClass(v):
		return 80
	default:
		return 85
	}
}

// NameStability scores a name attribute value 0-100. Form control names
// are wired to backend contracts and shift less than presentation ids.
func NameStability(v string) int {
	switch {
	case IsAutoGeneratedID(v):
		return 30
	case IsSemanticName(v):
		return 90
	default:
		return 80
	}
}

// TagStability scores a tag name 0-100 using the fixed tag taxonomy.
func TagStability(tag string) int {
	if s, ok := tagStability[strings.ToLower(tag)]; ok {
		return s
	}
	return 40
}

// CSSShapeStability scores a full CSS selector by its shape.
func CSSShapeStability(selector string) int {
	if positionalCSSRe.MatchString(selector) {
		return 25
	}
	if strings.HasPrefix(selector, "#") {
		return 95
	}
	classes := cssClassTokens(selector)
	if len(classes) > 0 {
		worst := 100
		sum := 0
		for _, c := range classes {
			s := ClassStability(c)
			sum += s
			if s < worst {
				worst = s
			}
		}
		if worst <= 25 {
			return 30
		}
		// Semantic class chains land in the 60-90 band.
		avg := sum / len(classes)
		if avg > 90 {
			return 90
		}
		if avg < 60 {
			return 60
		}
		return avg
	}
	if strings.Contains(selector, "[") {
		return 75
	}
	return TagStability(strings.TrimSpace(selector))
}

// XPathShapeStability scores an XPath expression by its shape.
func XPathShapeStability(expr string) int {
	positional := positionalXPathRe.MatchString(expr)
	switch {
	case strings.Contains(expr, "[@id="):
		return 95
	case strings.Contains(expr, "contains(@class"):
		if positional {
			return 35
		}
		return 65
	case strings.Contains(expr, "text()="):
		return 55
	case strings.Contains(expr, "[@"):
		return 75
	case positional:
		return 35
	default:
		return 15
	}
}

// AssessStability is the canonical per-type stability estimate, 0-100.
// For value-bearing types the raw attribute value is expected; for
// css/xpath the full selector expression.
func AssessStability(t domain.LocatorType, value string) int {
	switch t {
	case domain.LocatorTypeID:
		return IDStability(value)
	case domain.LocatorTypeClass:
		return ClassStability(value)
	case domain.LocatorTypeName:
		return NameStability(value)
	case domain.LocatorTypeTag:
		return TagStability(value)
	case domain.LocatorTypeCSS:
		return CSSShapeStability(value)
	case domain.LocatorTypeXPath:
		return XPathShapeStability(value)
	case domain.LocatorTypeARIA:
		return AriaStability(value)
	default:
		return 50
	}
}

// transientAriaStates are ARIA attributes describing runtime state; a
// locator built on them breaks as soon as the widget is interacted with.
var transientAriaStates = map[string]bool{
	"aria-hidden":   true,
	"aria-expanded": true,
	"aria-pressed":  true,
}

// IsTransientAriaState reports whether attr is an inherently transient
// ARIA state attribute.
func IsTransientAriaState(attr string) bool {
	return transientAriaStates[attr]
}

// AriaStability scores an ARIA attribute selector 0-100; transient state
// attributes score low.
func AriaStability(selector string) int {
	for attr := range transientAriaStates {
		if strings.Contains(selector, attr) {
			return 40
		}
	}
	if strings.Contains(selector, "[aria-label=") {
		return 85
	}
	return 70
}

// cssClassTokens extracts the ".class" tokens from a compound selector.
func cssClassTokens(selector string) []string {
	var out []string
	for i := 0; i < len(selector); i++ {
		if selector[i] != '.' {
			continue
		}
		j := i + 1
		for j < len(selector) && isClassChar(selector[j]) {
			j++
		}
		if j > i+1 {
			out = append(out, selector[i+1:j])
		}
		i = j - 1
	}
	return out
}

func isClassChar(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
