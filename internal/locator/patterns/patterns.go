// Package patterns holds the shared regex classification tables and
// per-type stability scorers used by every strategy generator and by the
// confidence scoring engine. Pattern literals live here and only here;
// generators must not duplicate them.
package patterns

import (
	"regexp"
	"strings"

	"github.com/locateflow/locateflow/internal/domain"
)

var (
	// Auto-generated identifier shapes: tool-emitted prefixes, long
	// numeric runs, UUIDs.
	autoIDPrefixRe = regexp.MustCompile(`^(?:auto|gen|temp|tmp)-?\d+`)
	longDigitRunRe = regexp.MustCompile(`\d{6,}`)
	uuidRe         = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

	// Semantic names: dash-separated lowercase words ("submit-btn").
	semanticNameRe = regexp.MustCompile(`^[a-z]+(?:-[a-z]+)+$`)
	lowercaseWord  = regexp.MustCompile(`^[a-z]+$`)

	// CSS-in-JS and hashed class shapes ("css-1a2b3c4d", "sc-bdVaJa").
	cssInJSRe = regexp.MustCompile(`^(?:css|sc|jss|emotion|chakra|makeStyles)-[A-Za-z0-9]+$`)

	// Utility classes from spacing/sizing/layout systems ("mt-4", "w-96").
	utilityClassRe = regexp.MustCompile(`^(?:[mp][tbrlxy]?-\d+(?:\.\d+)?|[wh]-\d+|gap-\d+|text-(?:xs|sm|base|lg|xl|\dxl)|flex|grid|block|inline|hidden|rounded(?:-[a-z0-9]+)?|shadow(?:-[a-z0-9]+)?)$`)

	// BEM: block__element or block--modifier shapes.
	bemClassRe = regexp.MustCompile(`^[a-z][a-z0-9]*(?:-[a-z0-9]+)*(?:__[a-z0-9]+(?:-[a-z0-9]+)*|--[a-z0-9]+(?:-[a-z0-9]+)*)+$`)

	// Positional selector shapes: :nth-child(2), button[3].
	positionalCSSRe   = regexp.MustCompile(`:nth-(?:child|of-type|last-child|last-of-type)\(`)
	positionalXPathRe = regexp.MustCompile(`\[\d+\]`)
)

// IsUUID reports whether v contains a UUID-shaped token.
func IsUUID(v string) bool {
	return uuidRe.MatchString(v)
}

// IsAutoGeneratedID reports whether an id value looks tool-generated.
func IsAutoGeneratedID(v string) bool {
	return autoIDPrefixRe.MatchString(v) || longDigitRunRe.MatchString(v) || IsUUID(v)
}

// IsSemanticName reports whether v is a dash-separated lowercase word
// sequence, the shape of a deliberately named identifier.
func IsSemanticName(v string) bool {
	return semanticNameRe.MatchString(v)
}

// IsAutoGeneratedClass reports whether a single class token looks
// generated by a styling tool rather than written by hand.
func IsAutoGeneratedClass(v string) bool {
	if cssInJSRe.MatchString(v) || IsUUID(v) || longDigitRunRe.MatchString(v) {
		return true
	}
	return hasHashedSegment(v)
}

// hasHashedSegment detects trailing hash segments from CSS modules and
// build pipelines ("button-x7f3kq9", "styles_header_a8Xb2"). The last
// dash/underscore segment must mix letters and digits and be long enough
// not to be a grid size suffix.
func hasHashedSegment(v string) bool {
	idx := strings.LastIndexAny(v, "-_")
	if idx < 0 || idx == len(v)-1 {
		return false
	}
	seg := v[idx+1:]
	if len(seg) < 5 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range seg {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}

// IsUtilityClass reports whether v is a spacing/sizing/layout utility
// class token.
func IsUtilityClass(v string) bool {
	return utilityClassRe.MatchString(v)
}

// IsBEMClass reports whether v follows BEM block__element--modifier
// naming.
func IsBEMClass(v string) bool {
	return bemClassRe.MatchString(v)
}

// IsPositional reports whether a selector expression depends on element
// position within its parent.
func IsPositional(t domain.LocatorType, selector string) bool {
	switch t {
	case domain.LocatorTypeXPath:
		return positionalXPathRe.MatchString(selector)
	default:
		return positionalCSSRe.MatchString(selector)
	}
}

// IsAccessibilityFriendly reports whether a selector leans on
// accessibility or test-dedicated attributes.
func IsAccessibilityFriendly(selector string) bool {
	return strings.Contains(selector, "aria-") ||
		strings.Contains(selector, "role=") ||
		strings.Contains(selector, "@role") ||
		strings.Contains(selector, "data-testid") ||
		strings.Contains(selector, "data-test")
}

// Detection summarizes which classifier patterns matched a locator
// value. It backs the pattern bonus/penalty term of the scoring engine.
type Detection struct {
	AutoGenerated bool
	Semantic      bool
	Utility       bool
	BEM           bool
	UUID          bool
	Positional    bool
	Accessible    bool
}

// Detect runs the classifier table appropriate for the locator type
// against its value or selector expression.
func Detect(t domain.LocatorType, value string) Detection {
	d := Detection{
		UUID:       IsUUID(value),
		Positional: IsPositional(t, value),
		Accessible: IsAccessibilityFriendly(value),
	}

	switch t {
	case domain.LocatorTypeID, domain.LocatorTypeName:
		d.AutoGenerated = IsAutoGeneratedID(value)
		d.Semantic = IsSemanticName(value)
	case domain.LocatorTypeClass:
		d.AutoGenerated = IsAutoGeneratedClass(value)
		d.Utility = IsUtilityClass(value)
		d.BEM = IsBEMClass(value)
		d.Semantic = !d.AutoGenerated && !d.Utility &&
			(IsSemanticName(value) || lowercaseWord.MatchString(value))
	case domain.LocatorTypeARIA:
		d.Semantic = true
		d.Accessible = true
	case domain.LocatorTypeCSS, domain.LocatorTypeXPath:
		d.AutoGenerated = containsAutoGeneratedToken(value)
		d.Semantic = !d.AutoGenerated && !d.Positional
	}
	return d
}

// DetectAutoGeneratedClassInSelector reports whether any class token in
// a compound CSS selector looks auto-generated.
func DetectAutoGeneratedClassInSelector(selector string) bool {
	for _, tok := range cssClassTokens(selector) {
		if IsAutoGeneratedClass(tok) {
			return true
		}
	}
	return false
}

// containsAutoGeneratedToken scans class tokens embedded in a composite
// selector expression for auto-generated shapes.
func containsAutoGeneratedToken(selector string) bool {
	for _, tok := range splitSelectorTokens(selector) {
		if IsAutoGeneratedClass(tok) || IsAutoGeneratedID(tok) {
			return true
		}
	}
	return false
}

func splitSelectorTokens(selector string) []string {
	return strings.FieldsFunc(selector, func(r rune) bool {
		switch r {
		case '#', '.', '[', ']', '"', '\'', '=', '(', ')', ',', ' ', '>', '/', '@':
			return true
		}
		return false
	})
}
