package domain

// LocatorType identifies the strategy family that produced a locator.
type LocatorType string

const (
	LocatorTypeID    LocatorType = "id"
	LocatorTypeClass LocatorType = "class"
	LocatorTypeName  LocatorType = "name"
	LocatorTypeTag   LocatorType = "tag"
	LocatorTypeCSS   LocatorType = "css"
	LocatorTypeXPath LocatorType = "xpath"
	LocatorTypeARIA  LocatorType = "aria"
)

// Valid reports whether t is a member of the closed locator type set.
func (t LocatorType) Valid() bool {
	switch t {
	case LocatorTypeID, LocatorTypeClass, LocatorTypeName, LocatorTypeTag,
		LocatorTypeCSS, LocatorTypeXPath, LocatorTypeARIA:
		return true
	}
	return false
}

// Impact marks whether a score factor added or removed points.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
)

// ScoreFactor is one additive or subtractive term applied to a confidence
// score. Weight approximates the fraction of the 100-point budget the
// factor can contribute.
type ScoreFactor struct {
	Factor      string  `json:"factor"`
	Impact      Impact  `json:"impact"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// ConfidenceScore is a calibrated 0-100 reliability estimate plus the
// breakdown of how it was reached.
type ConfidenceScore struct {
	Score    int           `json:"score"`
	Factors  []ScoreFactor `json:"factors"`
	Warnings []string      `json:"warnings,omitempty"`
}

// LocatorStrategy is one candidate locator for an element. Strategies are
// immutable value objects created fresh on every inspection.
type LocatorStrategy struct {
	Type        LocatorType     `json:"type"`
	Selector    string          `json:"selector"`
	Confidence  ConfidenceScore `json:"confidence"`
	Explanation string          `json:"explanation"`
	IsUnique    bool            `json:"is_unique"`
	IsStable    bool            `json:"is_stable"`
}

// StabilityThreshold returns the per-type stability cutoff above which a
// locator value is judged stable.
func StabilityThreshold(t LocatorType) int {
	switch t {
	case LocatorTypeID, LocatorTypeName:
		return 80
	case LocatorTypeClass:
		return 70
	default:
		return 60
	}
}

// AriaSnapshot is the structured accessibility view of an element,
// consumed by the analysis/export collaborator. It is not a locator.
type AriaSnapshot struct {
	Element               string            `json:"element"`
	AriaAttributes        map[string]string `json:"aria_attributes"`
	AccessibleName        string            `json:"accessible_name"`
	AccessibleDescription string            `json:"accessible_description"`
	Role                  string            `json:"role"`
	States                map[string]bool   `json:"states"`
	Hierarchy             []string          `json:"hierarchy"`
}
