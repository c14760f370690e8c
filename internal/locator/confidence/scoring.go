// Package confidence implements the type-agnostic confidence scoring
// engine. It is the authoritative implementation of the scoring
// algorithm: generators produce first-pass scores, but whenever
// strategies from different generators must be ranked against one
// another, this engine's score is the one that counts.
package confidence

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/dom"
	"github.com/locateflow/locateflow/internal/domain"
	"github.com/locateflow/locateflow/internal/locator/patterns"
)

// Score budget: the four factor groups sum to 100 points.
const (
	uniquenessPoints  = 40
	stabilityPoints   = 35
	reliabilityPoints = 15
	patternPoints     = 10
)

// typeReliability awards fixed points by locator type, expressing the
// hierarchy id > aria > name > css > class > xpath > tag.
var typeReliability = map[domain.LocatorType]int{
	domain.LocatorTypeID:    15,
	domain.LocatorTypeARIA:  13,
	domain.LocatorTypeName:  11,
	domain.LocatorTypeCSS:   9,
	domain.LocatorTypeClass: 7,
	domain.LocatorTypeXPath: 5,
	domain.LocatorTypeTag:   3,
}

// typeRank orders the same hierarchy for comparator use; lower is better.
var typeRank = map[domain.LocatorType]int{
	domain.LocatorTypeID:    0,
	domain.LocatorTypeARIA:  1,
	domain.LocatorTypeName:  2,
	domain.LocatorTypeCSS:   3,
	domain.LocatorTypeClass: 4,
	domain.LocatorTypeXPath: 5,
	domain.LocatorTypeTag:   6,
}

// Scorer computes canonical confidence scores for locator strategies of
// any type. It is stateless and safe for concurrent use.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer creates a scorer. A nil logger is replaced with a no-op one.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// UniquenessResult is the outcome of a document uniqueness check. It is
// returned by value; uniqueness checking never communicates through
// shared state.
type UniquenessResult struct {
	Unique  bool
	Warning string
}

// Score computes the canonical confidence score for a strategy against
// the element it was generated for and the containing document.
func (s *Scorer) Score(strategy *domain.LocatorStrategy, el *dom.Element, doc *dom.Document) (domain.ConfidenceScore, error) {
	switch {
	case strategy == nil:
		return domain.ConfidenceScore{}, domain.NewInvalidArgument("strategy")
	case el == nil:
		return domain.ConfidenceScore{}, domain.NewInvalidArgument("element")
	case doc == nil:
		return domain.ConfidenceScore{}, domain.NewInvalidArgument("document")
	}

	if strings.TrimSpace(strategy.Selector) == "" {
		return domain.ConfidenceScore{
			Score:    0,
			Warnings: []string{"Empty selector provided"},
		}, nil
	}

	uniq := s.CheckUniqueness(strategy, el, doc)
	score := s.Compose(strategy.Type, stabilityValue(strategy), uniq)

	s.logger.Debug("scored strategy",
		zap.String("type", string(strategy.Type)),
		zap.String("selector", strategy.Selector),
		zap.Int("score", score.Score),
		zap.Bool("unique", uniq.Unique),
	)

	return score, nil
}

// Compose assembles the canonical 40/35/15/10 score from a locator type,
// the raw value its classifiers should see, and a precomputed uniqueness
// result. Generators that perform their own DOM lookups call this so all
// strategy types share one scoring implementation.
func (s *Scorer) Compose(t domain.LocatorType, value string, uniq UniquenessResult) domain.ConfidenceScore {
	var (
		score    int
		factors  []domain.ScoreFactor
		warnings []string
	)

	if !t.Valid() {
		warnings = append(warnings, fmt.Sprintf("Unknown locator type: %s", t))
	}

	// Uniqueness: all or nothing, 40 points.
	if uniq.Warning != "" {
		warnings = append(warnings, uniq.Warning)
	}
	if uniq.Unique {
		score += uniquenessPoints
		factors = append(factors, domain.ScoreFactor{
			Factor:      "uniqueness",
			Impact:      domain.ImpactPositive,
			Weight:      0.4,
			Description: "Selector matches exactly one element in the document",
		})
	} else {
		factors = append(factors, domain.ScoreFactor{
			Factor:      "uniqueness",
			Impact:      domain.ImpactNegative,
			Weight:      0.4,
			Description: "Selector does not uniquely identify the element",
		})
	}

	// Stability: linear scale of the 0-100 estimate into 35 points.
	stability := patterns.AssessStability(t, value)
	stabilityScore := stabilityPoints * stability / 100
	score += stabilityScore
	factors = append(factors, domain.ScoreFactor{
		Factor:      "stability",
		Impact:      stabilityImpact(stability),
		Weight:      0.35,
		Description: fmt.Sprintf("Value stability estimated at %d/100", stability),
	})

	// Type reliability: fixed hierarchy, 15 points.
	reliability := typeReliability[t]
	score += reliability
	factors = append(factors, domain.ScoreFactor{
		Factor:      "type_reliability",
		Impact:      domain.ImpactPositive,
		Weight:      0.15,
		Description: fmt.Sprintf("%s locators award %d/%d reliability points", t, reliability, reliabilityPoints),
	})

	// Pattern bonus/penalty: ±10 points.
	det := patterns.Detect(t, value)
	patternScore, patternWarnings := patternTerm(det)
	score += patternScore
	warnings = append(warnings, patternWarnings...)
	factors = append(factors, domain.ScoreFactor{
		Factor:      "patterns",
		Impact:      patternImpact(patternScore),
		Weight:      0.1,
		Description: patternDescription(det),
	})

	return domain.ConfidenceScore{
		Score:    clamp(score, 0, 100),
		Factors:  factors,
		Warnings: warnings,
	}
}

// CheckUniqueness verifies that the strategy's selector matches exactly
// the target element and nothing else. Query failures degrade to
// non-unique with a warning; they never propagate.
func (s *Scorer) CheckUniqueness(strategy *domain.LocatorStrategy, el *dom.Element, doc *dom.Document) UniquenessResult {
	var (
		matches []*dom.Element
		err     error
	)
	if strategy.Type == domain.LocatorTypeXPath {
		matches, err = doc.XPathAll(strategy.Selector)
	} else {
		matches, err = doc.QuerySelectorAll(strategy.Selector)
	}
	if err != nil {
		return UniquenessResult{
			Unique:  false,
			Warning: "Unable to validate uniqueness due to DOM query error",
		}
	}

	switch {
	case len(matches) == 0:
		return UniquenessResult{Warning: "Selector matched no elements in the document"}
	case len(matches) > 1:
		return UniquenessResult{Warning: fmt.Sprintf("Selector matches %d elements", len(matches))}
	case !matches[0].SameNode(el):
		return UniquenessResult{Warning: "Selector resolves to a different element"}
	default:
		return UniquenessResult{Unique: true}
	}
}

// AssessStability exposes the canonical per-type stability estimate.
func (s *Scorer) AssessStability(t domain.LocatorType, value string) int {
	return patterns.AssessStability(t, value)
}

// DetectPatterns exposes the canonical pattern classification.
func (s *Scorer) DetectPatterns(t domain.LocatorType, value string) patterns.Detection {
	return patterns.Detect(t, value)
}

// CompareStrategies ranks a against b: type-reliability hierarchy first,
// then uniqueness, then score. Negative means a ranks before b.
func (s *Scorer) CompareStrategies(a, b *domain.LocatorStrategy) int {
	rankA, okA := typeRank[a.Type]
	rankB, okB := typeRank[b.Type]
	if !okA {
		rankA = len(typeRank)
	}
	if !okB {
		rankB = len(typeRank)
	}
	if rankA != rankB {
		return rankA - rankB
	}
	if a.IsUnique != b.IsUnique {
		if a.IsUnique {
			return -1
		}
		return 1
	}
	return b.Confidence.Score - a.Confidence.Score
}

// stabilityValue extracts the raw value the stability classifiers should
// see: the bare attribute value for attribute-backed types, the full
// expression for css/xpath/aria.
func stabilityValue(strategy *domain.LocatorStrategy) string {
	sel := strategy.Selector
	switch strategy.Type {
	case domain.LocatorTypeID:
		return strings.TrimPrefix(sel, "#")
	case domain.LocatorTypeClass:
		return strings.TrimPrefix(sel, ".")
	case domain.LocatorTypeName:
		return attributeValue(sel)
	default:
		return sel
	}
}

// attributeValue pulls v out of a `[name="v"]` selector; falls back to
// the raw selector when the shape is unexpected.
func attributeValue(sel string) string {
	start := strings.Index(sel, `="`)
	if start < 0 {
		return sel
	}
	rest := sel[start+2:]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return sel
	}
	return rest[:end]
}

func patternTerm(det patterns.Detection) (int, []string) {
	score := 0
	var warnings []string
	if det.Semantic {
		score += 5
	}
	if det.Accessible {
		score += 5
	}
	if det.AutoGenerated {
		score -= 7
		warnings = append(warnings, "Value appears to be auto-generated and may change")
	}
	if det.Positional {
		score -= 5
		warnings = append(warnings, "Selector depends on element position within its parent")
	}
	return clamp(score, -patternPoints, patternPoints), warnings
}

func patternDescription(det patterns.Detection) string {
	var parts []string
	if det.Semantic {
		parts = append(parts, "semantic naming")
	}
	if det.Accessible {
		parts = append(parts, "accessibility-friendly attributes")
	}
	if det.AutoGenerated {
		parts = append(parts, "auto-generated value")
	}
	if det.Positional {
		parts = append(parts, "position dependence")
	}
	if len(parts) == 0 {
		return "No notable naming patterns detected"
	}
	return "Detected: " + strings.Join(parts, ", ")
}

func stabilityImpact(stability int) domain.Impact {
	if stability >= 60 {
		return domain.ImpactPositive
	}
	return domain.ImpactNegative
}

func patternImpact(score int) domain.Impact {
	if score < 0 {
		return domain.ImpactNegative
	}
	return domain.ImpactPositive
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
