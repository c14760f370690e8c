// Package css generates a single best CSS selector for an element using
// a fixed priority chain: id, discriminating attribute, class chain,
// ancestor-qualified hierarchy, bare tag.
package css

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/dom"
	"github.com/locateflow/locateflow/internal/domain"
	"github.com/locateflow/locateflow/internal/locator/confidence"
	"github.com/locateflow/locateflow/internal/locator/patterns"
)

// discriminatingAttrs are tried, in order, when the element has no id.
var discriminatingAttrs = []string{"name", "data-testid", "data-test", "type"}

// maxAncestorDepth caps how far the ancestor qualification walks up.
const maxAncestorDepth = 3

// Generator produces CSS locator strategies.
type Generator struct {
	scorer *confidence.Scorer
	logger *zap.Logger
}

// NewGenerator creates a CSS strategy generator.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		scorer: confidence.NewScorer(logger),
		logger: logger,
	}
}

// Generate returns exactly one CSS strategy; the bare tag guarantees a
// candidate exists for every element.
func (g *Generator) Generate(el *dom.Element, doc *dom.Document) (*domain.LocatorStrategy, error) {
	if el == nil {
		return nil, domain.NewInvalidArgument("element")
	}
	if doc == nil {
		return nil, domain.NewInvalidArgument("document")
	}

	selector := g.buildSelector(el, doc)
	uniq := checkUniqueness(doc, selector, el)

	stability := patterns.CSSShapeStability(selector)
	strategy := &domain.LocatorStrategy{
		Type:       domain.LocatorTypeCSS,
		Selector:   selector,
		Confidence: g.firstPassScore(selector, stability, uniq),
		IsUnique:   uniq.Unique,
		IsStable:   stability >= domain.StabilityThreshold(domain.LocatorTypeCSS),
	}
	strategy.Explanation = g.scorer.GenerateExplanation(strategy)

	g.logger.Debug("generated css strategy",
		zap.String("selector", selector),
		zap.Int("score", strategy.Confidence.Score),
	)
	return strategy, nil
}

// firstPassScore combines a uniqueness term (40), a stability-scaled
// term (45), and a selector-shape bonus (±15).
func (g *Generator) firstPassScore(selector string, stability int, uniq confidence.UniquenessResult) domain.ConfidenceScore {
	var (
		score    int
		factors  []domain.ScoreFactor
		warnings []string
	)

	if uniq.Warning != "" {
		warnings = append(warnings, uniq.Warning)
	}
	if uniq.Unique {
		score += 40
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

	score += 45 * stability / 100
	factors = append(factors, domain.ScoreFactor{
		Factor:      "stability",
		Impact:      stabilityImpact(stability),
		Weight:      0.45,
		Description: fmt.Sprintf("Selector shape stability estimated at %d/100", stability),
	})

	bonus, shape := shapeBonus(selector)
	score += bonus
	impact := domain.ImpactPositive
	if bonus < 0 {
		impact = domain.ImpactNegative
	}
	factors = append(factors, domain.ScoreFactor{
		Factor:      "selector_shape",
		Impact:      impact,
		Weight:      0.15,
		Description: shape,
	})

	if patterns.IsPositional(domain.LocatorTypeCSS, selector) {
		warnings = append(warnings, "Selector depends on element position within its parent")
	}
	if patterns.DetectAutoGeneratedClassInSelector(selector) {
		warnings = append(warnings, "Contains auto-generated class names that may change")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return domain.ConfidenceScore{Score: score, Factors: factors, Warnings: warnings}
}

// shapeBonus grades the selector family the priority chain landed on.
func shapeBonus(selector string) (int, string) {
	switch {
	case patterns.IsPositional(domain.LocatorTypeCSS, selector):
		return -15, "Positional pseudo-class selector"
	case strings.HasPrefix(selector, "#"):
		return 15, "ID-rooted selector"
	case strings.Contains(selector, "["):
		return 10, "Attribute-qualified selector"
	case strings.Contains(selector, "."):
		return 5, "Class-based selector"
	default:
		return -10, "Bare tag fallback"
	}
}

func stabilityImpact(stability int) domain.Impact {
	if stability >= 60 {
		return domain.ImpactPositive
	}
	return domain.ImpactNegative
}

// buildSelector walks the priority chain; the first rung that applies
// wins, with ancestor qualification as the uniqueness repair step.
func (g *Generator) buildSelector(el *dom.Element, doc *dom.Document) string {
	if id := strings.TrimSpace(el.ID()); id != "" {
		return "#" + id
	}

	tag := el.Tag()
	for _, attr := range discriminatingAttrs {
		if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return fmt.Sprintf(`%s[%s="%s"]`, tag, attr, v)
		}
	}

	classes := el.Classes()
	if len(classes) == 0 {
		return tag
	}
	simple := tag + "." + strings.Join(classes, ".")
	if checkUniqueness(doc, simple, el).Unique {
		return simple
	}

	// Qualify with ancestors until the selector becomes unique or the
	// walk runs out.
	qualified := simple
	parent := el.Parent()
	for depth := 0; parent != nil && depth < maxAncestorDepth; depth++ {
		qualified = parentSelector(parent) + " > " + qualified
		if checkUniqueness(doc, qualified, el).Unique {
			return qualified
		}
		parent = parent.Parent()
	}
	return qualified
}

// parentSelector derives an ancestor's selector by the same priority
// rules: id, then first class, then tag.
func parentSelector(el *dom.Element) string {
	if id := strings.TrimSpace(el.ID()); id != "" {
		return "#" + id
	}
	if classes := el.Classes(); len(classes) > 0 {
		return el.Tag() + "." + classes[0]
	}
	return el.Tag()
}

// checkUniqueness runs the selector against the live document. A query
// failure forces non-unique with a warning.
func checkUniqueness(doc *dom.Document, selector string, el *dom.Element) confidence.UniquenessResult {
	matches, err := doc.QuerySelectorAll(selector)
	if err != nil {
		return confidence.UniquenessResult{
			Warning: "Unable to validate uniqueness due to DOM query error",
		}
	}
	switch {
	case len(matches) == 0:
		return confidence.UniquenessResult{Warning: "Selector matched no elements in the document"}
	case len(matches) > 1:
		return confidence.UniquenessResult{Warning: fmt.Sprintf("Selector matches %d elements", len(matches))}
	case !matches[0].SameNode(el):
		return confidence.UniquenessResult{Warning: "Selector resolves to a different element"}
	default:
		return confidence.UniquenessResult{Unique: true}
	}
}
