// Package xpath generates a single best XPath expression for an element
// using a fixed fallback chain: id predicate, discriminating attribute,
// class containment, exact text, sibling position, bare tag.
package xpath

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
var discriminatingAttrs = []string{"name", "type", "data-testid", "data-test", "role"}

// maxTextLength caps the text predicate; longer text churns too often
// to anchor a locator on.
const maxTextLength = 50

// Generator produces XPath locator strategies.
type Generator struct {
	scorer *confidence.Scorer
	logger *zap.Logger
}

// NewGenerator creates an XPath strategy generator.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		scorer: confidence.NewScorer(logger),
		logger: logger,
	}
}

// Generate returns exactly one XPath strategy; the bare tag expression
// guarantees a candidate exists for every element.
func (g *Generator) Generate(el *dom.Element, doc *dom.Document) (*domain.LocatorStrategy, error) {
	if el == nil {
		return nil, domain.NewInvalidArgument("element")
	}
	if doc == nil {
		return nil, domain.NewInvalidArgument("document")
	}

	expr := g.buildExpression(el, doc)
	uniq := checkUniqueness(doc, expr, el)

	stability := patterns.XPathShapeStability(expr)
	strategy := &domain.LocatorStrategy{
		Type:       domain.LocatorTypeXPath,
		Selector:   expr,
		Confidence: g.firstPassScore(expr, stability, uniq),
		IsUnique:   uniq.Unique,
		IsStable:   stability >= domain.StabilityThreshold(domain.LocatorTypeXPath),
	}
	strategy.Explanation = g.scorer.GenerateExplanation(strategy)

	g.logger.Debug("generated xpath strategy",
		zap.String("selector", expr),
		zap.Int("score", strategy.Confidence.Score),
	)
	return strategy, nil
}

// buildExpression walks the fallback chain and returns the first
// expression that uniquely resolves to the element, or the last form
// tried when nothing does.
func (g *Generator) buildExpression(el *dom.Element, doc *dom.Document) string {
	tag := el.Tag()

	if id := el.ID(); id != "" {
		expr := fmt.Sprintf(`//%s[@id=%s]`, tag, xpathLiteral(id))
		if isUniqueMatch(doc, expr, el) {
			return expr
		}
	}

	for _, attr := range discriminatingAttrs {
		v, ok := el.Attr(attr)
		if !ok || v == "" {
			continue
		}
		expr := fmt.Sprintf(`//%s[@%s=%s]`, tag, attr, xpathLiteral(v))
		if isUniqueMatch(doc, expr, el) {
			return expr
		}
	}

	if classes := el.Classes(); len(classes) > 0 {
		preds := make([]string, 0, len(classes))
		for _, c := range classes {
			preds = append(preds, fmt.Sprintf("contains(@class, %s)", xpathLiteral(c)))
		}
		expr := fmt.Sprintf("//%s[%s]", tag, strings.Join(preds, " and "))
		if isUniqueMatch(doc, expr, el) {
			return expr
		}
	}

	if text := strings.TrimSpace(el.TextContent()); text != "" && len(text) <= maxTextLength && !strings.Contains(text, "\n") {
		expr := fmt.Sprintf(`//%s[text()=%s]`, tag, xpathLiteral(text))
		if isUniqueMatch(doc, expr, el) {
			return expr
		}
	}

	if parent := el.Parent(); parent != nil {
		expr := fmt.Sprintf("//%s/%s[%d]", parentExpression(parent), tag, el.IndexAmongSameTag())
		if isUniqueMatch(doc, expr, el) {
			return expr
		}
	}

	return "//" + tag
}

// parentExpression picks the strongest anchor available on the parent:
// id predicate, first class containment, bare tag.
func parentExpression(parent *dom.Element) string {
	if id := parent.ID(); id != "" {
		return fmt.Sprintf(`%s[@id=%s]`, parent.Tag(), xpathLiteral(id))
	}
	if classes := parent.Classes(); len(classes) > 0 {
		return fmt.Sprintf("%s[contains(@class, %s)]", parent.Tag(), xpathLiteral(classes[0]))
	}
	return parent.Tag()
}

// firstPassScore combines a uniqueness term (40), a stability-scaled
// term (40), and an expression-shape bonus.
func (g *Generator) firstPassScore(expr string, stability int, uniq confidence.UniquenessResult) domain.ConfidenceScore {
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
			Description: "Expression matches exactly one element in the document",
		})
	} else {
		factors = append(factors, domain.ScoreFactor{
			Factor:      "uniqueness",
			Impact:      domain.ImpactNegative,
			Weight:      0.4,
			Description: "Expression does not uniquely identify the element",
		})
	}

	score += 40 * stability / 100
	impact := domain.ImpactPositive
	if stability < 60 {
		impact = domain.ImpactNegative
	}
	factors = append(factors, domain.ScoreFactor{
		Factor:      "stability",
		Impact:      impact,
		Weight:      0.4,
		Description: fmt.Sprintf("Expression shape stability estimated at %d/100", stability),
	})

	bonus, shape := shapeBonus(expr)
	impact = domain.ImpactPositive
	if bonus < 0 {
		impact = domain.ImpactNegative
	}
	score += bonus
	factors = append(factors, domain.ScoreFactor{
		Factor:      "expression_shape",
		Impact:      impact,
		Weight:      0.2,
		Description: shape,
	})

	if patterns.IsPositional(domain.LocatorTypeXPath, expr) {
		warnings = append(warnings, "Selector depends on element position within its parent")
	}
	if strings.HasPrefix(expr, "/html") {
		warnings = append(warnings, "Absolute XPath breaks on any structural change to the page")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return domain.ConfidenceScore{Score: score, Factors: factors, Warnings: warnings}
}

// shapeBonus grades the expression family the fallback chain landed on.
func shapeBonus(expr string) (int, string) {
	switch {
	case strings.Contains(expr, "[@id="):
		return 20, "ID-anchored expression"
	case patterns.IsPositional(domain.LocatorTypeXPath, expr):
		return -20, "Position-indexed expression"
	case strings.Contains(expr, "contains(@class"):
		return 10, "Class-containment expression"
	case strings.Contains(expr, "text()="):
		return 5, "Text-match expression"
	case strings.Contains(expr, "[@"):
		return 15, "Attribute-anchored expression"
	default:
		return -21, "Bare tag fallback"
	}
}

// xpathLiteral quotes v as an XPath string literal. Values containing
// both quote kinds fall back to a concat() expression.
func xpathLiteral(v string) string {
	switch {
	case !strings.Contains(v, `"`):
		return `"` + v + `"`
	case !strings.Contains(v, "'"):
		return "'" + v + "'"
	default:
		parts := strings.Split(v, `"`)
		quoted := make([]string, 0, len(parts)*2)
		for i, p := range parts {
			if i > 0 {
				quoted = append(quoted, `'"'`)
			}
			if p != "" {
				quoted = append(quoted, `"`+p+`"`)
			}
		}
		return "concat(" + strings.Join(quoted, ", ") + ")"
	}
}

func isUniqueMatch(doc *dom.Document, expr string, el *dom.Element) bool {
	matches, err := doc.XPathAll(expr)
	if err != nil {
		return false
	}
	return len(matches) == 1 && matches[0].SameNode(el)
}

func checkUniqueness(doc *dom.Document, expr string, el *dom.Element) confidence.UniquenessResult {
	matches, err := doc.XPathAll(expr)
	if err != nil {
		return confidence.UniquenessResult{Warning: "Unable to validate uniqueness due to DOM query error"}
	}
	switch {
	case len(matches) == 0:
		return confidence.UniquenessResult{Warning: fmt.Sprintf("Expression %q matched no elements", expr)}
	case len(matches) > 1:
		return confidence.UniquenessResult{Warning: fmt.Sprintf("Expression matches %d elements", len(matches))}
	case !matches[0].SameNode(el):
		return confidence.UniquenessResult{Warning: "Expression resolves to a different element"}
	default:
		return confidence.UniquenessResult{Unique: true}
	}
}
