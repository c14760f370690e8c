// Package aria generates ARIA-attribute locator strategies and builds
// structured accessibility snapshots of elements.
package aria

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/dom"
	"github.com/locateflow/locateflow/internal/domain"
	"github.com/locateflow/locateflow/internal/locator/confidence"
	"github.com/locateflow/locateflow/internal/locator/patterns"
)

// attrPriority orders ARIA attributes by how reliably they identify an
// element. Lower is better; attributes not listed share the last rank.
var attrPriority = map[string]int{
	"aria-label":       0,
	"role":             1,
	"aria-labelledby":  2,
	"aria-describedby": 3,
}

const otherAttrRank = 4

// Generator produces ARIA locator strategies.
type Generator struct {
	scorer *confidence.Scorer
	logger *zap.Logger
}

// NewGenerator creates an ARIA strategy generator.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		scorer: confidence.NewScorer(logger),
		logger: logger,
	}
}

// Generate returns the strategy for the highest-priority ARIA attribute
// on the element (aria-label > role > aria-labelledby > aria-describedby
// > other), or nil when the element carries no ARIA attributes.
func (g *Generator) Generate(el *dom.Element, doc *dom.Document) (*domain.LocatorStrategy, error) {
	strategies, err := g.generate(el, doc)
	if err != nil {
		return nil, err
	}
	if len(strategies) == 0 {
		return nil, nil
	}
	// generate builds in attribute-priority order
	return strategies[0], nil
}

// GenerateAll returns one strategy per ARIA attribute on the element,
// sorted descending by score with attribute priority as tie-break.
func (g *Generator) GenerateAll(el *dom.Element, doc *dom.Document) ([]*domain.LocatorStrategy, error) {
	strategies, err := g.generate(el, doc)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(strategies, func(i, j int) bool {
		if strategies[i].Confidence.Score != strategies[j].Confidence.Score {
			return strategies[i].Confidence.Score > strategies[j].Confidence.Score
		}
		return attrRank(attrName(strategies[i])) < attrRank(attrName(strategies[j]))
	})
	return strategies, nil
}

func (g *Generator) generate(el *dom.Element, doc *dom.Document) ([]*domain.LocatorStrategy, error) {
	if el == nil {
		return nil, domain.NewInvalidArgument("element")
	}
	if doc == nil {
		return nil, domain.NewInvalidArgument("document")
	}

	attrs := ariaAttributes(el)
	if len(attrs) == 0 {
		return nil, nil
	}

	strategies := make([]*domain.LocatorStrategy, 0, len(attrs))
	for _, attr := range attrs {
		value, _ := el.Attr(attr)
		strategies = append(strategies, g.build(el, doc, attr, value))
	}

	g.logger.Debug("generated aria strategies",
		zap.String("tag", el.Tag()),
		zap.Int("count", len(strategies)),
	)
	return strategies, nil
}

func (g *Generator) build(el *dom.Element, doc *dom.Document, attr, value string) *domain.LocatorStrategy {
	selector := fmt.Sprintf(`[%s=%q]`, attr, value)
	uniq := checkUniqueness(doc, selector, el)

	score := 50
	switch attr {
	case "aria-label":
		score += 35
	case "role":
		score += 10
	default:
		score += 5
	}

	var (
		factors  []domain.ScoreFactor
		warnings []string
	)
	factors = append(factors, domain.ScoreFactor{
		Factor:      "aria_attribute",
		Impact:      domain.ImpactPositive,
		Weight:      0.5,
		Description: fmt.Sprintf("Locator anchored on %s", attr),
	})

	if uniq.Unique {
		score += 15
		factors = append(factors, domain.ScoreFactor{
			Factor:      "uniqueness",
			Impact:      domain.ImpactPositive,
			Weight:      0.15,
			Description: "Attribute value is unique in the document",
		})
	} else {
		score -= 20
		factors = append(factors, domain.ScoreFactor{
			Factor:      "uniqueness",
			Impact:      domain.ImpactNegative,
			Weight:      0.2,
			Description: "Attribute value is shared by multiple elements",
		})
		if uniq.Warning != "" {
			warnings = append(warnings, uniq.Warning)
		}
	}

	if patterns.IsTransientAriaState(attr) {
		score -= 15
		factors = append(factors, domain.ScoreFactor{
			Factor:      "transient_state",
			Impact:      domain.ImpactNegative,
			Weight:      0.15,
			Description: fmt.Sprintf("%s reflects runtime widget state", attr),
		})
		warnings = append(warnings, fmt.Sprintf("Attribute %s changes at runtime and is unreliable for locating elements", attr))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	stability := patterns.AriaStability(selector)
	strategy := &domain.LocatorStrategy{
		Type:     domain.LocatorTypeARIA,
		Selector: selector,
		Confidence: domain.ConfidenceScore{
			Score:    score,
			Factors:  factors,
			Warnings: warnings,
		},
		IsUnique: uniq.Unique,
		IsStable: stability >= domain.StabilityThreshold(domain.LocatorTypeARIA),
	}
	strategy.Explanation = g.scorer.GenerateExplanation(strategy)
	return strategy
}

// ariaAttributes lists the role and aria-* attributes present on the
// element with a non-blank value, ordered by priority then name for
// determinism.
func ariaAttributes(el *dom.Element) []string {
	var out []string
	for name, value := range el.Attributes() {
		if name != "role" && !strings.HasPrefix(name, "aria-") {
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := attrRank(out[i]), attrRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

func attrRank(attr string) int {
	if r, ok := attrPriority[attr]; ok {
		return r
	}
	return otherAttrRank
}

// attrName recovers the attribute a strategy selector is anchored on.
func attrName(s *domain.LocatorStrategy) string {
	inner := strings.TrimPrefix(s.Selector, "[")
	if i := strings.Index(inner, "="); i >= 0 {
		return inner[:i]
	}
	return inner
}

func checkUniqueness(doc *dom.Document, selector string, el *dom.Element) confidence.UniquenessResult {
	matches, err := doc.QuerySelectorAll(selector)
	if err != nil {
		return confidence.UniquenessResult{Warning: "Unable to validate uniqueness due to DOM query error"}
	}
	switch {
	case len(matches) == 0:
		return confidence.UniquenessResult{Warning: "Selector matched no elements in the document"}
	case len(matches) > 1:
		return confidence.UniquenessResult{Warning: "Multiple elements found with same ARIA attributes"}
	case !matches[0].SameNode(el):
		return confidence.UniquenessResult{Warning: "Selector resolves to a different element"}
	default:
		return confidence.UniquenessResult{Unique: true}
	}
}
