// Package attribute generates id, class, name, and tag locator
// candidates from an element's own attributes.
package attribute

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

// formAssociatedTags are the tags whose name attribute participates in
// form submission and is therefore worth locating by.
var formAssociatedTags = map[string]bool{
	"input": true, "select": true, "textarea": true,
	"button": true, "fieldset": true, "form": true,
}

// generationOrder breaks score ties in GenerateAll output, mirroring the
// type reliability hierarchy.
var generationOrder = map[domain.LocatorType]int{
	domain.LocatorTypeID:    0,
	domain.LocatorTypeName:  1,
	domain.LocatorTypeClass: 2,
	domain.LocatorTypeTag:   3,
}

// Generator produces attribute-based locator strategies.
type Generator struct {
	scorer *confidence.Scorer
	logger *zap.Logger
}

// NewGenerator creates an attribute strategy generator.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		scorer: confidence.NewScorer(logger),
		logger: logger,
	}
}

func checkArgs(el *dom.Element, doc *dom.Document) error {
	if el == nil {
		return domain.NewInvalidArgument("element")
	}
	if doc == nil {
		return domain.NewInvalidArgument("document")
	}
	return nil
}

// GenerateID returns an id locator, or nil when the element has no id.
func (g *Generator) GenerateID(el *dom.Element, doc *dom.Document) (*domain.LocatorStrategy, error) {
	if err := checkArgs(el, doc); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(el.ID())
	if id == "" {
		return nil, nil
	}

	uniq := uniquenessOf(doc.ElementsByID(id), el)
	stability := patterns.IDStability(id)
	return g.finish(domain.LocatorTypeID, "#"+id, id, stability, uniq), nil
}

// GenerateClass returns a class locator built on the element's best
// class token, or nil when the element has no classes. Tokens are
// scored individually; uniqueness beats stability in the tie-break.
func (g *Generator) GenerateClass(el *dom.Element, doc *dom.Document) (*domain.LocatorStrategy, error) {
	if err := checkArgs(el, doc); err != nil {
		return nil, err
	}
	classes := el.Classes()
	if len(classes) == 0 {
		return nil, nil
	}

	var (
		best          string
		bestUniq      confidence.UniquenessResult
		bestStability = -1
		bestUnique    bool
	)
	for _, class := range classes {
		uniq := uniquenessOf(doc.ElementsByClassName(class), el)
		stability := patterns.ClassStability(class)
		better := false
		switch {
		case uniq.Unique != bestUnique:
			better = uniq.Unique
		case stability > bestStability:
			better = true
		}
		if better {
			best = class
			bestUniq = uniq
			bestStability = stability
			bestUnique = uniq.Unique
		}
	}

	strategy := g.finish(domain.LocatorTypeClass, "."+best, best, bestStability, bestUniq)
	if patterns.IsAutoGeneratedClass(best) {
		strategy.Confidence.Warnings = append(strategy.Confidence.Warnings,
			"Class appears to be auto-generated and may change")
	}
	return strategy, nil
}

// GenerateName returns a name-attribute locator for form-associated
// elements, or nil when the tag or attribute does not qualify.
func (g *Generator) GenerateName(el *dom.Element, doc *dom.Document) (*domain.LocatorStrategy, error) {
	if err := checkArgs(el, doc); err != nil {
		return nil, err
	}
	if !formAssociatedTags[el.Tag()] {
		return nil, nil
	}
	name, ok := el.Attr("name")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return nil, nil
	}

	uniq := uniquenessOf(doc.ElementsByName(name), el)
	stability := patterns.NameStability(name)
	selector := fmt.Sprintf(`[name="%s"]`, name)
	return g.finish(domain.LocatorTypeName, selector, name, stability, uniq), nil
}

// GenerateTag returns the tag-name locator. It always produces a
// candidate; the tag is the guaranteed fallback.
func (g *Generator) GenerateTag(el *dom.Element, doc *dom.Document) (*domain.LocatorStrategy, error) {
	if err := checkArgs(el, doc); err != nil {
		return nil, err
	}
	tag := el.Tag()
	uniq := uniquenessOf(doc.ElementsByTagName(tag), el)
	stability := patterns.TagStability(tag)
	return g.finish(domain.LocatorTypeTag, tag, tag, stability, uniq), nil
}

// GenerateAll runs every sub-generator, keeps the non-nil candidates,
// and returns them sorted by descending score. Ties keep generation
// order: id, name, class, tag.
func (g *Generator) GenerateAll(el *dom.Element, doc *dom.Document) ([]domain.LocatorStrategy, error) {
	if err := checkArgs(el, doc); err != nil {
		return nil, err
	}

	type subGenerator func(*dom.Element, *dom.Document) (*domain.LocatorStrategy, error)
	var strategies []domain.LocatorStrategy
	for _, generate := range []subGenerator{g.GenerateID, g.GenerateName, g.GenerateClass, g.GenerateTag} {
		strategy, err := generate(el, doc)
		if err != nil {
			return nil, err
		}
		if strategy != nil {
			strategies = append(strategies, *strategy)
		}
	}

	sort.SliceStable(strategies, func(i, j int) bool {
		a, b := strategies[i], strategies[j]
		if a.Confidence.Score != b.Confidence.Score {
			return a.Confidence.Score > b.Confidence.Score
		}
		return generationOrder[a.Type] < generationOrder[b.Type]
	})

	g.logger.Debug("generated attribute strategies",
		zap.String("tag", el.Tag()),
		zap.Int("count", len(strategies)),
	)
	return strategies, nil
}

// finish builds the strategy with the canonical composed score and the
// generator's own stability verdict.
func (g *Generator) finish(t domain.LocatorType, selector, value string, stability int, uniq confidence.UniquenessResult) *domain.LocatorStrategy {
	strategy := &domain.LocatorStrategy{
		Type:       t,
		Selector:   selector,
		Confidence: g.scorer.Compose(t, value, uniq),
		IsUnique:   uniq.Unique,
		IsStable:   stability >= domain.StabilityThreshold(t),
	}
	strategy.Explanation = g.scorer.GenerateExplanation(strategy)
	return strategy
}

// uniquenessOf converts a direct DOM lookup into a uniqueness result.
func uniquenessOf(matches []*dom.Element, el *dom.Element) confidence.UniquenessResult {
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
