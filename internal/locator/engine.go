// Package locator aggregates the strategy generators into a single
// element inspection pipeline.
package locator

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/dom"
	"github.com/locateflow/locateflow/internal/domain"
	"github.com/locateflow/locateflow/internal/locator/aria"
	"github.com/locateflow/locateflow/internal/locator/attribute"
	"github.com/locateflow/locateflow/internal/locator/confidence"
	"github.com/locateflow/locateflow/internal/locator/css"
	"github.com/locateflow/locateflow/internal/locator/xpath"
)

// maxSnapshotText caps the element text carried in a snapshot.
const maxSnapshotText = 200

// Engine runs every strategy generator against an element, re-scores
// the candidates on the shared confidence model, and ranks them.
type Engine struct {
	scorer *confidence.Scorer
	attrs  *attribute.Generator
	css    *css.Generator
	xpath  *xpath.Generator
	aria   *aria.Generator
	logger *zap.Logger
}

// NewEngine creates an inspection engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		scorer: confidence.NewScorer(logger),
		attrs:  attribute.NewGenerator(logger),
		css:    css.NewGenerator(logger),
		xpath:  xpath.NewGenerator(logger),
		aria:   aria.NewGenerator(logger),
		logger: logger,
	}
}

// Inspection is the full result for one element: its snapshot, the
// ranked locator candidates, and the accessibility view.
type Inspection struct {
	Element    domain.ElementSnapshot   `json:"element"`
	Strategies []domain.LocatorStrategy `json:"strategies"`
	Aria       *domain.AriaSnapshot     `json:"aria,omitempty"`
}

// Best returns the top-ranked strategy, or nil for an empty inspection.
func (i *Inspection) Best() *domain.LocatorStrategy {
	if i == nil || len(i.Strategies) == 0 {
		return nil
	}
	return &i.Strategies[0]
}

// Inspect generates every candidate locator for el, re-scores them on
// the canonical confidence model, and returns them ranked best first.
func (e *Engine) Inspect(el *dom.Element, doc *dom.Document) (*Inspection, error) {
	if el == nil {
		return nil, domain.NewInvalidArgument("element")
	}
	if doc == nil {
		return nil, domain.NewInvalidArgument("document")
	}

	var candidates []domain.LocatorStrategy

	attrStrategies, err := e.attrs.GenerateAll(el, doc)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, attrStrategies...)

	cssStrategy, err := e.css.Generate(el, doc)
	if err != nil {
		return nil, err
	}
	if cssStrategy != nil {
		candidates = append(candidates, *cssStrategy)
	}

	xpathStrategy, err := e.xpath.Generate(el, doc)
	if err != nil {
		return nil, err
	}
	if xpathStrategy != nil {
		candidates = append(candidates, *xpathStrategy)
	}

	ariaStrategies, err := e.aria.GenerateAll(el, doc)
	if err != nil {
		return nil, err
	}
	for _, s := range ariaStrategies {
		candidates = append(candidates, *s)
	}

	for i := range candidates {
		e.rescore(&candidates[i], el, doc)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]
		if a.Confidence.Score != b.Confidence.Score {
			return a.Confidence.Score > b.Confidence.Score
		}
		return e.scorer.CompareStrategies(a, b) < 0
	})

	snap, err := aria.BuildSnapshot(el, doc)
	if err != nil {
		return nil, err
	}

	result := &Inspection{
		Element:    elementSnapshot(el, xpathSelector(xpathStrategy)),
		Strategies: candidates,
		Aria:       snap,
	}
	e.logger.Info("inspected element",
		zap.String("tag", el.Tag()),
		zap.Int("candidates", len(candidates)),
		zap.Int("best_score", result.Best().Confidence.Score),
	)
	return result, nil
}

// rescore replaces a candidate's first-pass confidence with the shared
// model's verdict, keeping any generator warnings the model does not
// produce itself.
func (e *Engine) rescore(s *domain.LocatorStrategy, el *dom.Element, doc *dom.Document) {
	rescored, err := e.scorer.Score(s, el, doc)
	if err != nil {
		return
	}
	for _, w := range s.Confidence.Warnings {
		if !containsWarning(rescored.Warnings, w) {
			rescored.Warnings = append(rescored.Warnings, w)
		}
	}
	s.Confidence = rescored
	s.Explanation = e.scorer.GenerateExplanation(s)
}

func containsWarning(warnings []string, w string) bool {
	for _, existing := range warnings {
		if existing == w {
			return true
		}
	}
	return false
}

func elementSnapshot(el *dom.Element, xpathSel string) domain.ElementSnapshot {
	text := strings.TrimSpace(el.TextContent())
	if runes := []rune(text); len(runes) > maxSnapshotText {
		text = string(runes[:maxSnapshotText])
	}
	return domain.ElementSnapshot{
		Tag:        el.Tag(),
		Text:       text,
		Attributes: el.Attributes(),
		XPath:      xpathSel,
	}
}

func xpathSelector(s *domain.LocatorStrategy) string {
	if s == nil {
		return ""
	}
	return s.Selector
}
