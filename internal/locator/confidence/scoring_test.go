package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/dom"
	"github.com/locateflow/locateflow/internal/domain"
)

const scoringFixture = `<!DOCTYPE html>
<html><body>
  <form id="checkout-form">
    <input id="email-input" name="email" type="email" class="form-field">
    <button id="submit-btn" class="btn btn-primary" type="submit">Submit</button>
    <button class="btn" type="button">Cancel</button>
  </form>
  <div id="auto-123456" class="css-1a2b3c4d">generated</div>
</body></html>`

func fixture(t *testing.T) (*Scorer, *dom.Document) {
	t.Helper()
	doc, err := dom.ParseString(scoringFixture)
	require.NoError(t, err)
	return NewScorer(zap.NewNop()), doc
}

func element(t *testing.T, doc *dom.Document, id string) *dom.Element {
	t.Helper()
	matches := doc.ElementsByID(id)
	require.Len(t, matches, 1)
	return matches[0]
}

func TestScore_NilArguments(t *testing.T) {
	scorer, doc := fixture(t)
	el := element(t, doc, "submit-btn")
	strategy := &domain.LocatorStrategy{Type: domain.LocatorTypeID, Selector: "#submit-btn"}

	_, err := scorer.Score(nil, el, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, &domain.AppError{Code: domain.ErrCodeInvalidArgument})

	_, err = scorer.Score(strategy, nil, doc)
	require.Error(t, err)

	_, err = scorer.Score(strategy, el, nil)
	require.Error(t, err)
}

func TestScore_EmptySelector(t *testing.T) {
	scorer, doc := fixture(t)
	el := element(t, doc, "submit-btn")

	score, err := scorer.Score(&domain.LocatorStrategy{Type: domain.LocatorTypeCSS, Selector: "   "}, el, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, score.Score)
	assert.Contains(t, score.Warnings, "Empty selector provided")
}

func TestScore_UnknownType(t *testing.T) {
	scorer, doc := fixture(t)
	el := element(t, doc, "submit-btn")

	score, err := scorer.Score(&domain.LocatorStrategy{Type: "testid", Selector: "#submit-btn"}, el, doc)
	require.NoError(t, err, "unknown type must degrade, not fail")
	assert.Contains(t, score.Warnings, "Unknown locator type: testid")
	assert.GreaterOrEqual(t, score.Score, 0)
	assert.LessOrEqual(t, score.Score, 100)
}

func TestScore_UniqueSemanticID(t *testing.T) {
	scorer, doc := fixture(t)
	el := element(t, doc, "submit-btn")

	score, err := scorer.Score(&domain.LocatorStrategy{Type: domain.LocatorTypeID, Selector: "#submit-btn"}, el, doc)
	require.NoError(t, err)
	assert.Greater(t, score.Score, 85)
	assert.Empty(t, score.Warnings)

	// Every factor group must be represented.
	names := make([]string, 0, len(score.Factors))
	for _, f := range score.Factors {
		names = append(names, f.Factor)
	}
	assert.ElementsMatch(t, []string{"uniqueness", "stability", "type_reliability", "patterns"}, names)
}

func TestScore_AutoGeneratedID(t *testing.T) {
	scorer, doc := fixture(t)
	el := element(t, doc, "auto-123456")

	score, err := scorer.Score(&domain.LocatorStrategy{Type: domain.LocatorTypeID, Selector: "#auto-123456"}, el, doc)
	require.NoError(t, err)
	assert.Less(t, score.Score, 90)
	assert.Contains(t, score.Warnings, "Value appears to be auto-generated and may change")
}

func TestScore_NonUniqueClass(t *testing.T) {
	scorer, doc := fixture(t)
	el := element(t, doc, "submit-btn")

	score, err := scorer.Score(&domain.LocatorStrategy{Type: domain.LocatorTypeClass, Selector: ".btn"}, el, doc)
	require.NoError(t, err)
	assert.Less(t, score.Score, 60)
	assert.Contains(t, score.Warnings, "Selector matches 2 elements")
}

func TestScore_QueryError(t *testing.T) {
	scorer, doc := fixture(t)
	el := element(t, doc, "submit-btn")

	score, err := scorer.Score(&domain.LocatorStrategy{Type: domain.LocatorTypeCSS, Selector: "div[["}, el, doc)
	require.NoError(t, err, "environmental failures must not propagate")
	assert.Contains(t, score.Warnings, "Unable to validate uniqueness due to DOM query error")
}

func TestScore_Idempotent(t *testing.T) {
	scorer, doc := fixture(t)
	el := element(t, doc, "email-input")
	strategy := &domain.LocatorStrategy{Type: domain.LocatorTypeName, Selector: `[name="email"]`}

	first, err := scorer.Score(strategy, el, doc)
	require.NoError(t, err)
	second, err := scorer.Score(strategy, el, doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScore_RangeInvariant(t *testing.T) {
	scorer, doc := fixture(t)
	el := element(t, doc, "submit-btn")

	strategies := []*domain.LocatorStrategy{
		{Type: domain.LocatorTypeID, Selector: "#submit-btn"},
		{Type: domain.LocatorTypeClass, Selector: ".css-1a2b3c4d"},
		{Type: domain.LocatorTypeTag, Selector: "button"},
		{Type: domain.LocatorTypeXPath, Selector: `//div/button[2]`},
		{Type: domain.LocatorTypeCSS, Selector: "ul > li:nth-child(9)"},
	}
	for _, st := range strategies {
		score, err := scorer.Score(st, el, doc)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score.Score, 0, "selector %s", st.Selector)
		assert.LessOrEqual(t, score.Score, 100, "selector %s", st.Selector)
	}
}

func TestCheckUniqueness_DifferentElement(t *testing.T) {
	scorer, doc := fixture(t)
	cancel := element(t, doc, "email-input")

	res := scorer.CheckUniqueness(&domain.LocatorStrategy{Type: domain.LocatorTypeID, Selector: "#submit-btn"}, cancel, doc)
	assert.False(t, res.Unique)
	assert.Equal(t, "Selector resolves to a different element", res.Warning)
}

func TestCompareStrategies_TypeHierarchyFirst(t *testing.T) {
	scorer, _ := fixture(t)

	idStrategy := &domain.LocatorStrategy{
		Type: domain.LocatorTypeID, IsUnique: true,
		Confidence: domain.ConfidenceScore{Score: 78},
	}
	classStrategy := &domain.LocatorStrategy{
		Type: domain.LocatorTypeClass, IsUnique: true,
		Confidence: domain.ConfidenceScore{Score: 81},
	}

	assert.Negative(t, scorer.CompareStrategies(idStrategy, classStrategy),
		"id must rank before class regardless of raw score")
	assert.Positive(t, scorer.CompareStrategies(classStrategy, idStrategy))
}

func TestCompareStrategies_UniquenessThenScore(t *testing.T) {
	scorer, _ := fixture(t)

	unique := &domain.LocatorStrategy{Type: domain.LocatorTypeCSS, IsUnique: true, Confidence: domain.ConfidenceScore{Score: 60}}
	ambiguous := &domain.LocatorStrategy{Type: domain.LocatorTypeCSS, IsUnique: false, Confidence: domain.ConfidenceScore{Score: 90}}
	assert.Negative(t, scorer.CompareStrategies(unique, ambiguous))

	strong := &domain.LocatorStrategy{Type: domain.LocatorTypeCSS, IsUnique: true, Confidence: domain.ConfidenceScore{Score: 90}}
	assert.Positive(t, scorer.CompareStrategies(unique, strong))
	assert.Zero(t, scorer.CompareStrategies(strong, strong))
}

func TestGenerateExplanation(t *testing.T) {
	scorer, _ := fixture(t)

	high := &domain.LocatorStrategy{
		Type:     domain.LocatorTypeID,
		IsUnique: true,
		IsStable: true,
		Confidence: domain.ConfidenceScore{
			Score: 93,
		},
	}
	text := scorer.GenerateExplanation(high)
	assert.Contains(t, text, "High reliability")
	assert.Contains(t, text, "Uniquely identifies")
	assert.Contains(t, text, "survive routine markup changes")

	low := &domain.LocatorStrategy{
		Type: domain.LocatorTypeXPath,
		Confidence: domain.ConfidenceScore{
			Score:    32,
			Warnings: []string{"Selector depends on element position within its parent"},
		},
	}
	text = scorer.GenerateExplanation(low)
	assert.Contains(t, text, "Low reliability")
	assert.Contains(t, text, "position within its parent")

	aria := &domain.LocatorStrategy{
		Type:       domain.LocatorTypeARIA,
		IsUnique:   true,
		Confidence: domain.ConfidenceScore{Score: 75},
	}
	assert.Contains(t, scorer.GenerateExplanation(aria), "accessibility attributes")

	assert.Empty(t, scorer.GenerateExplanation(nil))
}
