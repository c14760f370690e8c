package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/dom"
	"github.com/locateflow/locateflow/internal/domain"
)

const cssFixture = `<!DOCTYPE html>
<html><body>
  <button id="submit-btn">Submit</button>
  <input name="search" type="text">
  <div class="sidebar">
    <a class="nav-link">About</a>
  </div>
  <div class="footer">
    <a class="nav-link">Contact</a>
  </div>
  <div class="css-1a2b3c4d">styled</div>
  <p>plain</p>
</body></html>`

func setup(t *testing.T) (*Generator, *dom.Document) {
	t.Helper()
	doc, err := dom.ParseString(cssFixture)
	require.NoError(t, err)
	return NewGenerator(zap.NewNop()), doc
}

func first(t *testing.T, doc *dom.Document, selector string) *dom.Element {
	t.Helper()
	matches, err := doc.QuerySelectorAll(selector)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	return matches[0]
}

func TestGenerate_IDWins(t *testing.T) {
	g, doc := setup(t)
	btn := first(t, doc, "#submit-btn")

	strategy, err := g.Generate(btn, doc)
	require.NoError(t, err)
	require.NotNil(t, strategy)

	assert.Equal(t, domain.LocatorTypeCSS, strategy.Type)
	assert.Equal(t, "#submit-btn", strategy.Selector)
	assert.True(t, strategy.IsUnique)
	assert.True(t, strategy.IsStable)
	assert.Greater(t, strategy.Confidence.Score, 90)
}

func TestGenerate_AttributeFallback(t *testing.T) {
	g, doc := setup(t)
	input := first(t, doc, `input[name="search"]`)

	strategy, err := g.Generate(input, doc)
	require.NoError(t, err)

	assert.Equal(t, `input[name="search"]`, strategy.Selector)
	assert.True(t, strategy.IsUnique)
}

func TestGenerate_AncestorQualification(t *testing.T) {
	g, doc := setup(t)
	about := first(t, doc, ".sidebar a")

	strategy, err := g.Generate(about, doc)
	require.NoError(t, err)

	// a.nav-link matches two elements, so the parent qualifies it.
	assert.Equal(t, "div.sidebar > a.nav-link", strategy.Selector)
	assert.True(t, strategy.IsUnique)
}

func TestGenerate_AutoGeneratedClassWarning(t *testing.T) {
	g, doc := setup(t)
	styled := first(t, doc, ".css-1a2b3c4d")

	strategy, err := g.Generate(styled, doc)
	require.NoError(t, err)

	assert.False(t, strategy.IsStable)
	assert.Contains(t, strategy.Confidence.Warnings, "Contains auto-generated class names that may change")
}

func TestGenerate_TagFallback(t *testing.T) {
	g, doc := setup(t)
	p := first(t, doc, "p")

	strategy, err := g.Generate(p, doc)
	require.NoError(t, err)

	assert.Equal(t, "p", strategy.Selector)
	assert.True(t, strategy.IsUnique, "single paragraph in fixture")
}

func TestGenerate_AlwaysReturnsCandidate(t *testing.T) {
	g, doc := setup(t)

	for _, selector := range []string{"#submit-btn", "p", ".nav-link", ".css-1a2b3c4d"} {
		el := first(t, doc, selector)
		strategy, err := g.Generate(el, doc)
		require.NoError(t, err)
		require.NotNil(t, strategy, "selector %s", selector)
		assert.NotEmpty(t, strategy.Selector)
		assert.GreaterOrEqual(t, strategy.Confidence.Score, 0)
		assert.LessOrEqual(t, strategy.Confidence.Score, 100)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	g, doc := setup(t)
	about := first(t, doc, ".sidebar a")

	firstRun, err := g.Generate(about, doc)
	require.NoError(t, err)
	secondRun, err := g.Generate(about, doc)
	require.NoError(t, err)
	assert.Equal(t, firstRun, secondRun)
}

func TestGenerate_NilArguments(t *testing.T) {
	g, doc := setup(t)
	btn := first(t, doc, "#submit-btn")

	_, err := g.Generate(nil, doc)
	assert.ErrorIs(t, err, &domain.AppError{Code: domain.ErrCodeInvalidArgument})

	_, err = g.Generate(btn, nil)
	assert.ErrorIs(t, err, &domain.AppError{Code: domain.ErrCodeInvalidArgument})
}
