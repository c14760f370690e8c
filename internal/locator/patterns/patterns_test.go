package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locateflow/locateflow/internal/domain"
)

func TestIsAutoGeneratedID(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"auto-123", true},
		{"gen42", true},
		{"temp-9", true},
		{"tmp1", true},
		{"user-123456", true}, // 6+ digit run
		{"f47ac10b-58cc-4372-a567-0e02b2c3d479", true},
		{"submit-btn", false},
		{"login", false},
		{"nav-2col", false}, // short digit run is fine
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAutoGeneratedID(tt.value), "value %q", tt.value)
	}
}

func TestIsSemanticName(t *testing.T) {
	assert.True(t, IsSemanticName("submit-btn"))
	assert.True(t, IsSemanticName("primary-nav-link"))
	assert.False(t, IsSemanticName("submitBtn"))
	assert.False(t, IsSemanticName("submit"))
	assert.False(t, IsSemanticName("submit-btn-2"))
}

func TestIsAutoGeneratedClass(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"css-1a2b3c4d", true},
		{"sc-bdVaJa12", true},
		{"jss-42abcd", true},
		{"button-x7f3kq9", true}, // hashed suffix
		{"styles_a8Xb2z", true},
		{"btn-primary", false},
		{"mt-4", false},
		{"card__header", false},
		{"col-md-6", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAutoGeneratedClass(tt.value), "value %q", tt.value)
	}
}

func TestIsUtilityClass(t *testing.T) {
	assert.True(t, IsUtilityClass("mt-4"))
	assert.True(t, IsUtilityClass("px-2"))
	assert.True(t, IsUtilityClass("w-96"))
	assert.True(t, IsUtilityClass("flex"))
	assert.True(t, IsUtilityClass("text-xl"))
	assert.False(t, IsUtilityClass("btn-primary"))
	assert.False(t, IsUtilityClass("margin-top"))
}

func TestIsBEMClass(t *testing.T) {
	assert.True(t, IsBEMClass("card__header"))
	assert.True(t, IsBEMClass("nav-bar__item--active"))
	assert.True(t, IsBEMClass("button--primary"))
	assert.False(t, IsBEMClass("btn-primary"))
	assert.False(t, IsBEMClass("css-1a2b3c4d"))
}

func TestIsPositional(t *testing.T) {
	assert.True(t, IsPositional(domain.LocatorTypeCSS, "ul > li:nth-child(3)"))
	assert.True(t, IsPositional(domain.LocatorTypeXPath, `//div/button[2]`))
	assert.False(t, IsPositional(domain.LocatorTypeCSS, "#submit-btn"))
	assert.False(t, IsPositional(domain.LocatorTypeXPath, `//button[@id="x"]`))
}

func TestDetect_ClassBuckets(t *testing.T) {
	d := Detect(domain.LocatorTypeClass, "css-1a2b3c4d")
	assert.True(t, d.AutoGenerated)
	assert.False(t, d.Semantic)

	d = Detect(domain.LocatorTypeClass, "mt-4")
	assert.True(t, d.Utility)
	assert.False(t, d.Semantic)

	d = Detect(domain.LocatorTypeClass, "card__header")
	assert.True(t, d.BEM)

	d = Detect(domain.LocatorTypeClass, "btn-primary")
	assert.True(t, d.Semantic)
	assert.False(t, d.AutoGenerated)
}

func TestIDStability(t *testing.T) {
	assert.Equal(t, 95, IDStability("submit-btn"))
	assert.Equal(t, 70, IDStability("login"))
	assert.Equal(t, 30, IDStability("auto-123456"))
	assert.Equal(t, 25, IDStability("f47ac10b-58cc-4372-a567-0e02b2c3d479"))
}

func TestClassStability(t *testing.T) {
	assert.Equal(t, 25, ClassStability("css-1a2b3c4d"))
	assert.Equal(t, 65, ClassStability("mt-4"))
	assert.Equal(t, 80, ClassStability("card__header"))
	assert.Equal(t, 85, ClassStability("btn-primary"))
}

func TestTagStability(t *testing.T) {
	assert.Equal(t, 60, TagStability("nav"))
	assert.Equal(t, 60, TagStability("form"))
	assert.Equal(t, 50, TagStability("button"))
	assert.Equal(t, 25, TagStability("div"))
	assert.Equal(t, 25, TagStability("span"))
	assert.Equal(t, 40, TagStability("canvas"))
}

func TestCSSShapeStability(t *testing.T) {
	assert.Greater(t, CSSShapeStability("#submit-btn"), 90)
	assert.Less(t, CSSShapeStability("div.css-1a2b3c4d"), 40)
	assert.Less(t, CSSShapeStability("ul > li:nth-child(2)"), 30)

	chain := CSSShapeStability("button.btn.btn-primary")
	assert.GreaterOrEqual(t, chain, 60)
	assert.LessOrEqual(t, chain, 90)
}

func TestXPathShapeStability(t *testing.T) {
	assert.Equal(t, 95, XPathShapeStability(`//button[@id="submit-btn"]`))
	assert.Equal(t, 75, XPathShapeStability(`//input[@name="email"]`))
	assert.Equal(t, 65, XPathShapeStability(`//button[contains(@class, "btn")]`))
	assert.Equal(t, 35, XPathShapeStability(`//div[contains(@class, "container")]/button[2]`))
	assert.Equal(t, 55, XPathShapeStability(`//button[text()="Submit"]`))
	assert.Equal(t, 35, XPathShapeStability(`//div/button[2]`))
	assert.Equal(t, 15, XPathShapeStability(`//button`))
}

func TestAssessStability_Dispatch(t *testing.T) {
	assert.Equal(t, 95, AssessStability(domain.LocatorTypeID, "submit-btn"))
	assert.Equal(t, 85, AssessStability(domain.LocatorTypeClass, "btn-primary"))
	assert.Equal(t, 90, AssessStability(domain.LocatorTypeName, "email-address"))
	assert.Equal(t, 50, AssessStability(domain.LocatorTypeTag, "button"))
	assert.Equal(t, 95, AssessStability(domain.LocatorTypeXPath, `//a[@id="home"]`))
	assert.Equal(t, 50, AssessStability(domain.LocatorType("bogus"), "anything"))
}

func TestAriaStability(t *testing.T) {
	assert.Equal(t, 85, AriaStability(`[aria-label="Search"]`))
	assert.Equal(t, 70, AriaStability(`[role="button"]`))
	assert.Equal(t, 70, AriaStability(`[aria-labelledby="title"]`))
	assert.Equal(t, 70, AriaStability(`[aria-describedby="hint"]`))
	assert.Equal(t, 40, AriaStability(`[aria-expanded="true"]`))
	assert.True(t, IsTransientAriaState("aria-hidden"))
	assert.False(t, IsTransientAriaState("aria-label"))
}
