package domain

import (
	"testing"
)

func TestLocatorType_Valid(t *testing.T) {
	valid := []LocatorType{
		LocatorTypeID, LocatorTypeClass, LocatorTypeName, LocatorTypeTag,
		LocatorTypeCSS, LocatorTypeXPath, LocatorTypeARIA,
	}
	for _, lt := range valid {
		if !lt.Valid() {
			t.Errorf("Valid() = false for %q, want true", lt)
		}
	}

	if LocatorType("data-testid").Valid() {
		t.Error("Valid() = true for unknown type, want false")
	}
	if LocatorType("").Valid() {
		t.Error("Valid() = true for empty type, want false")
	}
}

func TestStabilityThreshold(t *testing.T) {
	tests := []struct {
		locatorType LocatorType
		want        int
	}{
		{LocatorTypeID, 80},
		{LocatorTypeName, 80},
		{LocatorTypeClass, 70},
		{LocatorTypeTag, 60},
		{LocatorTypeXPath, 60},
		{LocatorTypeCSS, 60},
		{LocatorTypeARIA, 60},
	}

	for _, tt := range tests {
		if got := StabilityThreshold(tt.locatorType); got != tt.want {
			t.Errorf("StabilityThreshold(%q) = %d, want %d", tt.locatorType, got, tt.want)
		}
	}
}

func TestNewInspectionRecord(t *testing.T) {
	strategies := []LocatorStrategy{
		{
			Type:       LocatorTypeID,
			Selector:   "#submit-btn",
			Confidence: ConfidenceScore{Score: 95},
			IsUnique:   true,
			IsStable:   true,
		},
		{
			Type:       LocatorTypeTag,
			Selector:   "button",
			Confidence: ConfidenceScore{Score: 30},
		},
	}

	rec := NewInspectionRecord(
		"https://example.com/checkout",
		ElementSnapshot{Tag: "button", Text: "Submit"},
		strategies,
		nil,
	)

	if rec.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("ID should not be nil")
	}
	if rec.BestSelector != "#submit-btn" {
		t.Errorf("BestSelector = %q, want %q", rec.BestSelector, "#submit-btn")
	}
	if rec.BestType != LocatorTypeID {
		t.Errorf("BestType = %q, want %q", rec.BestType, LocatorTypeID)
	}
	if rec.BestScore != 95 {
		t.Errorf("BestScore = %d, want 95", rec.BestScore)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
}

func TestNewInspectionRecord_NoStrategies(t *testing.T) {
	rec := NewInspectionRecord("", ElementSnapshot{Tag: "div"}, nil, nil)

	if rec.BestSelector != "" {
		t.Errorf("BestSelector = %q, want empty", rec.BestSelector)
	}
	if rec.BestScore != 0 {
		t.Errorf("BestScore = %d, want 0", rec.BestScore)
	}
}
