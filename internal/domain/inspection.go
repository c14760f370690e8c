package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BoundingBox is the element's viewport rectangle at capture time.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementSnapshot captures the inspected element as it looked when the
// locators were generated.
type ElementSnapshot struct {
	Tag         string            `json:"tag"`
	Text        string            `json:"text,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	BoundingBox *BoundingBox      `json:"bounding_box,omitempty"`
	XPath       string            `json:"xpath,omitempty"`
}

// InspectionRecord is one history entry: the element snapshot plus every
// locator candidate that was generated for it, ranked best first.
type InspectionRecord struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	PageURL      string            `json:"page_url,omitempty" db:"page_url"`
	Element      ElementSnapshot   `json:"element" db:"element"`
	Strategies   []LocatorStrategy `json:"strategies" db:"strategies"`
	BestSelector string            `json:"best_selector" db:"best_selector"`
	BestType     LocatorType       `json:"best_type" db:"best_type"`
	BestScore    int               `json:"best_score" db:"best_score"`
	AriaSnapshot *AriaSnapshot     `json:"aria_snapshot,omitempty" db:"aria_snapshot"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// NewInspectionRecord builds a history record from ranked strategies.
// Strategies must already be sorted best first.
func NewInspectionRecord(pageURL string, element ElementSnapshot, strategies []LocatorStrategy, aria *AriaSnapshot) *InspectionRecord {
	rec := &InspectionRecord{
		ID:           uuid.New(),
		PageURL:      pageURL,
		Element:      element,
		Strategies:   strategies,
		AriaSnapshot: aria,
		CreatedAt:    time.Now().UTC(),
	}
	if len(strategies) > 0 {
		rec.BestSelector = strategies[0].Selector
		rec.BestType = strategies[0].Type
		rec.BestScore = strategies[0].Confidence.Score
	}
	return rec
}

// InspectionRepository defines data access for inspection history.
type InspectionRepository interface {
	Create(ctx context.Context, rec *InspectionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*InspectionRecord, error)
	List(ctx context.Context, limit, offset int) ([]*InspectionRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
}
