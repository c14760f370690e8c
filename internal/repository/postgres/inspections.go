package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/locateflow/locateflow/internal/domain"
)

// InspectionRepository implements domain.InspectionRepository with PostgreSQL
type InspectionRepository struct {
	db *sqlx.DB
}

// NewInspectionRepository creates a new inspection repository
func NewInspectionRepository(db *sqlx.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// inspectionRow represents the database row structure
type inspectionRow struct {
	ID           uuid.UUID `db:"id"`
	PageURL      string    `db:"page_url"`
	Element      []byte    `db:"element"`
	Strategies   []byte    `db:"strategies"`
	BestSelector string    `db:"best_selector"`
	BestType     string    `db:"best_type"`
	BestScore    int       `db:"best_score"`
	AriaSnapshot []byte    `db:"aria_snapshot"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *inspectionRow) toDomain() (*domain.InspectionRecord, error) {
	var element domain.ElementSnapshot
	if err := json.Unmarshal(r.Element, &element); err != nil {
		return nil, err
	}

	var strategies []domain.LocatorStrategy
	if err := json.Unmarshal(r.Strategies, &strategies); err != nil {
		return nil, err
	}

	var aria *domain.AriaSnapshot
	if len(r.AriaSnapshot) > 0 {
		aria = &domain.AriaSnapshot{}
		if err := json.Unmarshal(r.AriaSnapshot, aria); err != nil {
			return nil, err
		}
	}

	return &domain.InspectionRecord{
		ID:           r.ID,
		PageURL:      r.PageURL,
		Element:      element,
		Strategies:   strategies,
		BestSelector: r.BestSelector,
		BestType:     domain.LocatorType(r.BestType),
		BestScore:    r.BestScore,
		AriaSnapshot: aria,
		CreatedAt:    r.CreatedAt,
	}, nil
}

// Create inserts a new inspection record
func (r *InspectionRepository) Create(ctx context.Context, rec *domain.InspectionRecord) error {
	if rec == nil {
		return domain.NewInvalidArgument("record")
	}

	element, err := json.Marshal(rec.Element)
	if err != nil {
		return err
	}
	strategies, err := json.Marshal(rec.Strategies)
	if err != nil {
		return err
	}
	var aria []byte
	if rec.AriaSnapshot != nil {
		aria, err = json.Marshal(rec.AriaSnapshot)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO inspections (
			id, page_url, element, strategies, best_selector, best_type,
			best_score, aria_snapshot, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.PageURL,
		element,
		strategies,
		rec.BestSelector,
		string(rec.BestType),
		rec.BestScore,
		aria,
		rec.CreatedAt,
	)
	if err != nil {
		return domain.NewDatabase("insert inspection", err)
	}

	return nil
}

// GetByID retrieves an inspection record by ID
func (r *InspectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionRecord, error) {
	query := `
		SELECT id, page_url, element, strategies, best_selector, best_type,
		       best_score, aria_snapshot, created_at
		FROM inspections
		WHERE id = $1
	`

	var row inspectionRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("inspection")
		}
		return nil, domain.NewDatabase("get inspection", err)
	}

	return row.toDomain()
}

// List retrieves inspection records newest first
func (r *InspectionRepository) List(ctx context.Context, limit, offset int) ([]*domain.InspectionRecord, error) {
	query := `
		SELECT id, page_url, element, strategies, best_selector, best_type,
		       best_score, aria_snapshot, created_at
		FROM inspections
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var rows []inspectionRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, domain.NewDatabase("list inspections", err)
	}

	records := make([]*domain.InspectionRecord, len(rows))
	for i, row := range rows {
		rec, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}

	return records, nil
}

// Delete removes an inspection record
func (r *InspectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM inspections WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return domain.NewDatabase("delete inspection", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.NewDatabase("delete inspection", err)
	}
	if rows == 0 {
		return domain.NewNotFound("inspection")
	}

	return nil
}

// DeleteOlderThan removes all records created before cutoff
func (r *InspectionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM inspections WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, domain.NewDatabase("purge inspections", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, domain.NewDatabase("purge inspections", err)
	}

	return rows, nil
}

// Count returns the total number of inspection records
func (r *InspectionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM inspections`); err != nil {
		return 0, domain.NewDatabase("count inspections", err)
	}
	return count, nil
}
