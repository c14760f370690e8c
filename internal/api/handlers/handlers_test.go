package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locateflow/locateflow/internal/domain"
)

// fakeInspectionRepo is an in-memory InspectionRepository for handler tests.
type fakeInspectionRepo struct {
	mu         sync.Mutex
	records    map[uuid.UUID]*domain.InspectionRecord
	failCreate bool
}

func newFakeRepo() *fakeInspectionRepo {
	return &fakeInspectionRepo{records: make(map[uuid.UUID]*domain.InspectionRecord)}
}

func (f *fakeInspectionRepo) Create(ctx context.Context, rec *domain.InspectionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return domain.NewDatabase("insert inspection", nil)
	}
	if rec == nil {
		return domain.NewInvalidArgument("record")
	}
	f.records[rec.ID] = rec
	return nil
}

func (f *fakeInspectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.NewNotFound("inspection")
	}
	return rec, nil
}

func (f *fakeInspectionRepo) List(ctx context.Context, limit, offset int) ([]*domain.InspectionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]*domain.InspectionRecord, 0, len(f.records))
	for _, rec := range f.records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeInspectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return domain.NewNotFound("inspection")
	}
	delete(f.records, id)
	return nil
}

func (f *fakeInspectionRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for id, rec := range f.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(f.records, id)
			purged++
		}
	}
	return purged, nil
}

func (f *fakeInspectionRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records), nil
}
