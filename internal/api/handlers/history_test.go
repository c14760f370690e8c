package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/domain"
)

func seedRecord(t *testing.T, repo *fakeInspectionRepo, createdAt time.Time) *domain.InspectionRecord {
	t.Helper()
	rec := domain.NewInspectionRecord(
		"https://shop.example.com/checkout",
		domain.ElementSnapshot{Tag: "button", Text: "Place order"},
		[]domain.LocatorStrategy{
			{
				Type:       domain.LocatorTypeID,
				Selector:   "#submit-btn",
				Confidence: domain.ConfidenceScore{Score: 95},
				IsUnique:   true,
				IsStable:   true,
			},
		},
		nil,
	)
	rec.CreatedAt = createdAt
	require.NoError(t, repo.Create(context.Background(), rec))
	return rec
}

func newHistoryRouter(repo *fakeInspectionRepo) http.Handler {
	h := NewHistoryHandler(repo, nil, 100, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api/v1/inspections", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/export", h.Export)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func TestHistoryList(t *testing.T) {
	repo := newFakeRepo()
	base := time.Now().UTC()
	seedRecord(t, repo, base.Add(-2*time.Hour))
	newest := seedRecord(t, repo, base)

	router := newHistoryRouter(repo)

	req := httptest.NewRequest("GET", "/api/v1/inspections", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []domain.InspectionRecord `json:"data"`
		Meta struct {
			Page  int `json:"page"`
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data, 2)
	assert.Equal(t, newest.ID, envelope.Data[0].ID, "newest record first")
	assert.Equal(t, 1, envelope.Meta.Page)
	assert.Equal(t, 2, envelope.Meta.Total)
}

func TestHistoryList_Pagination(t *testing.T) {
	repo := newFakeRepo()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		seedRecord(t, repo, base.Add(time.Duration(-i)*time.Minute))
	}

	router := newHistoryRouter(repo)

	req := httptest.NewRequest("GET", "/api/v1/inspections?page=2&per_page=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []domain.InspectionRecord `json:"data"`
		Meta struct {
			Page       int `json:"page"`
			PerPage    int `json:"per_page"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.Len(t, envelope.Data, 2)
	assert.Equal(t, 2, envelope.Meta.Page)
	assert.Equal(t, 5, envelope.Meta.Total)
	assert.Equal(t, 3, envelope.Meta.TotalPages)
}

func TestHistoryGet(t *testing.T) {
	repo := newFakeRepo()
	saved := seedRecord(t, repo, time.Now().UTC())

	router := newHistoryRouter(repo)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/inspections/"+saved.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data domain.InspectionRecord `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, saved.ID, envelope.Data.ID)
		assert.Equal(t, "#submit-btn", envelope.Data.BestSelector)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/inspections/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/inspections/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHistoryDelete(t *testing.T) {
	repo := newFakeRepo()
	saved := seedRecord(t, repo, time.Now().UTC())

	router := newHistoryRouter(repo)

	req := httptest.NewRequest("DELETE", "/api/v1/inspections/"+saved.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	// Deleting again is a 404
	req = httptest.NewRequest("DELETE", "/api/v1/inspections/"+saved.ID.String(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryExport(t *testing.T) {
	repo := newFakeRepo()
	seedRecord(t, repo, time.Now().UTC())

	router := newHistoryRouter(repo)

	t.Run("csv", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/inspections/export?format=csv", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "inspections.csv")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "best_selector")
		assert.Contains(t, lines[1], "#submit-btn")
	})

	t.Run("json default", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/inspections/export", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var records []domain.InspectionRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
	})

	t.Run("unsupported format", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/inspections/export?format=xml", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
