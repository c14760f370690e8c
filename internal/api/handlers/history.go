package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/domain"
	"github.com/locateflow/locateflow/internal/export"
	"github.com/locateflow/locateflow/internal/repository/redis"
	"github.com/locateflow/locateflow/pkg/httputil"
)

// HistoryHandler serves saved inspection records
type HistoryHandler struct {
	repo        domain.InspectionRepository
	cache       *redis.Cache
	maxPageSize int
	logger      *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(repo domain.InspectionRepository, cache *redis.Cache, maxPageSize int, logger *zap.Logger) *HistoryHandler {
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &HistoryHandler{
		repo:        repo,
		cache:       cache,
		maxPageSize: maxPageSize,
		logger:      logger,
	}
}

// List handles GET /api/v1/inspections
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	pagination := httputil.GetPagination(r, 20, h.maxPageSize)

	records, err := h.repo.List(r.Context(), pagination.PerPage, pagination.Offset)
	if err != nil {
		h.logger.Error("Failed to list inspections", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	total, err := h.repo.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count inspections", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, records, &httputil.Meta{
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		Total:      total,
		TotalPages: httputil.CalculateTotalPages(total, pagination.PerPage),
	})
}

// Get handles GET /api/v1/inspections/{id}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.JSONError(w, http.StatusBadRequest, domain.ErrCodeValidation, "Invalid inspection ID format", "")
		return
	}

	if h.cache != nil {
		if rec, err := h.cache.GetInspection(r.Context(), id); err == nil && rec != nil {
			httputil.JSON(w, http.StatusOK, rec)
			return
		}
	}

	rec, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetInspection(r.Context(), rec); err != nil {
			h.logger.Warn("Failed to cache inspection", zap.Error(err))
		}
	}

	httputil.JSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/v1/inspections/{id}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.JSONError(w, http.StatusBadRequest, domain.ErrCodeValidation, "Invalid inspection ID format", "")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateInspection(r.Context(), id); err != nil {
			h.logger.Warn("Failed to invalidate cached inspection", zap.Error(err))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/v1/inspections/export?format=json|csv
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = "json"
	}
	format, err := export.ParseFormat(formatParam)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	pagination := httputil.GetPagination(r, h.maxPageSize, h.maxPageSize)

	records, err := h.repo.List(r.Context(), pagination.PerPage, pagination.Offset)
	if err != nil {
		h.logger.Error("Failed to export inspections", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="inspections.`+string(format)+`"`)

	if err := export.Records(w, format, records); err != nil {
		h.logger.Error("Failed to write export", zap.Error(err))
	}
}
