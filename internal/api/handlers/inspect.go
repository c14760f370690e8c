package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/locateflow/locateflow/internal/capture"
	"github.com/locateflow/locateflow/internal/dom"
	"github.com/locateflow/locateflow/internal/domain"
	"github.com/locateflow/locateflow/internal/locator"
	"github.com/locateflow/locateflow/internal/observability"
	"github.com/locateflow/locateflow/internal/repository/redis"
	"github.com/locateflow/locateflow/pkg/httputil"
)

// InspectHandler generates ranked locator candidates for an element
type InspectHandler struct {
	engine  *locator.Engine
	repo    domain.InspectionRepository
	cache   *redis.Cache
	capture *capture.Service
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewInspectHandler creates a new inspect handler. repo, cache and
// capturer may be nil when the matching feature is disabled.
func NewInspectHandler(engine *locator.Engine, repo domain.InspectionRepository, cache *redis.Cache, capturer *capture.Service, metrics *observability.Metrics, logger *zap.Logger) *InspectHandler {
	return &InspectHandler{
		engine:  engine,
		repo:    repo,
		cache:   cache,
		capture: capturer,
		metrics: metrics,
		logger:  logger,
	}
}

// InspectRequest is the request body for an element inspection. Exactly
// one of html or url must be set; selector picks the target element.
type InspectRequest struct {
	HTML     string `json:"html,omitempty"`
	URL      string `json:"url,omitempty"`
	Selector string `json:"selector"`
	PageURL  string `json:"page_url,omitempty"`
	Save     *bool  `json:"save,omitempty"`
}

// InspectResponse is the API representation of an inspection result
type InspectResponse struct {
	ID         string                   `json:"id,omitempty"`
	PageURL    string                   `json:"page_url,omitempty"`
	Element    domain.ElementSnapshot   `json:"element"`
	Strategies []domain.LocatorStrategy `json:"strategies"`
	Best       *domain.LocatorStrategy  `json:"best,omitempty"`
	Aria       *domain.AriaSnapshot     `json:"aria_snapshot,omitempty"`
	MatchCount int                      `json:"match_count"`
}

// Inspect handles POST /api/v1/inspect
func (h *InspectHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req InspectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if req.Selector == "" {
		httputil.JSONError(w, http.StatusBadRequest, domain.ErrCodeValidation, "selector is required", "")
		return
	}
	if (req.HTML == "") == (req.URL == "") {
		httputil.JSONError(w, http.StatusBadRequest, domain.ErrCodeValidation, "exactly one of html or url must be provided", "")
		return
	}

	source := "html"
	markup := req.HTML
	pageURL := req.PageURL

	if req.URL != "" {
		source = "url"
		if pageURL == "" {
			pageURL = req.URL
		}
		body, err := h.fetchPage(r, req.URL)
		if err != nil {
			h.recordInspection(source, "error", "", start)
			h.logger.Error("Failed to capture page", zap.String("url", req.URL), zap.Error(err))
			httputil.ErrorFromDomain(w, err)
			return
		}
		markup = string(body)
	}

	doc, err := dom.ParseString(markup)
	if err != nil {
		h.recordInspection(source, "error", "", start)
		httputil.ErrorFromDomain(w, err)
		return
	}

	matches, err := doc.QuerySelectorAll(req.Selector)
	if err != nil {
		h.recordInspection(source, "error", "", start)
		httputil.JSONError(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid selector", err.Error())
		return
	}
	if len(matches) == 0 {
		h.recordInspection(source, "not_found", "", start)
		httputil.JSONError(w, http.StatusNotFound, domain.ErrCodeNotFound, "no element matches selector", "")
		return
	}

	inspection, err := h.engine.Inspect(matches[0], doc)
	if err != nil {
		h.recordInspection(source, "error", "", start)
		h.logger.Error("Inspection failed", zap.String("selector", req.Selector), zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	resp := InspectResponse{
		PageURL:    pageURL,
		Element:    inspection.Element,
		Strategies: inspection.Strategies,
		Best:       inspection.Best(),
		Aria:       inspection.Aria,
		MatchCount: len(matches),
	}

	bestType := ""
	if best := inspection.Best(); best != nil {
		bestType = string(best.Type)
	}
	h.recordInspection(source, "ok", bestType, start)
	if h.metrics != nil {
		for _, s := range inspection.Strategies {
			h.metrics.RecordStrategy(string(s.Type), s.Confidence.Score)
		}
	}

	if h.shouldSave(req.Save) {
		rec := domain.NewInspectionRecord(pageURL, inspection.Element, inspection.Strategies, inspection.Aria)
		if err := h.repo.Create(r.Context(), rec); err != nil {
			h.logger.Error("Failed to save inspection", zap.Error(err))
		} else {
			resp.ID = rec.ID.String()
			if h.cache != nil {
				if err := h.cache.SetInspection(r.Context(), rec); err != nil {
					h.logger.Warn("Failed to cache inspection", zap.Error(err))
				}
			}
		}
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// fetchPage returns page markup for url, using the page cache when
// available and falling back to a live browser capture.
func (h *InspectHandler) fetchPage(r *http.Request, url string) ([]byte, error) {
	ctx := r.Context()

	if h.cache != nil {
		if body, err := h.cache.GetPage(ctx, url); err == nil && body != nil {
			if h.metrics != nil {
				h.metrics.RecordCacheHit()
			}
			return body, nil
		}
		if h.metrics != nil {
			h.metrics.RecordCacheMiss()
		}
	}

	if h.capture == nil {
		return nil, domain.NewValidation("page capture is disabled, provide html instead of url")
	}

	page, err := h.capture.Capture(ctx, url)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordCapture(h.capture.Browser(), "error", 0, 0)
		}
		return nil, err
	}
	if h.metrics != nil {
		h.metrics.RecordCapture(h.capture.Browser(), "ok", page.Duration, len(page.HTML))
	}

	if h.cache != nil {
		if err := h.cache.SetPage(ctx, url, page.HTML); err != nil {
			h.logger.Warn("Failed to cache page", zap.String("url", url), zap.Error(err))
		}
	}

	return page.HTML, nil
}

func (h *InspectHandler) shouldSave(save *bool) bool {
	if h.repo == nil {
		return false
	}
	if save == nil {
		return true
	}
	return *save
}

func (h *InspectHandler) recordInspection(source, status, bestType string, start time.Time) {
	if h.metrics != nil {
		h.metrics.RecordInspection(source, status, bestType, time.Since(start))
	}
}
