package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rrr-backend/internal/cache"
	"rrr-backend/internal/extract"
	"rrr-backend/internal/report"
	obsmetrics "rrr-backend/internal/shared/metrics"
	"rrr-backend/internal/shared/server/respond"
	"rrr-backend/internal/shared/telemetry"
	"rrr-backend/internal/shared/util"
)

// Analyzer runs a full analysis for a normalized folder path.
type Analyzer interface {
	Run(ctx context.Context, folder string) (*Result, error)
}

// Handler exposes the analysis pipeline over HTTP with folder-level caching.
type Handler struct {
	svc   Analyzer
	cache cache.Store
}

// NewHandler builds the analyze endpoint handler.
func NewHandler(svc Analyzer, store cache.Store) *Handler {
	return &Handler{svc: svc, cache: store}
}

type analyzeRequest struct {
	FolderPath string `json:"folder_path" binding:"required"`
}

// Analyze handles POST /api/v1/analyze.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "folder_path is required", nil)
		return
	}

	ctx := c.Request.Context()
	folder := extract.NormalizeFolderPath(req.FolderPath)

	// Expired rows go first so a stale entry can never satisfy the lookup.
	if _, err := h.cache.Purge(ctx); err != nil {
		log.Printf("analyze: cache purge failed: %v", err)
	}

	paths, err := extract.ListPDFs(folder)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	folderHash := util.HashString(folder)
	pdfsHash, err := util.HashFiles(paths)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "could not fingerprint folder contents", nil)
		return
	}

	if payload, ok, err := h.cache.Get(ctx, folderHash, pdfsHash); err != nil {
		log.Printf("analyze: cache lookup failed: %v", err)
	} else if ok {
		obsmetrics.IncCacheHit()
		telemetry.Info("analysis.cache.hit", map[string]any{
			"folder_hash": folderHash,
			"request_id":  c.GetString("requestId"),
		})
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}

	result, err := h.svc.Run(ctx, folder)
	if err != nil {
		h.respondRunError(c, err)
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "could not encode analysis result", nil)
		return
	}
	if err := h.cache.Put(ctx, folderHash, pdfsHash, payload); err != nil {
		log.Printf("analyze: cache store failed: %v", err)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *Handler) respondRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, extract.ErrNoPDFs), errors.Is(err, ErrNoTables):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, report.ErrSectionMissing):
		respond.Error(c, http.StatusInternalServerError, "report_incomplete", err.Error(), nil)
	case errors.Is(err, ErrTooFewCharts):
		respond.Error(c, http.StatusInternalServerError, "visualization_failed", err.Error(), nil)
	case errors.Is(err, ErrLLMUnavailable):
		respond.Error(c, http.StatusBadGateway, "llm_unavailable", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
	}
}
