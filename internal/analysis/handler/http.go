// Package handler exposes job submission, status polling, OCR cleanup, and
// the supported-language map over HTTP.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/youzhaozhao/ContractClarity/internal/analysis"
	"github.com/youzhaozhao/ContractClarity/internal/server/httpx"
)

// AnalysisHandler accepts analysis jobs into the worker pool and serves the
// polled job registry.
type AnalysisHandler struct {
	registry *analysis.Registry
	pool     *analysis.Pool
	runner   *analysis.Runner
}

// NewAnalysisHandler returns an AnalysisHandler over the given registry, pool,
// and runner.
func NewAnalysisHandler(registry *analysis.Registry, pool *analysis.Pool, runner *analysis.Runner) *AnalysisHandler {
	return &AnalysisHandler{registry: registry, pool: pool, runner: runner}
}

// Mount registers the analysis routes on r. Submission is deliberately
// unauthenticated, matching the public product surface.
func (h *AnalysisHandler) Mount(r chi.Router) {
	r.Post("/analyze", h.analyze)
	r.Get("/status/{job_id}", h.status)
	r.Post("/ocr-refine", h.ocrRefine)
	r.Get("/languages", h.languages)
}

func (h *AnalysisHandler) analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Category string `json:"category"`
		Language string `json:"language"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "contract text is required")
		return
	}

	jobID := uuid.New().String()
	h.registry.Create(jobID, analysis.InitialProgress(req.Category))
	err := h.pool.Submit(analysis.Task{
		JobID:    jobID,
		Text:     req.Text,
		Category: req.Category,
		Language: analysis.NormalizeLanguage(req.Language),
	})
	if err != nil {
		h.registry.Fail(jobID, "server busy", err.Error(), "")
		if errors.Is(err, analysis.ErrBusy) {
			httpx.Error(w, http.StatusServiceUnavailable, "busy", "analysis capacity exhausted, retry shortly")
			return
		}
		httpx.Error(w, http.StatusServiceUnavailable, "busy", "analysis is unavailable")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"job_id": jobID})
}

func (h *AnalysisHandler) status(w http.ResponseWriter, r *http.Request) {
	job, ok := h.registry.Get(chi.URLParam(r, "job_id"))
	if !ok {
		httpx.Error(w, http.StatusNotFound, "not_found", "unknown job id")
		return
	}
	httpx.Respond(w, http.StatusOK, job)
}

func (h *AnalysisHandler) ocrRefine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	refined, err := h.runner.RefineOCR(r.Context(), req.Text)
	if err != nil {
		httpx.Error(w, http.StatusBadGateway, "upstream_error", "text cleanup failed")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"text": refined})
}

func (h *AnalysisHandler) languages(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, http.StatusOK, map[string]any{"languages": analysis.Languages})
}
