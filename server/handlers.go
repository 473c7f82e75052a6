package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/DJCodeOne/freshwax-sub002/core/pipeline"
	"github.com/DJCodeOne/freshwax-sub002/core/submission"
	"github.com/DJCodeOne/freshwax-sub002/logger"
)

const (
	serviceName    = "freshwax-submissions"
	serviceVersion = "1.0.0"
)

type processRunner interface {
	Process(ctx context.Context, submissionID string) (*pipeline.Result, error)
}

type folderLister interface {
	ListFolders(ctx context.Context, prefix string) ([]string, error)
}

// APIHandler serves the pipeline's external HTTP surface.
type APIHandler struct {
	orchestrator processRunner
	store        folderLister
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(orchestrator processRunner, store folderLister) *APIHandler {
	return &APIHandler{orchestrator: orchestrator, store: store}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to write JSON response", logger.ErrorField(err))
	}
}

// HealthHandler reports service liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// ListSubmissionsHandler lists pending submission ids by scanning the
// submissions storage prefix for distinct top-level folders.
func (h *APIHandler) ListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ListFolders(r.Context(), submission.KeyPrefix)
	if err != nil {
		logger.Error("Failed to list submissions", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list submissions"})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"submissions": ids})
}

type processRequest struct {
	SubmissionID string `json:"submissionId"`
}

type processResponse struct {
	Success   bool   `json:"success"`
	ReleaseID string `json:"releaseId,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Title     string `json:"title,omitempty"`
	Tracks    int    `json:"tracks,omitempty"`
	CoverURL  string `json:"coverUrl,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ProcessHandler runs the whole pipeline for one submission, synchronously.
// It blocks until processing completes or fails and returns a structured
// result. Partial success (some tracks degraded) is still a 200; callers
// inspect the individual track URL fields.
func (h *APIHandler) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, processResponse{Success: false, Error: "invalid request body"})
		return
	}
	req.SubmissionID = strings.TrimSpace(req.SubmissionID)
	if req.SubmissionID == "" {
		writeJSON(w, http.StatusBadRequest, processResponse{Success: false, Error: "submissionId is required"})
		return
	}

	result, err := h.orchestrator.Process(r.Context(), req.SubmissionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, processResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Success:   true,
		ReleaseID: result.ReleaseID,
		Artist:    result.Artist,
		Title:     result.Title,
		Tracks:    result.TrackCount,
		CoverURL:  result.CoverURL,
	})
}
