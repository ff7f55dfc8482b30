package handlers

import (
	"encoding/json"
	"net/http"

	"site-chat-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MediaHandler handles media upload requests
type MediaHandler struct {
	mediaService *services.MediaService
}

// NewMediaHandler creates a new media handler. mediaService may be nil
// when no storage bucket is configured.
func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

type presignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// PresignUpload handles POST /api/v1/projects/{id}/media
func (h *MediaHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	if h.mediaService == nil {
		respondError(w, "Media uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	projectID := chi.URLParam(r, "id")

	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Filename == "" {
		respondError(w, "filename is required", http.StatusBadRequest)
		return
	}

	resp, err := h.mediaService.PresignUpload(r.Context(), projectID, req.Filename, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("Failed to presign upload")
		respondError(w, "Failed to presign upload", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
