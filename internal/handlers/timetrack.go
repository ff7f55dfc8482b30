package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"site-chat-backend/internal/middleware"
	"site-chat-backend/internal/models"
	"site-chat-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// TimeTrackHandler handles time tracking requests
type TimeTrackHandler struct {
	timeService *services.TimeTrackService
	userService *services.UserService
}

// NewTimeTrackHandler creates a new time tracking handler
func NewTimeTrackHandler(timeService *services.TimeTrackService, userService *services.UserService) *TimeTrackHandler {
	return &TimeTrackHandler{timeService: timeService, userService: userService}
}

type checkRequest struct {
	Location *models.Location `json:"location,omitempty"`
	Note     string           `json:"note,omitempty"`
}

// CheckIn handles POST /api/v1/projects/{id}/time/check-in
func (h *TimeTrackHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.timeService.CheckIn)
}

// CheckOut handles POST /api/v1/projects/{id}/time/check-out
func (h *TimeTrackHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.timeService.CheckOut)
}

func (h *TimeTrackHandler) record(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, projectID string, user *models.User, location *models.Location, note string) (*models.TimeEntry, error),
) {
	userID := middleware.GetUserID(r.Context())
	projectID := chi.URLParam(r, "id")

	var req checkRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user")
		respondError(w, "Failed to record time entry", http.StatusInternalServerError)
		return
	}

	entry, err := fn(r.Context(), projectID, user, req.Location, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyCheckedIn):
			respondError(w, "Already checked in", http.StatusConflict)
		case errors.Is(err, services.ErrNotCheckedIn):
			respondError(w, "No active session to check out", http.StatusConflict)
		default:
			log.Error().Err(err).Str("project_id", projectID).Msg("Failed to record time entry")
			respondError(w, "Failed to record time entry", http.StatusInternalServerError)
		}
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// ListEntries handles GET /api/v1/projects/{id}/time/entries
func (h *TimeTrackHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	entries, err := h.timeService.ListByProject(r.Context(), projectID)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("Failed to list time entries")
		respondError(w, "Failed to list time entries", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ListSessions handles GET /api/v1/projects/{id}/time/sessions
func (h *TimeTrackHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	sessions, err := h.timeService.ListSessions(r.Context(), projectID)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("Failed to list sessions")
		respondError(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

// ActiveSession handles GET /api/v1/projects/{id}/time/active
func (h *TimeTrackHandler) ActiveSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projectID := chi.URLParam(r, "id")

	session, err := h.timeService.ActiveSession(r.Context(), projectID, userID)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("Failed to get active session")
		respondError(w, "Failed to get active session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"session": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}
