package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"site-chat-backend/internal/middleware"
	"site-chat-backend/internal/services"
	"site-chat-backend/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MessageHandler handles message requests
type MessageHandler struct {
	messageService *services.MessageService
	projectService *services.ProjectService
	userService    *services.UserService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(
	messageService *services.MessageService,
	projectService *services.ProjectService,
	userService *services.UserService,
) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		projectService: projectService,
		userService:    userService,
	}
}

// List handles GET /api/v1/projects/{id}/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projectID := chi.URLParam(r, "id")

	if !h.requireMember(w, r, projectID, userID) {
		return
	}

	messages, err := h.messageService.ListByProject(r.Context(), projectID)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("Failed to list messages")
		respondError(w, "Failed to list messages", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// Create handles POST /api/v1/projects/{id}/messages
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projectID := chi.URLParam(r, "id")

	if !h.requireMember(w, r, projectID, userID) {
		return
	}

	var req services.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sender, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load sender")
		respondError(w, "Failed to send message", http.StatusInternalServerError)
		return
	}

	message, err := h.messageService.Create(r.Context(), projectID, sender, req)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("Failed to create message")
		respondError(w, "Failed to send message", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, message)
}

// MarkRead handles POST /api/v1/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID := chi.URLParam(r, "id")

	if err := h.messageService.MarkRead(r.Context(), messageID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "Message not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to mark message read")
		respondError(w, "Failed to mark message read", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireMember verifies project membership and writes the error response
// itself when the check fails.
func (h *MessageHandler) requireMember(w http.ResponseWriter, r *http.Request, projectID, userID string) bool {
	_, err := h.projectService.Get(r.Context(), projectID, userID)
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, "Project not found", http.StatusNotFound)
	case errors.Is(err, services.ErrNotMember):
		respondError(w, "Not a member of this project", http.StatusForbidden)
	default:
		log.Error().Err(err).Str("project_id", projectID).Msg("Failed to verify membership")
		respondError(w, "Failed to verify membership", http.StatusInternalServerError)
	}
	return false
}
