package handlers

import (
	"errors"
	"net/http"

	"site-chat-backend/internal/services"
	"site-chat-backend/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles websocket connections
type WebSocketHandler struct {
	hub            *services.Hub
	authService    *services.AuthService
	projectService *services.ProjectService
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(hub *services.Hub, authService *services.AuthService, projectService *services.ProjectService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, authService: authService, projectService: projectService}
}

// Serve handles GET /ws?token=...&project_id=...
//
// The connection is joined to the project's room and receives message and
// time entry events as they are inserted. The read loop only drains control
// frames; clients talk to the server over the REST API.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	projectID := r.URL.Query().Get("project_id")
	if token == "" || projectID == "" {
		respondError(w, "token and project_id are required", http.StatusBadRequest)
		return
	}

	userID, _, err := h.authService.ValidateJWT(token)
	if err != nil {
		respondError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := h.projectService.Get(r.Context(), projectID, userID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, "Project not found", http.StatusNotFound)
		case errors.Is(err, services.ErrNotMember):
			respondError(w, "Not a member of this project", http.StatusForbidden)
		default:
			log.Error().Err(err).Str("project_id", projectID).Msg("Failed to verify membership")
			respondError(w, "Failed to verify membership", http.StatusInternalServerError)
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	if err := h.hub.Join(r.Context(), projectID, conn); err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("Failed to join project room")
		conn.Close()
		return
	}

	log.Debug().Str("user_id", userID).Str("project_id", projectID).Msg("WebSocket connected")

	defer func() {
		h.hub.Leave(projectID, conn)
		conn.Close()
		log.Debug().Str("user_id", userID).Str("project_id", projectID).Msg("WebSocket disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
