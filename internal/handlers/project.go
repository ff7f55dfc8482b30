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

// ProjectHandler handles project requests
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// List handles GET /api/v1/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	projects, err := h.projectService.ListForUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list projects")
		respondError(w, "Failed to list projects", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req services.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondError(w, "name is required", http.StatusBadRequest)
		return
	}

	project, err := h.projectService.Create(r.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create project")
		respondError(w, "Failed to create project", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

// Get handles GET /api/v1/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projectID := chi.URLParam(r, "id")

	project, err := h.projectService.Get(r.Context(), projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, "Project not found", http.StatusNotFound)
		case errors.Is(err, services.ErrNotMember):
			respondError(w, "Not a member of this project", http.StatusForbidden)
		default:
			log.Error().Err(err).Str("project_id", projectID).Msg("Failed to get project")
			respondError(w, "Failed to get project", http.StatusInternalServerError)
		}
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Update handles PUT /api/v1/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req services.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.projectService.Update(r.Context(), projectID, req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "Project not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("project_id", projectID).Msg("Failed to update project")
		respondError(w, "Failed to update project", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

// AddMember handles POST /api/v1/projects/{id}/members
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := h.projectService.AddMember(r.Context(), projectID, req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "Project not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("project_id", projectID).Str("user_id", req.UserID).Msg("Failed to add member")
		respondError(w, "Failed to add member", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
