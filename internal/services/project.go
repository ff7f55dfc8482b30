package services

import (
	"context"
	"fmt"
	"time"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"

	"github.com/google/uuid"
)

// ErrNotMember is returned when a user tries to access a project they do
// not belong to.
var ErrNotMember = fmt.Errorf("user is not a member of this project")

// ProjectService handles project-related business logic
type ProjectService struct {
	projects store.ProjectStore
}

// NewProjectService creates a new project service
func NewProjectService(projects store.ProjectStore) *ProjectService {
	return &ProjectService{projects: projects}
}

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Address     string           `json:"address,omitempty"`
	Status      string           `json:"status,omitempty"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Location    *models.GeoPoint `json:"location,omitempty"`
	Members     []string         `json:"members,omitempty"`
}

// Create creates a project. The creator is always added to the member
// set, whether or not the request listed them.
func (s *ProjectService) Create(ctx context.Context, createdBy string, req CreateProjectRequest) (*models.Project, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	status := req.Status
	if status == "" {
		status = models.ProjectPlanning
	}

	project := &models.Project{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		CreatedBy:   createdBy,
		Members:     req.Members,
		CreatedAt:   time.Now(),
	}
	if !project.HasMember(createdBy) {
		project.Members = append(project.Members, createdBy)
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListForUser returns the projects the user is a member of
func (s *ProjectService) ListForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	return s.projects.ListByMember(ctx, userID)
}

// Get returns a project if the user is a member
func (s *ProjectService) Get(ctx context.Context, projectID, userID string) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasMember(userID) {
		return nil, ErrNotMember
	}
	return project, nil
}

// UpdateProjectRequest carries the mutable project fields. Nil fields are
// left unchanged.
type UpdateProjectRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Address     *string          `json:"address,omitempty"`
	Status      *string          `json:"status,omitempty"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Location    *models.GeoPoint `json:"location,omitempty"`
}

// Update applies the given changes to a project
func (s *ProjectService) Update(ctx context.Context, projectID string, req UpdateProjectRequest) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if req.Location != nil {
		project.Location = req.Location
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// AddMember adds a user to a project's member set
func (s *ProjectService) AddMember(ctx context.Context, projectID, userID string) error {
	if err := s.projects.AddMember(ctx, projectID, userID); err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}
