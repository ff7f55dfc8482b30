package postgres

import (
	"context"
	"fmt"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ProjectStore handles database operations for projects and membership
type ProjectStore struct {
	db *pgxpool.Pool
}

// NewProjectStore creates a new project store
func NewProjectStore(db *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{db: db}
}

// Create creates a new project and its member rows. A failed member
// insert is logged and does not roll back the project row.
func (r *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, name, description, address, status, start_date, end_date,
			latitude, longitude, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	var lat, lng *float64
	if project.Location != nil {
		lat, lng = &project.Location.Latitude, &project.Location.Longitude
	}

	_, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Address, project.Status,
		project.StartDate, project.EndDate, lat, lng, project.CreatedBy, project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	for _, userID := range project.Members {
		if err := r.insertMember(ctx, project.ID, userID); err != nil {
			log.Error().
				Err(err).
				Str("project_id", project.ID).
				Str("user_id", userID).
				Msg("Failed to add project member")
		}
	}

	return nil
}

// GetByID retrieves a project by ID including its members
func (r *ProjectStore) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `
		SELECT id, name, description, address, status, start_date, end_date,
			latitude, longitude, created_by, created_at
		FROM projects
		WHERE id = $1
	`
	project, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	members, err := r.membersFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	project.Members = members[id]

	return project, nil
}

// ListByMember retrieves the projects the user belongs to, newest first
func (r *ProjectStore) ListByMember(ctx context.Context, userID string) ([]*models.Project, error) {
	query := `
		SELECT p.id, p.name, p.description, p.address, p.status, p.start_date, p.end_date,
			p.latitude, p.longitude, p.created_by, p.created_at
		FROM projects p
		JOIN project_members pm ON pm.project_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	var ids []string
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
		ids = append(ids, project.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	if len(ids) == 0 {
		return projects, nil
	}

	members, err := r.membersFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, project := range projects {
		project.Members = members[project.ID]
	}

	return projects, nil
}

// Update updates the mutable project fields
func (r *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $1, description = $2, address = $3, status = $4,
			start_date = $5, end_date = $6, latitude = $7, longitude = $8
		WHERE id = $9
	`
	var lat, lng *float64
	if project.Location != nil {
		lat, lng = &project.Location.Latitude, &project.Location.Longitude
	}

	result, err := r.db.Exec(ctx, query,
		project.Name, project.Description, project.Address, project.Status,
		project.StartDate, project.EndDate, lat, lng, project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AddMember adds a user to the project. Adding an existing member is a
// no-op.
func (r *ProjectStore) AddMember(ctx context.Context, projectID, userID string) error {
	return r.insertMember(ctx, projectID, userID)
}

func (r *ProjectStore) insertMember(ctx context.Context, projectID, userID string) error {
	query := `
		INSERT INTO project_members (project_id, user_id, joined_at)
		VALUES ($1, $2, now())
		ON CONFLICT (project_id, user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to insert project member: %w", err)
	}
	return nil
}

// membersFor loads the member sets for a batch of projects.
func (r *ProjectStore) membersFor(ctx context.Context, projectIDs []string) (map[string][]string, error) {
	query := `
		SELECT project_id, user_id
		FROM project_members
		WHERE project_id = ANY($1)
		ORDER BY joined_at
	`
	rows, err := r.db.Query(ctx, query, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get project members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]string)
	for rows.Next() {
		var projectID, userID string
		if err := rows.Scan(&projectID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan project member: %w", err)
		}
		members[projectID] = append(members[projectID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project members: %w", err)
	}

	return members, nil
}

// scanProject reads one project row, folding the latitude/longitude
// columns into a GeoPoint.
func scanProject(row pgx.Row) (*models.Project, error) {
	var project models.Project
	var lat, lng *float64
	err := row.Scan(
		&project.ID, &project.Name, &project.Description, &project.Address, &project.Status,
		&project.StartDate, &project.EndDate, &lat, &lng, &project.CreatedBy, &project.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if lat != nil && lng != nil {
		project.Location = &models.GeoPoint{Latitude: *lat, Longitude: *lng}
	}
	return &project, nil
}
