package local

import (
	"context"
	"sort"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"
)

// projectStore persists projects in the local collection. Membership is
// embedded in the project record, so there is no secondary write to fail.
type projectStore struct {
	s *Store
}

// Create appends a new project.
func (p *projectStore) Create(ctx context.Context, project *models.Project) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	projects, err := readList[*models.Project](ctx, p.s, keyProjects)
	if err != nil {
		return err
	}

	projects = append(projects, project)
	return writeList(ctx, p.s, keyProjects, projects)
}

// GetByID retrieves a project by ID.
func (p *projectStore) GetByID(ctx context.Context, id string) (*models.Project, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	projects, err := readList[*models.Project](ctx, p.s, keyProjects)
	if err != nil {
		return nil, err
	}

	for _, project := range projects {
		if project.ID == id {
			return project, nil
		}
	}
	return nil, store.ErrNotFound
}

// ListByMember returns the projects the user belongs to, newest first.
func (p *projectStore) ListByMember(ctx context.Context, userID string) ([]*models.Project, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	projects, err := readList[*models.Project](ctx, p.s, keyProjects)
	if err != nil {
		return nil, err
	}

	var result []*models.Project
	for _, project := range projects {
		if project.HasMember(userID) {
			result = append(result, project)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// Update replaces the stored project with the given one.
func (p *projectStore) Update(ctx context.Context, project *models.Project) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	projects, err := readList[*models.Project](ctx, p.s, keyProjects)
	if err != nil {
		return err
	}

	for i, existing := range projects {
		if existing.ID == project.ID {
			projects[i] = project
			return writeList(ctx, p.s, keyProjects, projects)
		}
	}
	return store.ErrNotFound
}

// AddMember adds a user to the project's member set. Adding an existing
// member is a no-op.
func (p *projectStore) AddMember(ctx context.Context, projectID, userID string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	projects, err := readList[*models.Project](ctx, p.s, keyProjects)
	if err != nil {
		return err
	}

	for _, project := range projects {
		if project.ID != projectID {
			continue
		}
		if project.HasMember(userID) {
			return nil
		}
		project.Members = append(project.Members, userID)
		return writeList(ctx, p.s, keyProjects, projects)
	}
	return store.ErrNotFound
}
