package services

import (
	"context"
	"testing"

	"site-chat-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectAddsCreatorAsMember(t *testing.T) {
	st := openTestStore(t)
	svc := NewProjectService(st.Projects)
	ctx := context.Background()

	project, err := svc.Create(ctx, "creator", CreateProjectRequest{
		Name:    "Harbor extension",
		Members: []string{"u1", "u2"},
	})
	require.NoError(t, err)

	assert.True(t, project.HasMember("creator"))
	assert.Equal(t, []string{"u1", "u2", "creator"}, project.Members)
	assert.Equal(t, models.ProjectPlanning, project.Status)
}

func TestCreateProjectCreatorAlreadyListed(t *testing.T) {
	st := openTestStore(t)
	svc := NewProjectService(st.Projects)

	project, err := svc.Create(context.Background(), "creator", CreateProjectRequest{
		Name:    "Harbor extension",
		Members: []string{"creator", "u1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"creator", "u1"}, project.Members)
}

func TestGetRejectsNonMember(t *testing.T) {
	st := openTestStore(t)
	svc := NewProjectService(st.Projects)
	ctx := context.Background()

	project, err := svc.Create(ctx, "creator", CreateProjectRequest{Name: "Harbor"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, project.ID, "outsider")
	assert.ErrorIs(t, err, ErrNotMember)

	got, err := svc.Get(ctx, project.ID, "creator")
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
}

func TestUpdateLeavesNilFieldsUnchanged(t *testing.T) {
	st := openTestStore(t)
	svc := NewProjectService(st.Projects)
	ctx := context.Background()

	project, err := svc.Create(ctx, "creator", CreateProjectRequest{
		Name:        "Harbor",
		Description: "Pier rebuild",
	})
	require.NoError(t, err)

	status := models.ProjectInProgress
	updated, err := svc.Update(ctx, project.ID, UpdateProjectRequest{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, models.ProjectInProgress, updated.Status)
	assert.Equal(t, "Harbor", updated.Name)
	assert.Equal(t, "Pier rebuild", updated.Description)
}

func TestAddMemberGrowsMemberSet(t *testing.T) {
	st := openTestStore(t)
	svc := NewProjectService(st.Projects)
	ctx := context.Background()

	project, err := svc.Create(ctx, "creator", CreateProjectRequest{Name: "Harbor"})
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(ctx, project.ID, "u2"))

	got, err := svc.Get(ctx, project.ID, "u2")
	require.NoError(t, err)
	assert.True(t, got.HasMember("u2"))
}
