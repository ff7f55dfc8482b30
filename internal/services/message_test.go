package services

import (
	"context"
	"errors"
	"testing"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMessageSetsSenderRead(t *testing.T) {
	st := openTestStore(t)
	svc := NewMessageService(st.Messages, st.Projects, st.Users, nil)
	ctx := context.Background()

	require.NoError(t, st.Projects.Create(ctx, &models.Project{ID: "p1", Name: "Harbor", Members: []string{"u1"}}))

	sender := &models.User{ID: "u1", Name: "Anna"}
	message, err := svc.Create(ctx, "p1", sender, CreateMessageRequest{Content: "morning"})
	require.NoError(t, err)

	assert.Equal(t, models.MessageText, message.Type)
	assert.Equal(t, "Anna", message.SenderName)
	assert.Equal(t, []string{"u1"}, message.ReadBy)
}

func TestCreateMessageRejectsUnknownType(t *testing.T) {
	st := openTestStore(t)
	svc := NewMessageService(st.Messages, st.Projects, st.Users, nil)

	sender := &models.User{ID: "u1", Name: "Anna"}
	_, err := svc.Create(context.Background(), "p1", sender, CreateMessageRequest{Content: "x", Type: "voice"})
	assert.Error(t, err)
}

func TestCreateMessageRejectsEmptyContent(t *testing.T) {
	st := openTestStore(t)
	svc := NewMessageService(st.Messages, st.Projects, st.Users, nil)

	sender := &models.User{ID: "u1", Name: "Anna"}
	_, err := svc.Create(context.Background(), "p1", sender, CreateMessageRequest{})
	assert.Error(t, err)
}

// flakyReceiptStore fails every MarkRead but stores messages normally.
type flakyReceiptStore struct {
	store.MessageStore
}

func (f *flakyReceiptStore) MarkRead(ctx context.Context, messageID, userID string) error {
	return errors.New("receipt backend down")
}

func TestCreateMessageSurvivesReceiptFailure(t *testing.T) {
	st := openTestStore(t)
	svc := NewMessageService(&flakyReceiptStore{st.Messages}, st.Projects, st.Users, nil)
	ctx := context.Background()

	require.NoError(t, st.Projects.Create(ctx, &models.Project{ID: "p1", Name: "Harbor", Members: []string{"u1"}}))

	sender := &models.User{ID: "u1", Name: "Anna"}
	message, err := svc.Create(ctx, "p1", sender, CreateMessageRequest{Content: "morning"})
	require.NoError(t, err)

	stored, err := st.Messages.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, message.ID, stored[0].ID)
	assert.Contains(t, stored[0].ReadBy, "u1")
}

func TestMarkReadGrowsReadSet(t *testing.T) {
	st := openTestStore(t)
	svc := NewMessageService(st.Messages, st.Projects, st.Users, nil)
	ctx := context.Background()

	require.NoError(t, st.Projects.Create(ctx, &models.Project{ID: "p1", Members: []string{"u1", "u2"}}))

	sender := &models.User{ID: "u1", Name: "Anna"}
	message, err := svc.Create(ctx, "p1", sender, CreateMessageRequest{Content: "morning"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, message.ID, "u2"))

	stored, err := svc.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.ElementsMatch(t, []string{"u1", "u2"}, stored[0].ReadBy)
}

func TestCreateMediaMessage(t *testing.T) {
	st := openTestStore(t)
	svc := NewMessageService(st.Messages, st.Projects, st.Users, nil)
	ctx := context.Background()

	require.NoError(t, st.Projects.Create(ctx, &models.Project{ID: "p1", Members: []string{"u1"}}))

	url := "https://media.example.com/p1/site.jpg"
	size := int64(204800)
	sender := &models.User{ID: "u1", Name: "Anna"}
	message, err := svc.Create(ctx, "p1", sender, CreateMessageRequest{
		Content:   "site.jpg",
		Type:      models.MessageImage,
		MediaURL:  &url,
		MediaSize: &size,
	})
	require.NoError(t, err)

	assert.Equal(t, models.MessageImage, message.Type)
	require.NotNil(t, message.MediaURL)
	assert.Equal(t, url, *message.MediaURL)
}
