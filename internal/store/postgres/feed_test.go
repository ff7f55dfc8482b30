package postgres

import (
	"testing"

	"site-chat-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessageRow(t *testing.T) {
	payload := []byte(`{
		"id": "m1",
		"project_id": "p1",
		"sender_id": "u1",
		"sender_name": "Anna",
		"content": "morning",
		"type": "text",
		"media_url": null,
		"media_size": null,
		"created_at": "2026-03-02T08:15:00Z"
	}`)

	message, err := decodeMessageRow(payload)
	require.NoError(t, err)

	assert.Equal(t, "m1", message.ID)
	assert.Equal(t, "p1", message.ProjectID)
	assert.Equal(t, models.MessageText, message.Type)
	assert.Equal(t, []string{"u1"}, message.ReadBy)
	assert.Nil(t, message.MediaURL)
}

func TestDecodeMessageRowInvalidJSON(t *testing.T) {
	_, err := decodeMessageRow([]byte(`{`))
	assert.Error(t, err)
}

func TestDecodeTimeEntryRow(t *testing.T) {
	payload := []byte(`{
		"id": "e1",
		"project_id": "p1",
		"user_id": "u1",
		"user_name": "Anna",
		"type": "check-in",
		"timestamp": "2026-03-02T07:00:00Z",
		"location": {"latitude": 59.33, "longitude": 18.07, "accuracy": 10},
		"note": "pier section"
	}`)

	entry, err := decodeTimeEntryRow(payload)
	require.NoError(t, err)

	assert.Equal(t, "e1", entry.ID)
	assert.Equal(t, models.EntryCheckIn, entry.Type)
	require.NotNil(t, entry.Location)
	assert.Equal(t, 59.33, entry.Location.Latitude)
	assert.Equal(t, "pier section", entry.Note)
}

func TestDecodeTimeEntryRowNullOptionals(t *testing.T) {
	payload := []byte(`{
		"id": "e1",
		"project_id": "p1",
		"user_id": "u1",
		"user_name": "Anna",
		"type": "check-out",
		"timestamp": "2026-03-02T16:00:00Z",
		"location": null,
		"note": null
	}`)

	entry, err := decodeTimeEntryRow(payload)
	require.NoError(t, err)

	assert.Nil(t, entry.Location)
	assert.Empty(t, entry.Note)
}
