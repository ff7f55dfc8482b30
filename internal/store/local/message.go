package local

import (
	"context"
	"sort"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"
)

// messageStore persists messages in the local collection. Read receipts
// are embedded in the message record.
type messageStore struct {
	s *Store
}

// Create appends a new message.
func (m *messageStore) Create(ctx context.Context, message *models.Message) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	messages, err := readList[*models.Message](ctx, m.s, keyMessages)
	if err != nil {
		return err
	}

	messages = append(messages, message)
	return writeList(ctx, m.s, keyMessages, messages)
}

// ListByProject returns the project's messages ordered oldest first.
func (m *messageStore) ListByProject(ctx context.Context, projectID string) ([]*models.Message, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	messages, err := readList[*models.Message](ctx, m.s, keyMessages)
	if err != nil {
		return nil, err
	}

	var result []*models.Message
	for _, message := range messages {
		if message.ProjectID == projectID {
			result = append(result, message)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// MarkRead adds the user to the message's read set. Marking twice is a
// no-op.
func (m *messageStore) MarkRead(ctx context.Context, messageID, userID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	messages, err := readList[*models.Message](ctx, m.s, keyMessages)
	if err != nil {
		return err
	}

	for _, message := range messages {
		if message.ID != messageID {
			continue
		}
		for _, reader := range message.ReadBy {
			if reader == userID {
				return nil
			}
		}
		message.ReadBy = append(message.ReadBy, userID)
		return writeList(ctx, m.s, keyMessages, messages)
	}
	return store.ErrNotFound
}
