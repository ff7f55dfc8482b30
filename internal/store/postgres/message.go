package postgres

import (
	"context"
	"fmt"

	"site-chat-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageStore handles database operations for messages and read receipts
type MessageStore struct {
	db *pgxpool.Pool
}

// NewMessageStore creates a new message store
func NewMessageStore(db *pgxpool.Pool) *MessageStore {
	return &MessageStore{db: db}
}

// Create inserts the message row. Read receipts are separate rows grown
// through MarkRead.
func (r *MessageStore) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, project_id, sender_id, sender_name, content, type,
			media_url, media_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		message.ID, message.ProjectID, message.SenderID, message.SenderName,
		message.Content, message.Type, message.MediaURL, message.MediaSize, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByProject retrieves the project's messages oldest first, with their
// read sets.
func (r *MessageStore) ListByProject(ctx context.Context, projectID string) ([]*models.Message, error) {
	query := `
		SELECT id, project_id, sender_id, sender_name, content, type,
			media_url, media_size, created_at
		FROM messages
		WHERE project_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	var ids []string
	for rows.Next() {
		var message models.Message
		err := rows.Scan(
			&message.ID, &message.ProjectID, &message.SenderID, &message.SenderName,
			&message.Content, &message.Type, &message.MediaURL, &message.MediaSize, &message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &message)
		ids = append(ids, message.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	if len(ids) == 0 {
		return messages, nil
	}

	reads, err := r.readsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, message := range messages {
		message.ReadBy = reads[message.ID]
	}

	return messages, nil
}

// MarkRead records that the user has seen the message. Marking twice is a
// no-op.
func (r *MessageStore) MarkRead(ctx context.Context, messageID, userID string) error {
	query := `
		INSERT INTO message_reads (message_id, user_id, read_at)
		VALUES ($1, $2, now())
		ON CONFLICT (message_id, user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, messageID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

// readsFor loads the read sets for a batch of messages.
func (r *MessageStore) readsFor(ctx context.Context, messageIDs []string) (map[string][]string, error) {
	query := `
		SELECT message_id, user_id
		FROM message_reads
		WHERE message_id = ANY($1)
		ORDER BY read_at
	`
	rows, err := r.db.Query(ctx, query, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get message reads: %w", err)
	}
	defer rows.Close()

	reads := make(map[string][]string)
	for rows.Next() {
		var messageID, userID string
		if err := rows.Scan(&messageID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan message read: %w", err)
		}
		reads[messageID] = append(reads[messageID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message reads: %w", err)
	}

	return reads, nil
}
