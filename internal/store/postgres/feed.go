package postgres

import (
	"context"
	"encoding/json"
	"time"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Notification channels raised by the insert triggers (see migrations).
const (
	channelMessages    = "messages_insert"
	channelTimeEntries = "time_entries_insert"
)

// eventBuffer is the per-subscription buffer; events beyond it are dropped
// rather than blocking the listener.
const eventBuffer = 64

// Feed delivers newly inserted rows via Postgres LISTEN/NOTIFY. Each
// subscription holds a dedicated connection from the pool for the lifetime
// of the listen loop.
type Feed struct {
	pool *pgxpool.Pool
}

// NewFeed creates a new change feed over the given pool.
func NewFeed(pool *pgxpool.Pool) *Feed {
	return &Feed{pool: pool}
}

// SubscribeMessages subscribes to message inserts for a project.
func (f *Feed) SubscribeMessages(ctx context.Context, projectID string) (*store.Subscription, error) {
	return f.subscribe(ctx, channelMessages, func(payload []byte) (store.Event, bool) {
		message, err := decodeMessageRow(payload)
		if err != nil {
			log.Error().Err(err).Msg("Failed to decode message notification")
			return store.Event{}, false
		}
		if message.ProjectID != projectID {
			return store.Event{}, false
		}
		return store.Event{Message: message}, true
	})
}

// SubscribeTimeEntries subscribes to time entry inserts for a project.
func (f *Feed) SubscribeTimeEntries(ctx context.Context, projectID string) (*store.Subscription, error) {
	return f.subscribe(ctx, channelTimeEntries, func(payload []byte) (store.Event, bool) {
		entry, err := decodeTimeEntryRow(payload)
		if err != nil {
			log.Error().Err(err).Msg("Failed to decode time entry notification")
			return store.Event{}, false
		}
		if entry.ProjectID != projectID {
			return store.Event{}, false
		}
		return store.Event{TimeEntry: entry}, true
	})
}

// subscribe starts a listen loop on the given channel. The loop runs until
// the subscription is closed; decode filters and reshapes each payload.
func (f *Feed) subscribe(ctx context.Context, channel string, decode func([]byte) (store.Event, bool)) (*store.Subscription, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return nil, err
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	sub := store.NewSubscription(eventBuffer, cancel)

	go func() {
		defer sub.CloseEvents()
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(listenCtx)
			if err != nil {
				if listenCtx.Err() == nil {
					log.Error().Err(err).Str("channel", channel).Msg("Change feed listener stopped")
				}
				return
			}

			event, ok := decode([]byte(notification.Payload))
			if !ok {
				continue
			}
			if !sub.Publish(event) {
				log.Warn().Str("channel", channel).Msg("Change feed event dropped, subscriber too slow")
			}
		}
	}()

	return sub, nil
}

// messageRow mirrors the row_to_json payload of a messages insert.
type messageRow struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	MediaURL   *string   `json:"media_url"`
	MediaSize  *int64    `json:"media_size"`
	CreatedAt  time.Time `json:"created_at"`
}

// decodeMessageRow reshapes a notification payload into a message. The
// read set starts with the sender, matching what Create plus the sender's
// read receipt produce.
func decodeMessageRow(payload []byte) (*models.Message, error) {
	var row messageRow
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil, err
	}
	return &models.Message{
		ID:         row.ID,
		ProjectID:  row.ProjectID,
		SenderID:   row.SenderID,
		SenderName: row.SenderName,
		Content:    row.Content,
		Type:       row.Type,
		MediaURL:   row.MediaURL,
		MediaSize:  row.MediaSize,
		CreatedAt:  row.CreatedAt,
		ReadBy:     []string{row.SenderID},
	}, nil
}

// timeEntryRow mirrors the row_to_json payload of a time_entries insert.
type timeEntryRow struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"project_id"`
	UserID    string           `json:"user_id"`
	UserName  string           `json:"user_name"`
	Type      string           `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Location  *models.Location `json:"location"`
	Note      *string          `json:"note"`
}

func decodeTimeEntryRow(payload []byte) (*models.TimeEntry, error) {
	var row timeEntryRow
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil, err
	}
	entry := &models.TimeEntry{
		ID:        row.ID,
		ProjectID: row.ProjectID,
		UserID:    row.UserID,
		UserName:  row.UserName,
		Type:      row.Type,
		Timestamp: row.Timestamp,
		Location:  row.Location,
	}
	if row.Note != nil {
		entry.Note = *row.Note
	}
	return entry, nil
}
