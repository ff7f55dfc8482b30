package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TimeEntryStore handles database operations for the check-in/check-out
// log. Sessions are derived from the log on read.
type TimeEntryStore struct {
	db *pgxpool.Pool
}

// NewTimeEntryStore creates a new time entry store
func NewTimeEntryStore(db *pgxpool.Pool) *TimeEntryStore {
	return &TimeEntryStore{db: db}
}

// Create appends a log record.
func (r *TimeEntryStore) Create(ctx context.Context, entry *models.TimeEntry) error {
	query := `
		INSERT INTO time_entries (id, project_id, user_id, user_name, type, timestamp, location, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	location, err := encodeLocation(entry.Location)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query,
		entry.ID, entry.ProjectID, entry.UserID, entry.UserName,
		entry.Type, entry.Timestamp, location, nullable(entry.Note),
	)
	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}
	return nil
}

// ListByProject retrieves the project's entries, newest first.
func (r *TimeEntryStore) ListByProject(ctx context.Context, projectID string) ([]*models.TimeEntry, error) {
	return r.list(ctx, projectID, "DESC")
}

// ListSessions derives the project's sessions from the entry log, newest
// first.
func (r *TimeEntryStore) ListSessions(ctx context.Context, projectID string) ([]*models.TimeSession, error) {
	entries, err := r.list(ctx, projectID, "ASC")
	if err != nil {
		return nil, err
	}

	sessions := models.BuildSessions(entries)
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// ActiveSession returns the user's active session in the project, or
// ErrNotFound.
func (r *TimeEntryStore) ActiveSession(ctx context.Context, projectID, userID string) (*models.TimeSession, error) {
	sessions, err := r.ListSessions(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for _, session := range sessions {
		if session.UserID == userID && session.Status == models.SessionActive {
			return session, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *TimeEntryStore) list(ctx context.Context, projectID, order string) ([]*models.TimeEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, user_id, user_name, type, timestamp, location, note
		FROM time_entries
		WHERE project_id = $1
		ORDER BY timestamp %s
	`, order)

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		var entry models.TimeEntry
		var location []byte
		var note *string
		err := rows.Scan(
			&entry.ID, &entry.ProjectID, &entry.UserID, &entry.UserName,
			&entry.Type, &entry.Timestamp, &location, &note,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		if entry.Location, err = decodeLocation(location); err != nil {
			return nil, err
		}
		if note != nil {
			entry.Note = *note
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}

// encodeLocation serializes a GPS fix to JSONB, nil when absent.
func encodeLocation(location *models.Location) ([]byte, error) {
	if location == nil {
		return nil, nil
	}
	data, err := json.Marshal(location)
	if err != nil {
		return nil, fmt.Errorf("failed to encode location: %w", err)
	}
	return data, nil
}

func decodeLocation(data []byte) (*models.Location, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var location models.Location
	if err := json.Unmarshal(data, &location); err != nil {
		return nil, fmt.Errorf("failed to decode location: %w", err)
	}
	return &location, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
