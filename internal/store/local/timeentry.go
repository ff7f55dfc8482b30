package local

import (
	"context"
	"fmt"
	"sort"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"
)

// timeEntryStore persists time sessions in the local collection. A
// check-in opens a session and a check-out completes it; the flat entry
// log is reconstructed from the session records on read.
type timeEntryStore struct {
	s *Store
}

// Create records a check-in or check-out.
func (t *timeEntryStore) Create(ctx context.Context, entry *models.TimeEntry) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	sessions, err := readList[*models.TimeSession](ctx, t.s, keySessions)
	if err != nil {
		return err
	}

	switch entry.Type {
	case models.EntryCheckIn:
		sessions = append(sessions, &models.TimeSession{
			ID:        entry.ID,
			ProjectID: entry.ProjectID,
			UserID:    entry.UserID,
			UserName:  entry.UserName,
			CheckIn:   *entry,
			Status:    models.SessionActive,
		})
	case models.EntryCheckOut:
		session := findActive(sessions, entry.ProjectID, entry.UserID)
		if session == nil {
			return fmt.Errorf("no active session to check out: %w", store.ErrNotFound)
		}
		session.Complete(*entry)
	default:
		return fmt.Errorf("unknown time entry type %q", entry.Type)
	}

	return writeList(ctx, t.s, keySessions, sessions)
}

// ListByProject returns the project's entry log, newest first.
func (t *timeEntryStore) ListByProject(ctx context.Context, projectID string) ([]*models.TimeEntry, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	sessions, err := readList[*models.TimeSession](ctx, t.s, keySessions)
	if err != nil {
		return nil, err
	}

	var entries []*models.TimeEntry
	for _, session := range sessions {
		if session.ProjectID != projectID {
			continue
		}
		in := session.CheckIn
		entries = append(entries, &in)
		if session.CheckOut != nil {
			out := *session.CheckOut
			entries = append(entries, &out)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	return entries, nil
}

// ListSessions returns the project's sessions, newest first.
func (t *timeEntryStore) ListSessions(ctx context.Context, projectID string) ([]*models.TimeSession, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	sessions, err := readList[*models.TimeSession](ctx, t.s, keySessions)
	if err != nil {
		return nil, err
	}

	var result []*models.TimeSession
	for _, session := range sessions {
		if session.ProjectID == projectID {
			result = append(result, session)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CheckIn.Timestamp.After(result[j].CheckIn.Timestamp)
	})
	return result, nil
}

// ActiveSession returns the user's active session in the project, or
// ErrNotFound.
func (t *timeEntryStore) ActiveSession(ctx context.Context, projectID, userID string) (*models.TimeSession, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	sessions, err := readList[*models.TimeSession](ctx, t.s, keySessions)
	if err != nil {
		return nil, err
	}

	if session := findActive(sessions, projectID, userID); session != nil {
		return session, nil
	}
	return nil, store.ErrNotFound
}

// findActive returns the most recent active session for (user, project).
func findActive(sessions []*models.TimeSession, projectID, userID string) *models.TimeSession {
	var found *models.TimeSession
	for _, session := range sessions {
		if session.ProjectID == projectID && session.UserID == userID &&
			session.Status == models.SessionActive {
			found = session
		}
	}
	return found
}
