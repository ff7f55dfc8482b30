package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"

	"github.com/google/uuid"
)

// Check-in/check-out conflicts. The one-active-session rule is checked
// here before writing, not enforced transactionally; two truly concurrent
// check-ins can still both pass the check.
var (
	ErrAlreadyCheckedIn = errors.New("user already has an active session in this project")
	ErrNotCheckedIn     = errors.New("user has no active session in this project")
)

// TimeTrackService handles the work check-in/check-out log
type TimeTrackService struct {
	entries store.TimeEntryStore
}

// NewTimeTrackService creates a new time tracking service
func NewTimeTrackService(entries store.TimeEntryStore) *TimeTrackService {
	return &TimeTrackService{entries: entries}
}

// CheckIn opens a work session. A missing GPS fix is not an error: the
// entry is simply recorded without location.
func (s *TimeTrackService) CheckIn(ctx context.Context, projectID string, user *models.User, location *models.Location, note string) (*models.TimeEntry, error) {
	_, err := s.entries.ActiveSession(ctx, projectID, user.ID)
	if err == nil {
		return nil, ErrAlreadyCheckedIn
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	return s.record(ctx, projectID, user, models.EntryCheckIn, location, note)
}

// CheckOut completes the user's active session.
func (s *TimeTrackService) CheckOut(ctx context.Context, projectID string, user *models.User, location *models.Location, note string) (*models.TimeEntry, error) {
	_, err := s.entries.ActiveSession(ctx, projectID, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotCheckedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	return s.record(ctx, projectID, user, models.EntryCheckOut, location, note)
}

func (s *TimeTrackService) record(ctx context.Context, projectID string, user *models.User, entryType string, location *models.Location, note string) (*models.TimeEntry, error) {
	entry := &models.TimeEntry{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		UserID:    user.ID,
		UserName:  user.Name,
		Type:      entryType,
		Timestamp: time.Now(),
		Location:  location,
		Note:      note,
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	return entry, nil
}

// ListByProject returns the project's entry log, newest first
func (s *TimeTrackService) ListByProject(ctx context.Context, projectID string) ([]*models.TimeEntry, error) {
	return s.entries.ListByProject(ctx, projectID)
}

// ListSessions returns the project's work sessions, newest first
func (s *TimeTrackService) ListSessions(ctx context.Context, projectID string) ([]*models.TimeSession, error) {
	return s.entries.ListSessions(ctx, projectID)
}

// ActiveSession returns the user's active session in the project, or nil
// when there is none.
func (s *TimeTrackService) ActiveSession(ctx context.Context, projectID, userID string) (*models.TimeSession, error) {
	session, err := s.entries.ActiveSession(ctx, projectID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return session, err
}
