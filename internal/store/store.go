// Package store defines the persistence contract shared by the local and
// remote backends. The mode is chosen once at boot; everything above this
// layer is mode-agnostic and receives entity copies it owns outright.
package store

import (
	"context"
	"errors"

	"site-chat-backend/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// UserStore handles persistence for users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// ProjectStore handles persistence for projects and their membership.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	ListByMember(ctx context.Context, userID string) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	AddMember(ctx context.Context, projectID, userID string) error
}

// MessageStore handles persistence for messages and read receipts.
// Create persists the message row only; read receipts grow through
// MarkRead, which is idempotent.
type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	ListByProject(ctx context.Context, projectID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, messageID, userID string) error
}

// TimeEntryStore handles persistence for the check-in/check-out log and
// the sessions derived from it.
type TimeEntryStore interface {
	Create(ctx context.Context, entry *models.TimeEntry) error
	ListByProject(ctx context.Context, projectID string) ([]*models.TimeEntry, error)
	ListSessions(ctx context.Context, projectID string) ([]*models.TimeSession, error)
	ActiveSession(ctx context.Context, projectID, userID string) (*models.TimeSession, error)
}

// Feed delivers newly inserted rows for a project as they land in the
// backing store. The local backend has no way to observe writes from other
// processes, so its subscriptions never deliver events; both backends
// return handles whose Close is safe to call any number of times.
type Feed interface {
	SubscribeMessages(ctx context.Context, projectID string) (*Subscription, error)
	SubscribeTimeEntries(ctx context.Context, projectID string) (*Subscription, error)
}

// Store bundles the entity stores and change feed for one mode.
type Store struct {
	Users       UserStore
	Projects    ProjectStore
	Messages    MessageStore
	TimeEntries TimeEntryStore
	Feed        Feed
}
