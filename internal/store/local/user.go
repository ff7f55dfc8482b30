package local

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"
)

// userStore persists users in the local collection.
type userStore struct {
	s *Store
}

// Create appends a new user.
func (u *userStore) Create(ctx context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	users, err := readList[*models.User](ctx, u.s, keyUsers)
	if err != nil {
		return err
	}

	for _, existing := range users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("user with email %s already exists", user.Email)
		}
	}

	users = append(users, user)
	return writeList(ctx, u.s, keyUsers, users)
}

// GetByID retrieves a user by ID.
func (u *userStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	users, err := readList[*models.User](ctx, u.s, keyUsers)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

// GetByEmail retrieves a user by email, case-insensitively.
func (u *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	users, err := readList[*models.User](ctx, u.s, keyUsers)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

// List returns all users ordered by name.
func (u *userStore) List(ctx context.Context) ([]*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	users, err := readList[*models.User](ctx, u.s, keyUsers)
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// UpdatePushToken updates the push token for a user.
func (u *userStore) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	users, err := readList[*models.User](ctx, u.s, keyUsers)
	if err != nil {
		return err
	}

	for _, user := range users {
		if user.ID == userID {
			user.PushToken = pushToken
			return writeList(ctx, u.s, keyUsers, users)
		}
	}
	return store.ErrNotFound
}
