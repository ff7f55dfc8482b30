package services

import (
	"context"
	"fmt"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"
)

// UserService handles user-related business logic
type UserService struct {
	users store.UserStore
}

// NewUserService creates a new user service
func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

// List returns all users without credential material
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	sanitized := make([]*models.User, len(users))
	for i, user := range users {
		sanitized[i] = user.Sanitized()
	}
	return sanitized, nil
}

// GetByID returns a user without credential material
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// UpdatePushToken registers or clears the device push token for a user
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return s.users.UpdatePushToken(ctx, userID, pushToken)
}
