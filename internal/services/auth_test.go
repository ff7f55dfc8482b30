package services

import (
	"context"
	"testing"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"
	"site-chat-backend/internal/store/kv"
	"site-chat-backend/internal/store/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	kvStore, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kvStore.Close() })
	return local.New(kvStore)
}

func TestRegisterAndLogin(t *testing.T) {
	st := openTestStore(t)
	svc := NewAuthService(st.Users, "test-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, "anna@example.com", "Anna", "hunter2", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)

	token, loggedIn, err := svc.Login(ctx, "anna@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)
}

func TestRegisterAdminRole(t *testing.T) {
	st := openTestStore(t)
	svc := NewAuthService(st.Users, "test-secret")

	user, err := svc.Register(context.Background(), "boss@example.com", "Boss", "hunter2", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestRegisterUnknownRoleFallsBackToUser(t *testing.T) {
	st := openTestStore(t)
	svc := NewAuthService(st.Users, "test-secret")

	user, err := svc.Register(context.Background(), "x@example.com", "X", "hunter2", "superuser")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	st := openTestStore(t)
	svc := NewAuthService(st.Users, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, "anna@example.com", "Anna", "hunter2", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "anna@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	st := openTestStore(t)
	svc := NewAuthService(st.Users, "test-secret")

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestJWTRoundTrip(t *testing.T) {
	st := openTestStore(t)
	svc := NewAuthService(st.Users, "test-secret")

	token, err := svc.GenerateJWT("u1", models.RoleAdmin)
	require.NoError(t, err)

	userID, role, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	st := openTestStore(t)
	svc := NewAuthService(st.Users, "test-secret")
	other := NewAuthService(st.Users, "other-secret")

	token, err := svc.GenerateJWT("u1", models.RoleUser)
	require.NoError(t, err)

	_, _, err = other.ValidateJWT(token)
	assert.Error(t, err)
}
