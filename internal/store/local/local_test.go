package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"
	"site-chat-backend/internal/store/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	kvStore, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kvStore.Close() })
	return New(kvStore)
}

func TestUserCreateAndGet(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	user := &models.User{ID: "u1", Email: "anna@example.com", Name: "Anna", Role: models.RoleUser}
	require.NoError(t, st.Users.Create(ctx, user))

	got, err := st.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", got.Email)

	got, err = st.Users.GetByEmail(ctx, "ANNA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Users.Create(ctx, &models.User{ID: "u1", Email: "anna@example.com"}))
	err := st.Users.Create(ctx, &models.User{ID: "u2", Email: "Anna@Example.com"})
	assert.Error(t, err)
}

func TestUserListSortedByName(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Users.Create(ctx, &models.User{ID: "u1", Email: "b@x.com", Name: "Bert"}))
	require.NoError(t, st.Users.Create(ctx, &models.User{ID: "u2", Email: "a@x.com", Name: "Anna"}))

	users, err := st.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Anna", users[0].Name)
	assert.Equal(t, "Bert", users[1].Name)
}

func TestUserUpdatePushToken(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Users.Create(ctx, &models.User{ID: "u1", Email: "a@x.com"}))

	token := "device-token"
	require.NoError(t, st.Users.UpdatePushToken(ctx, "u1", &token))

	got, err := st.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.PushToken)
	assert.Equal(t, "device-token", *got.PushToken)
}

func TestUserGetMissing(t *testing.T) {
	st := openTestStore(t)

	_, err := st.Users.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProjectCreateAndListByMember(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	older := &models.Project{ID: "p1", Name: "Harbor", Members: []string{"u1"}, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Project{ID: "p2", Name: "Bridge", Members: []string{"u1", "u2"}, CreatedAt: time.Now()}
	require.NoError(t, st.Projects.Create(ctx, older))
	require.NoError(t, st.Projects.Create(ctx, newer))

	projects, err := st.Projects.ListByMember(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "p2", projects[0].ID)

	projects, err = st.Projects.ListByMember(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p2", projects[0].ID)
}

func TestProjectAddMemberIdempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Projects.Create(ctx, &models.Project{ID: "p1", Members: []string{"u1"}}))
	require.NoError(t, st.Projects.AddMember(ctx, "p1", "u2"))
	require.NoError(t, st.Projects.AddMember(ctx, "p1", "u2"))

	got, err := st.Projects.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, got.Members)
}

func TestProjectUpdate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Projects.Create(ctx, &models.Project{ID: "p1", Name: "Old", Status: models.ProjectPlanning}))

	require.NoError(t, st.Projects.Update(ctx, &models.Project{ID: "p1", Name: "New", Status: models.ProjectInProgress}))

	got, err := st.Projects.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, models.ProjectInProgress, got.Status)
}

func TestMessageCreateAndList(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first := &models.Message{ID: "m1", ProjectID: "p1", Content: "first", CreatedAt: time.Now().Add(-time.Minute), ReadBy: []string{"u1"}}
	second := &models.Message{ID: "m2", ProjectID: "p1", Content: "second", CreatedAt: time.Now(), ReadBy: []string{"u1"}}
	other := &models.Message{ID: "m3", ProjectID: "p2", Content: "elsewhere", CreatedAt: time.Now()}
	require.NoError(t, st.Messages.Create(ctx, second))
	require.NoError(t, st.Messages.Create(ctx, first))
	require.NoError(t, st.Messages.Create(ctx, other))

	messages, err := st.Messages.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
}

func TestMessageMarkReadIdempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Messages.Create(ctx, &models.Message{ID: "m1", ProjectID: "p1", ReadBy: []string{"u1"}}))

	require.NoError(t, st.Messages.MarkRead(ctx, "m1", "u2"))
	require.NoError(t, st.Messages.MarkRead(ctx, "m1", "u2"))

	messages, err := st.Messages.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, []string{"u1", "u2"}, messages[0].ReadBy)
}

func TestMessageMarkReadMissing(t *testing.T) {
	st := openTestStore(t)

	err := st.Messages.MarkRead(context.Background(), "nope", "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func timeEntry(id, entryType string, at time.Time) *models.TimeEntry {
	return &models.TimeEntry{
		ID:        id,
		ProjectID: "p1",
		UserID:    "u1",
		UserName:  "Anna",
		Type:      entryType,
		Timestamp: at,
	}
}

func TestTimeEntryCheckInOpensSession(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.TimeEntries.Create(ctx, timeEntry("e1", models.EntryCheckIn, time.Now())))

	session, err := st.TimeEntries.ActiveSession(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "e1", session.ID)
	assert.Equal(t, models.SessionActive, session.Status)
}

func TestTimeEntryCheckOutCompletesSession(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-8 * time.Hour)

	require.NoError(t, st.TimeEntries.Create(ctx, timeEntry("e1", models.EntryCheckIn, base)))
	require.NoError(t, st.TimeEntries.Create(ctx, timeEntry("e2", models.EntryCheckOut, base.Add(8*time.Hour))))

	_, err := st.TimeEntries.ActiveSession(ctx, "p1", "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	sessions, err := st.TimeEntries.ListSessions(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionCompleted, sessions[0].Status)
	assert.Equal(t, (8 * time.Hour).Milliseconds(), sessions[0].DurationMS)
}

func TestTimeEntryOrphanCheckOutFails(t *testing.T) {
	st := openTestStore(t)

	err := st.TimeEntries.Create(context.Background(), timeEntry("e1", models.EntryCheckOut, time.Now()))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTimeEntryListByProjectFlattensLog(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-4 * time.Hour)

	require.NoError(t, st.TimeEntries.Create(ctx, timeEntry("e1", models.EntryCheckIn, base)))
	require.NoError(t, st.TimeEntries.Create(ctx, timeEntry("e2", models.EntryCheckOut, base.Add(time.Hour))))
	require.NoError(t, st.TimeEntries.Create(ctx, timeEntry("e3", models.EntryCheckIn, base.Add(2*time.Hour))))

	entries, err := st.TimeEntries.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "e3", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)
	assert.Equal(t, "e1", entries[2].ID)
}

func TestPersistenceAcrossHandles(t *testing.T) {
	kvStore, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kvStore.Close() })
	ctx := context.Background()

	first := New(kvStore)
	require.NoError(t, first.Users.Create(ctx, &models.User{ID: "u1", Email: "a@x.com"}))

	second := New(kvStore)
	got, err := second.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestFeedSubscriptionsAreNoop(t *testing.T) {
	st := openTestStore(t)

	sub, err := st.Feed.SubscribeMessages(context.Background(), "p1")
	require.NoError(t, err)
	sub.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok)

	var closeErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				closeErr = errors.New("close panicked")
			}
		}()
		sub.Close()
	}()
	assert.NoError(t, closeErr)
}
