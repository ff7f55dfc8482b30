package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, userID, entryType string, at time.Time) *TimeEntry {
	return &TimeEntry{
		ID:        id,
		ProjectID: "p1",
		UserID:    userID,
		UserName:  "Worker " + userID,
		Type:      entryType,
		Timestamp: at,
	}
}

func TestBuildSessionsPairsCheckInAndOut(t *testing.T) {
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	sessions := BuildSessions([]*TimeEntry{
		entry("e1", "u1", EntryCheckIn, base),
		entry("e2", "u1", EntryCheckOut, base.Add(8*time.Hour)),
	})

	require.Len(t, sessions, 1)
	s := sessions[0]
	assert.Equal(t, "e1", s.ID)
	assert.Equal(t, SessionCompleted, s.Status)
	require.NotNil(t, s.CheckOut)
	assert.Equal(t, "e2", s.CheckOut.ID)
	assert.Equal(t, (8 * time.Hour).Milliseconds(), s.DurationMS)
}

func TestBuildSessionsLeavesUnmatchedCheckInActive(t *testing.T) {
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	sessions := BuildSessions([]*TimeEntry{
		entry("e1", "u1", EntryCheckIn, base),
	})

	require.Len(t, sessions, 1)
	assert.Equal(t, SessionActive, sessions[0].Status)
	assert.Nil(t, sessions[0].CheckOut)
}

func TestBuildSessionsSkipsOrphanCheckOut(t *testing.T) {
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	sessions := BuildSessions([]*TimeEntry{
		entry("e1", "u1", EntryCheckOut, base),
	})

	assert.Empty(t, sessions)
}

func TestBuildSessionsDoubleCheckInClosesNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	sessions := BuildSessions([]*TimeEntry{
		entry("e1", "u1", EntryCheckIn, base),
		entry("e2", "u1", EntryCheckIn, base.Add(time.Hour)),
		entry("e3", "u1", EntryCheckOut, base.Add(2*time.Hour)),
	})

	require.Len(t, sessions, 2)
	assert.Equal(t, SessionActive, sessions[0].Status)
	assert.Equal(t, SessionCompleted, sessions[1].Status)
	assert.Equal(t, "e2", sessions[1].ID)
}

func TestBuildSessionsSeparatesUsers(t *testing.T) {
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	sessions := BuildSessions([]*TimeEntry{
		entry("e1", "u1", EntryCheckIn, base),
		entry("e2", "u2", EntryCheckIn, base.Add(time.Minute)),
		entry("e3", "u2", EntryCheckOut, base.Add(4*time.Hour)),
	})

	require.Len(t, sessions, 2)
	assert.Equal(t, SessionActive, sessions[0].Status)
	assert.Equal(t, "u1", sessions[0].UserID)
	assert.Equal(t, SessionCompleted, sessions[1].Status)
	assert.Equal(t, "u2", sessions[1].UserID)
}

func TestSanitizedDropsPasswordHash(t *testing.T) {
	u := &User{ID: "u1", Email: "a@b.c", PasswordHash: "secret"}

	clean := u.Sanitized()

	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "secret", u.PasswordHash)
	assert.Equal(t, "u1", clean.ID)
}

func TestHasMember(t *testing.T) {
	p := &Project{Members: []string{"u1", "u2"}}

	assert.True(t, p.HasMember("u1"))
	assert.False(t, p.HasMember("u3"))
}
