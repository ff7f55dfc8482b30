package models

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Project statuses.
const (
	ProjectPlanning   = "planning"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
	ProjectSuspended  = "suspended"
)

// Message types.
const (
	MessageText  = "text"
	MessageImage = "image"
	MessageVideo = "video"
	MessageFile  = "file"
)

// Time entry types.
const (
	EntryCheckIn  = "check-in"
	EntryCheckOut = "check-out"
)

// Time session statuses.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// User represents a registered user. Users are immutable after creation
// except for the push token.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	PushToken    *string   `json:"push_token,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Sanitized returns a copy of the user without credential material.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}

// GeoPoint is a project site coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Project represents a construction site. The creator is always a member;
// the member list only grows.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Address     string     `json:"address,omitempty"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Location    *GeoPoint  `json:"location,omitempty"`
	CreatedBy   string     `json:"created_by"`
	Members     []string   `json:"members"`
	CreatedAt   time.Time  `json:"created_at"`
}

// HasMember reports whether userID is a member of the project.
func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Message represents a chat message in a project. Immutable once created
// except for ReadBy growth. SenderName is a snapshot of the sender's name
// at send time. Content holds the text body, or the filename for media
// messages.
type Message struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	MediaURL   *string   `json:"media_url,omitempty"`
	MediaSize  *int64    `json:"media_size,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ReadBy     []string  `json:"read_by"`
}

// Location is a GPS fix recorded with a time entry.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// TimeEntry is one append-only check-in or check-out record.
type TimeEntry struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Location  *Location `json:"location,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// TimeSession pairs a check-in entry with an optional check-out entry.
// The session ID is the check-in entry ID, so sessions stored directly and
// sessions derived from the entry log agree.
type TimeSession struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id"`
	UserID     string     `json:"user_id"`
	UserName   string     `json:"user_name"`
	CheckIn    TimeEntry  `json:"check_in"`
	CheckOut   *TimeEntry `json:"check_out,omitempty"`
	DurationMS int64      `json:"duration_ms,omitempty"`
	Status     string     `json:"status"`
}

// Complete records the check-out for a session and computes its duration.
func (s *TimeSession) Complete(out TimeEntry) {
	s.CheckOut = &out
	s.DurationMS = out.Timestamp.Sub(s.CheckIn.Timestamp).Milliseconds()
	s.Status = SessionCompleted
}

// BuildSessions derives sessions from an entry log sorted by timestamp
// ascending. A check-in opens a session for its (user, project) pair; a
// check-out completes the most recent open session for that pair. A second
// check-in without an intervening check-out opens a second session and
// leaves the first active, mirroring what concurrent check-ins produce.
// An orphan check-out is skipped.
func BuildSessions(entries []*TimeEntry) []*TimeSession {
	var sessions []*TimeSession
	open := make(map[string][]*TimeSession)

	for _, e := range entries {
		key := e.UserID + "\x00" + e.ProjectID
		switch e.Type {
		case EntryCheckIn:
			s := &TimeSession{
				ID:        e.ID,
				ProjectID: e.ProjectID,
				UserID:    e.UserID,
				UserName:  e.UserName,
				CheckIn:   *e,
				Status:    SessionActive,
			}
			sessions = append(sessions, s)
			open[key] = append(open[key], s)
		case EntryCheckOut:
			stack := open[key]
			if len(stack) == 0 {
				continue
			}
			s := stack[len(stack)-1]
			open[key] = stack[:len(stack)-1]
			s.Complete(*e)
		}
	}

	return sessions
}
