package services

import (
	"context"
	"fmt"
	"time"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/notify"
	"site-chat-backend/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// messagePreviewLen caps the notification body length.
const messagePreviewLen = 120

// MessageService handles message-related business logic
type MessageService struct {
	messages store.MessageStore
	projects store.ProjectStore
	users    store.UserStore
	notifier *notify.Dispatcher
}

// NewMessageService creates a new message service. notifier may be nil
// when push delivery is not configured.
func NewMessageService(
	messages store.MessageStore,
	projects store.ProjectStore,
	users store.UserStore,
	notifier *notify.Dispatcher,
) *MessageService {
	return &MessageService{
		messages: messages,
		projects: projects,
		users:    users,
		notifier: notifier,
	}
}

// CreateMessageRequest represents a request to send a message
type CreateMessageRequest struct {
	Content   string  `json:"content"`
	Type      string  `json:"type"`
	MediaURL  *string `json:"media_url,omitempty"`
	MediaSize *int64  `json:"media_size,omitempty"`
}

// Create sends a message to a project. The sender is always in the read
// set at creation. The read receipt is a secondary write: if it fails the
// message stands and the failure is only logged.
func (s *MessageService) Create(ctx context.Context, projectID string, sender *models.User, req CreateMessageRequest) (*models.Message, error) {
	switch req.Type {
	case "":
		req.Type = models.MessageText
	case models.MessageText, models.MessageImage, models.MessageVideo, models.MessageFile:
	default:
		return nil, fmt.Errorf("unknown message type %q", req.Type)
	}
	if req.Content == "" {
		return nil, fmt.Errorf("message content is required")
	}

	message := &models.Message{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Content:    req.Content,
		Type:       req.Type,
		MediaURL:   req.MediaURL,
		MediaSize:  req.MediaSize,
		CreatedAt:  time.Now(),
		ReadBy:     []string{sender.ID},
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if err := s.messages.MarkRead(ctx, message.ID, sender.ID); err != nil {
		log.Error().
			Err(err).
			Str("message_id", message.ID).
			Str("user_id", sender.ID).
			Msg("Failed to record sender read receipt")
	}

	s.pushToMembers(ctx, message)

	return message, nil
}

// ListByProject returns the project's messages oldest first
func (s *MessageService) ListByProject(ctx context.Context, projectID string) ([]*models.Message, error) {
	return s.messages.ListByProject(ctx, projectID)
}

// MarkRead records that the user has seen the message
func (s *MessageService) MarkRead(ctx context.Context, messageID, userID string) error {
	return s.messages.MarkRead(ctx, messageID, userID)
}

// pushToMembers queues a push notification for every project member with
// a registered device token, except the sender. Failures never affect the
// send path.
func (s *MessageService) pushToMembers(ctx context.Context, message *models.Message) {
	if s.notifier == nil {
		return
	}

	project, err := s.projects.GetByID(ctx, message.ProjectID)
	if err != nil {
		log.Error().Err(err).Str("project_id", message.ProjectID).Msg("Failed to load project for notification")
		return
	}

	preview := message.Content
	if len(preview) > messagePreviewLen {
		preview = preview[:messagePreviewLen]
	}

	for _, memberID := range project.Members {
		if memberID == message.SenderID {
			continue
		}
		member, err := s.users.GetByID(ctx, memberID)
		if err != nil || member.PushToken == nil {
			continue
		}
		s.notifier.Push(notify.Request{
			Type:        notify.TypeShowNotification,
			DeviceToken: *member.PushToken,
			Payload: notify.Payload{
				Title: fmt.Sprintf("%s in %s", message.SenderName, project.Name),
				Body:  preview,
				Tag:   "message-" + message.ID,
				Data: map[string]interface{}{
					"type":       "message",
					"project_id": message.ProjectID,
				},
			},
		})
	}
}
