package services

import (
	"context"
	"encoding/json"
	"sync"

	"site-chat-backend/internal/models"
	"site-chat-backend/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSEvent is a realtime event pushed to connected clients.
type WSEvent struct {
	Type      string            `json:"type"`
	Message   *models.Message   `json:"message,omitempty"`
	TimeEntry *models.TimeEntry `json:"time_entry,omitempty"`
}

// Hub fans change-feed events out to the websocket connections watching
// each project. The underlying feed subscription is opened when the first
// connection joins a project and closed when the last one leaves.
type Hub struct {
	mu    sync.Mutex
	feed  store.Feed
	rooms map[string]*room
}

type room struct {
	conns   map[*websocket.Conn]bool
	msgSub  *store.Subscription
	timeSub *store.Subscription
}

// NewHub creates a new hub over the given change feed.
func NewHub(feed store.Feed) *Hub {
	return &Hub{
		feed:  feed,
		rooms: make(map[string]*room),
	}
}

// Join registers a connection as a watcher of the project.
func (h *Hub) Join(ctx context.Context, projectID string, conn *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[projectID]
	if !ok {
		msgSub, err := h.feed.SubscribeMessages(ctx, projectID)
		if err != nil {
			return err
		}
		timeSub, err := h.feed.SubscribeTimeEntries(ctx, projectID)
		if err != nil {
			msgSub.Close()
			return err
		}

		r = &room{
			conns:   make(map[*websocket.Conn]bool),
			msgSub:  msgSub,
			timeSub: timeSub,
		}
		h.rooms[projectID] = r

		go h.pump(projectID, msgSub)
		go h.pump(projectID, timeSub)
	}

	r.conns[conn] = true
	log.Info().Str("project_id", projectID).Msg("WebSocket connection joined project")
	return nil
}

// Leave removes a connection from the project. When the last connection
// leaves, the feed subscriptions are closed; closing them again later is
// harmless.
func (h *Hub) Leave(projectID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[projectID]
	if !ok {
		return
	}

	if r.conns[conn] {
		delete(r.conns, conn)
		conn.Close()
		log.Info().Str("project_id", projectID).Msg("WebSocket connection left project")
	}

	if len(r.conns) == 0 {
		r.msgSub.Close()
		r.timeSub.Close()
		delete(h.rooms, projectID)
	}
}

// pump forwards feed events to the project's connections until the
// subscription ends.
func (h *Hub) pump(projectID string, sub *store.Subscription) {
	for ev := range sub.Events() {
		switch {
		case ev.Message != nil:
			h.broadcast(projectID, WSEvent{Type: "message", Message: ev.Message})
		case ev.TimeEntry != nil:
			h.broadcast(projectID, WSEvent{Type: "time_entry", TimeEntry: ev.TimeEntry})
		}
	}
}

// broadcast sends an event to every connection in the project's room.
// Connections that fail to accept the write are dropped.
func (h *Hub) broadcast(projectID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal websocket event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[projectID]
	if !ok {
		return
	}

	for conn := range r.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).Str("project_id", projectID).Msg("Failed to send websocket event")
			delete(r.conns, conn)
			conn.Close()
		}
	}

	if len(r.conns) == 0 {
		r.msgSub.Close()
		r.timeSub.Close()
		delete(h.rooms, projectID)
	}
}
