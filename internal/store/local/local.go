// Package local implements the store contract over the embedded key-value
// store. Each entity collection lives as one JSON-serialized list under a
// fixed key; mutations rewrite the whole list. A single mutex serializes
// every read-modify-write so two callers cannot clobber each other's
// full-list write.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"site-chat-backend/internal/store"
	"site-chat-backend/internal/store/kv"
)

// Collection keys in the key-value store.
const (
	keyUsers    = "users"
	keyProjects = "projects"
	keyMessages = "messages"
	keySessions = "timeSessions"
)

// Store is the local-mode persistence backend.
type Store struct {
	kv *kv.Store
	mu sync.Mutex
}

// New creates a local store over the given key-value store.
func New(kvStore *kv.Store) *store.Store {
	s := &Store{kv: kvStore}
	return &store.Store{
		Users:       &userStore{s},
		Projects:    &projectStore{s},
		Messages:    &messageStore{s},
		TimeEntries: &timeEntryStore{s},
		Feed:        &feed{},
	}
}

// readList loads and decodes the collection under key. An absent key is an
// empty collection. Decoding produces fresh copies, so callers own what
// they get.
func readList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode %q collection: %w", key, err)
	}
	return list, nil
}

// writeList encodes and stores the whole collection under key.
func writeList[T any](ctx context.Context, s *Store, key string, list []T) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode %q collection: %w", key, err)
	}
	return s.kv.Set(ctx, key, data)
}

// feed is the local-mode change feed. Local writes from other processes
// cannot be observed, so subscriptions never deliver events.
type feed struct{}

func (f *feed) SubscribeMessages(ctx context.Context, projectID string) (*store.Subscription, error) {
	return store.NewNoopSubscription(), nil
}

func (f *feed) SubscribeTimeEntries(ctx context.Context, projectID string) (*store.Subscription, error) {
	return store.NewNoopSubscription(), nil
}
