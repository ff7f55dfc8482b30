// Package postgres implements the store contract over the remote Postgres
// backend. Each entity store issues hand-written SQL through a shared
// connection pool; the change feed rides Postgres LISTEN/NOTIFY.
package postgres

import (
	"site-chat-backend/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates the remote store over the given connection pool.
func New(pool *pgxpool.Pool) *store.Store {
	return &store.Store{
		Users:       NewUserStore(pool),
		Projects:    NewProjectStore(pool),
		Messages:    NewMessageStore(pool),
		TimeEntries: NewTimeEntryStore(pool),
		Feed:        NewFeed(pool),
	}
}
