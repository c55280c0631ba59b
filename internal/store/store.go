package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that the underlying storage could not be reached
// or written. Callers treat it as a degradation of persistence, not as a
// reason to drop the connection.
var ErrUnavailable = errors.New("history store unavailable")

// Message is a persisted chat message. For file messages Body holds the
// base64-encoded content and Filename is non-empty.
type Message struct {
	ID        int64
	Room      string
	Sender    string
	Body      string
	Filename  string
	CreatedAt time.Time
}

// IsFile reports whether the record carries a file payload.
func (m *Message) IsFile() bool {
	return m.Filename != ""
}

// HistoryStore is the per-room append-only message log.
type HistoryStore interface {
	// Append persists a message and returns its assigned ID.
	Append(ctx context.Context, msg *Message) (int64, error)

	// History returns the most recent messages of a room, oldest first.
	// Limit bounds the number of returned rows.
	History(ctx context.Context, room string, limit int) ([]*Message, error)

	// Close releases the underlying database connection.
	Close() error
}
