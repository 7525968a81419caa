// Package store persists chat messages.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidRoom = errors.New("room is required")

// Message is one relayed chat message with both renderings.
type Message struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Morse     string    `json:"morse"`
	Encoding  string    `json:"encoding"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is implemented by every message backend.
type Store interface {
	Save(ctx context.Context, msg Message) error
	// Recent returns up to limit of the newest messages in room, oldest first.
	Recent(ctx context.Context, room string, limit int) ([]Message, error)
	Ping(ctx context.Context) error
}
