package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the newest maxPerRoom messages of each room in process.
type MemoryStore struct {
	mu         sync.RWMutex
	rooms      map[string][]Message
	maxPerRoom int
}

func NewMemoryStore(maxPerRoom int) *MemoryStore {
	if maxPerRoom <= 0 {
		maxPerRoom = 100
	}
	return &MemoryStore{rooms: make(map[string][]Message), maxPerRoom: maxPerRoom}
}

func (s *MemoryStore) Save(_ context.Context, msg Message) error {
	if msg.Room == "" {
		return ErrInvalidRoom
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.rooms[msg.Room], msg)
	if over := len(history) - s.maxPerRoom; over > 0 {
		history = append([]Message(nil), history[over:]...)
	}
	s.rooms[msg.Room] = history
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, room string, limit int) ([]Message, error) {
	if room == "" {
		return nil, ErrInvalidRoom
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.rooms[room]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]Message, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
