package memory

import (
	"context"
	"time"

	"github.com/swissmarley/secure-snap/internal/core/domain"
	"github.com/swissmarley/secure-snap/pkg/cmap"
)

// Store is an in-memory record store.
type Store struct {
	messages *cmap.Map[string, *domain.Message]
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		messages: cmap.New[string, *domain.Message](),
	}
}

// Insert stores a new message record.
func (s *Store) Insert(_ context.Context, msg *domain.Message) error {
	if !s.messages.SetIfAbsent(msg.ID, msg.Clone()) {
		return domain.ErrMessageConflict
	}
	return nil
}

// Get retrieves a message record by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Message, error) {
	msg, ok := s.messages.Get(id)
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	// Clone so callers cannot mutate the stored record.
	return msg.Clone(), nil
}

// Delete removes a message record by ID.
func (s *Store) Delete(_ context.Context, id string) error {
	if _, ok := s.messages.Pop(id); !ok {
		return domain.ErrMessageNotFound
	}
	return nil
}

// ScanExpired iterates over the IDs of records whose expiry has passed
// at the given instant.
func (s *Store) ScanExpired(_ context.Context, now time.Time, fn func(id string) bool) error {
	s.messages.Range(func(id string, msg *domain.Message) bool {
		if msg.IsExpired(now) {
			return fn(id)
		}
		return true
	})
	return nil
}

// Count returns the number of records currently stored.
func (s *Store) Count(_ context.Context) (int, error) {
	return s.messages.Count(), nil
}

// Close releases the store. Present for symmetry with the durable
// store; the data is simply dropped.
func (s *Store) Close() error {
	s.messages.Clear()
	return nil
}
