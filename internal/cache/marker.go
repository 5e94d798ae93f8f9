package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/swissmarley/secure-snap/pkg/cmap"
)

// DefaultJanitorInterval is the default interval between janitor passes
// that drop markers whose TTL elapsed without a read.
const DefaultJanitorInterval = 30 * time.Second

// marker is the cache entry for one message ID.
type marker struct {
	expiresAt time.Time
}

// MarkerStore is an in-process existence cache with per-entry TTL.
//
// Expiry is enforced lazily on access and eagerly by the janitor.
// Take is atomic per ID: the shard lock underneath guarantees that of
// any number of concurrent Take calls for the same ID, at most one
// observes the marker.
type MarkerStore struct {
	markers *cmap.Map[string, marker]

	janitorInterval time.Duration
	logger          *slog.Logger

	now func() time.Time
}

// Option configures the MarkerStore.
type Option func(*MarkerStore)

// WithJanitorInterval sets the interval between janitor passes.
func WithJanitorInterval(d time.Duration) Option {
	return func(s *MarkerStore) {
		if d > 0 {
			s.janitorInterval = d
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *MarkerStore) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new MarkerStore.
func New(logger *slog.Logger, opts ...Option) *MarkerStore {
	if logger == nil {
		logger = slog.Default()
	}

	s := &MarkerStore{
		markers:         cmap.New[string, marker](),
		janitorInterval: DefaultJanitorInterval,
		logger:          logger,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Set stores a marker for the ID, expiring after the given TTL. An
// existing marker is overwritten, TTL included.
func (s *MarkerStore) Set(_ context.Context, id string, ttl time.Duration) error {
	s.markers.Set(id, marker{expiresAt: s.now().Add(ttl)})
	return nil
}

// Take atomically removes the marker and reports whether a live marker
// was present. A marker past its TTL counts as absent even if the
// janitor has not dropped it yet.
func (s *MarkerStore) Take(_ context.Context, id string) (bool, error) {
	now := s.now()
	if _, ok := s.markers.PopIf(id, func(m marker) bool {
		return now.Before(m.expiresAt)
	}); ok {
		return true, nil
	}
	// A dead marker that lost the PopIf predicate stays behind for the
	// janitor; dropping it here would race a concurrent Set.
	return false, nil
}

// Delete removes the marker if present.
func (s *MarkerStore) Delete(_ context.Context, id string) error {
	s.markers.Delete(id)
	return nil
}

// Len returns the number of markers currently held, expired entries
// the janitor has not visited included.
func (s *MarkerStore) Len() int {
	return s.markers.Count()
}

// Run drops expired markers on a fixed interval until the context is
// canceled. The lazy check in Take keeps the cache correct without the
// janitor; running it bounds memory held by unread expired messages.
func (s *MarkerStore) Run(ctx context.Context) {
	ticker := time.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if dropped := s.dropExpired(); dropped > 0 {
				s.logger.Debug("janitor dropped expired markers", "count", dropped)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *MarkerStore) dropExpired() int {
	now := s.now()

	var stale []string
	s.markers.Range(func(id string, m marker) bool {
		if !now.Before(m.expiresAt) {
			stale = append(stale, id)
		}
		return true
	})

	dropped := 0
	for _, id := range stale {
		// Re-check under the shard lock; the marker may have been
		// replaced by a fresh Set since the scan.
		if _, ok := s.markers.PopIf(id, func(m marker) bool {
			return !now.Before(m.expiresAt)
		}); ok {
			dropped++
		}
	}
	return dropped
}
