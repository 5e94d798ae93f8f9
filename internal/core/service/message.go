// Package service provides domain services for SecureSnap.
//
// MessageService handles the full one-time message lifecycle: create,
// read-and-burn, and explicit delete.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/swissmarley/secure-snap/internal/core/domain"
	"github.com/swissmarley/secure-snap/internal/telemetry/metric"
)

// MessageRepository defines the durable record store contract.
type MessageRepository interface {
	// Insert stores a new message record. Returns ErrMessageConflict if
	// the ID already exists.
	Insert(ctx context.Context, msg *domain.Message) error

	// Get retrieves a message record by ID.
	// Returns ErrMessageNotFound if the record does not exist.
	Get(ctx context.Context, id string) (*domain.Message, error)

	// Delete removes a message record by ID.
	// Returns ErrMessageNotFound if the record does not exist.
	Delete(ctx context.Context, id string) error

	// ScanExpired iterates over the IDs of records whose expiry has
	// passed at the given instant. Callback returns false to stop.
	ScanExpired(ctx context.Context, now time.Time, fn func(id string) bool) error
}

// MarkerCache defines the existence cache contract.
//
// A marker's absence is authoritative for "not available for read",
// independent of whether the durable record still exists.
type MarkerCache interface {
	// Set stores an existence marker for the ID with the given TTL.
	Set(ctx context.Context, id string, ttl time.Duration) error

	// Take atomically removes the marker and reports whether it was
	// present. For concurrent Take calls on the same ID, at most one
	// observes true. This is the store-level primitive the at-most-once
	// read guarantee rests on.
	Take(ctx context.Context, id string) (bool, error)

	// Delete removes the marker if present. No error when absent.
	Delete(ctx context.Context, id string) error
}

// MessageService coordinates the message lifecycle across the record
// store and the existence cache.
type MessageService struct {
	repo      MessageRepository
	cache     MarkerCache
	maxExpiry time.Duration
	logger    *slog.Logger
	metrics   *metric.Registry
}

// Option configures the MessageService.
type Option func(*MessageService)

// WithMaxExpiry sets the maximum allowed client expiry.
func WithMaxExpiry(max time.Duration) Option {
	return func(s *MessageService) {
		if max > 0 {
			s.maxExpiry = max
		}
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(s *MessageService) {
		s.metrics = m
	}
}

// NewMessageService creates a new MessageService.
func NewMessageService(repo MessageRepository, cache MarkerCache, logger *slog.Logger, opts ...Option) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &MessageService{
		repo:      repo,
		cache:     cache,
		maxExpiry: domain.DefaultMaxExpiry,
		logger:    logger,
		metrics:   metric.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ============================================================================
// Create Operation
// ============================================================================

// CreateMessageRequest contains parameters for message creation.
// All blobs are opaque; the server stores them as received.
type CreateMessageRequest struct {
	Ciphertext    []byte
	Salt          []byte
	IV            []byte
	ExpirySeconds int64
}

// CreateMessageResponse contains the result of message creation.
type CreateMessageResponse struct {
	ID        string
	ExpiresAt int64 // Unix milliseconds
}

// Create validates the request, persists the record and sets the
// existence marker with TTL equal to the declared expiry.
//
// The two writes are not atomic across stores: if the marker set fails
// after the record insert succeeded, the record is orphaned and
// unreadable until the sweep reclaims it at its expiry. Creation may be
// non-atomic but never fails to expire.
func (s *MessageService) Create(ctx context.Context, req *CreateMessageRequest) (*CreateMessageResponse, error) {
	// 1. Build and validate the record
	msg, err := domain.NewMessage(req.Ciphertext, req.Salt, req.IV, req.ExpirySeconds)
	if err != nil {
		return nil, err
	}
	if err := msg.Validate(s.maxExpiry); err != nil {
		return nil, err
	}

	// 2. Insert the durable record first
	if err := s.repo.Insert(ctx, msg); err != nil {
		if domain.IsDomainError(err, "") {
			return nil, err
		}
		return nil, domain.ErrStorageError.WithCause(err)
	}

	// 3. Set the existence marker with TTL = declared expiry
	if err := s.cache.Set(ctx, msg.ID, msg.TTL()); err != nil {
		// Orphaned record; the sweep reclaims it at expires_at.
		s.logger.Warn("marker set failed after record insert; record orphaned until sweep",
			"id", msg.ID, "error", err)
		s.metrics.Divergence.Inc()
		return nil, domain.ErrStorageError.WithCause(err)
	}

	s.metrics.MessagesCreated.Inc()
	s.logger.Info("message created",
		"id", msg.ID,
		"expiry_seconds", msg.ExpirySeconds,
		"payload_bytes", len(msg.Ciphertext))

	return &CreateMessageResponse{
		ID:        msg.ID,
		ExpiresAt: msg.ExpiresAt(),
	}, nil
}

// ============================================================================
// Read Operation (burn-after-read)
// ============================================================================

// ReadMessageResponse contains the opaque blobs of a consumed message.
type ReadMessageResponse struct {
	Ciphertext []byte
	Salt       []byte
	IV         []byte
}

// Read consumes a message: for a given ID, at most one Read call across
// all concurrent callers returns the payload; all others observe
// not-found. Consuming means the marker is atomically taken first, then
// the durable record is fetched and deleted.
//
// Read is never retried internally: once the marker is taken the
// operation counts as consumed even if a later step fails.
func (s *MessageService) Read(ctx context.Context, id string) (*ReadMessageResponse, error) {
	// 1. Cheap rejection for malformed IDs, indistinguishable from a
	// consumed or expired message.
	normalized := domain.NormalizeMessageID(id)
	if normalized == "" {
		return nil, domain.ErrMessageNotFound
	}

	// 2. Atomically claim the existence marker. Losing racers and
	// expired/consumed IDs stop here without touching the record store.
	taken, err := s.cache.Take(ctx, normalized)
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if !taken {
		return nil, domain.ErrMessageNotFound
	}

	// 3. Fetch the durable record
	msg, err := s.repo.Get(ctx, normalized)
	if err != nil {
		if domain.IsDomainError(err, "SS-MSG-4040") {
			// Marker existed without a record. The stray marker is
			// already cleared by the Take above.
			s.logger.Warn("marker present without durable record",
				"id", normalized, "error", domain.ErrMarkerDivergence)
			s.metrics.Divergence.Inc()
			return nil, domain.ErrMessageNotFound
		}
		// The marker is gone but the record was not served; the sweep
		// reclaims the record at its expiry.
		s.logger.Error("record fetch failed after marker take", "id", normalized, "error", err)
		return nil, domain.ErrStorageError.WithCause(err)
	}

	// 4. Marker TTL and durable expiry can drift; the declared expiry
	// always wins.
	if msg.IsExpired(time.Now()) {
		if err := s.repo.Delete(ctx, normalized); err != nil && !domain.IsDomainError(err, "SS-MSG-4040") {
			s.logger.Warn("expired record delete failed; sweep will reclaim", "id", normalized, "error", err)
		}
		s.metrics.MessagesExpired.Inc()
		return nil, domain.ErrMessageNotFound
	}

	// 5. Burn. A delete failure here does not un-consume the message:
	// the marker is gone, so no later read can succeed, and the sweep
	// removes the leftover record at its expiry.
	if err := s.repo.Delete(ctx, normalized); err != nil && !domain.IsDomainError(err, "SS-MSG-4040") {
		s.logger.Error("record delete failed after read; sweep will reclaim", "id", normalized, "error", err)
	}

	s.metrics.MessagesConsumed.Inc()
	s.logger.Info("message consumed", "id", normalized)

	return &ReadMessageResponse{
		Ciphertext: msg.Ciphertext,
		Salt:       msg.Salt,
		IV:         msg.IV,
	}, nil
}

// ============================================================================
// Delete Operation
// ============================================================================

// Delete removes the record and its marker. Idempotent: deleting an
// already-gone ID reports not-found rather than erroring.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	normalized := domain.NormalizeMessageID(id)
	if normalized == "" {
		return domain.ErrMessageNotFound
	}

	// Remove the marker first so the message can never be read while a
	// partially-failed delete is outstanding.
	taken, err := s.cache.Take(ctx, normalized)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	recordDeleted := true
	if err := s.repo.Delete(ctx, normalized); err != nil {
		if !domain.IsDomainError(err, "SS-MSG-4040") {
			// The marker is already gone, so the record is unreadable
			// and the sweep reclaims it.
			s.logger.Error("record delete failed; sweep will reclaim", "id", normalized, "error", err)
			return domain.ErrStorageError.WithCause(err)
		}
		recordDeleted = false
	}

	if !taken && !recordDeleted {
		return domain.ErrMessageNotFound
	}

	s.metrics.MessagesDeleted.Inc()
	s.logger.Info("message deleted", "id", normalized)
	return nil
}
