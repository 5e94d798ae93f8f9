// Package service provides domain services for SecureSnap.
//
// This file contains the reconciliation sweep: the periodic scan that
// reclaims durable records past their declared expiry.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/swissmarley/secure-snap/internal/core/domain"
	"github.com/swissmarley/secure-snap/internal/telemetry/metric"
)

// Sweep defaults.
const (
	DefaultSweepInterval = time.Minute
	DefaultSweepTimeout  = 30 * time.Second
)

// Sweeper periodically reclaims durable records whose expiry has
// passed, together with any marker that still exists for them. It is
// the authoritative backstop for expiry enforcement when the marker
// cache's own TTL mechanism and the durable store fall out of sync.
type Sweeper struct {
	repo     MessageRepository
	cache    MarkerCache
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metric.Registry
}

// SweeperOption configures the Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepInterval sets the interval between sweep cycles. Shorter
// intervals tighten the worst-case overrun of a record's expiry at the
// cost of store load.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSweepTimeout bounds the duration of a single sweep cycle.
func WithSweepTimeout(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSweeperMetrics sets the metrics registry.
func WithSweeperMetrics(m *metric.Registry) SweeperOption {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// NewSweeper creates a new Sweeper.
func NewSweeper(repo MessageRepository, cache MarkerCache, logger *slog.Logger, opts ...SweeperOption) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sweeper{
		repo:     repo,
		cache:    cache,
		interval: DefaultSweepInterval,
		timeout:  DefaultSweepTimeout,
		logger:   logger,
		metrics:  metric.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes sweep cycles until the context is canceled. It runs on
// its own schedule, concurrently with request handling.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cycleCtx, cancel := context.WithTimeout(ctx, s.timeout)
			if _, err := s.Sweep(cycleCtx); err != nil {
				s.logger.Error("sweep cycle failed", "error", err)
			}
			cancel()

		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		}
	}
}

// Sweep performs one reconciliation pass: every durable record with
// expires_at <= now is deleted along with its marker, whether or not
// the marker already expired on its own. Returns the number of records
// reclaimed.
//
// Per-record failures are logged and skipped; the record is retried on
// the next cycle.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	started := time.Now()

	// Collect first so store iteration does not interleave with deletes.
	var expired []string
	err := s.repo.ScanExpired(ctx, started, func(id string) bool {
		expired = append(expired, id)
		return true
	})
	if err != nil {
		return 0, domain.ErrStorageError.WithCause(err)
	}

	reclaimed := 0
	for _, id := range expired {
		if err := s.repo.Delete(ctx, id); err != nil && !domain.IsDomainError(err, "SS-MSG-4040") {
			s.logger.Warn("sweep: record delete failed, will retry next cycle", "id", id, "error", err)
			continue
		}
		if err := s.cache.Delete(ctx, id); err != nil {
			// The record is gone, so the stray marker can only produce
			// a self-healing divergence on read.
			s.logger.Warn("sweep: marker delete failed", "id", id, "error", err)
		}
		reclaimed++
	}

	s.metrics.MessagesSwept.Add(float64(reclaimed))
	s.metrics.SweepDuration.Observe(time.Since(started).Seconds())

	if reclaimed > 0 {
		s.logger.Info("sweep completed",
			"reclaimed", reclaimed,
			"scanned", len(expired),
			"elapsed", time.Since(started))
	}

	return reclaimed, nil
}
