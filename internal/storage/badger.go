package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swissmarley/secure-snap/internal/core/domain"
)

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// Dir is the storage directory.
	Dir string

	// GCInterval is the interval between automatic value log GC runs.
	// Default: 10m
	GCInterval time.Duration

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 32MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 256MB
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	// Default: true; a lost record means a permanently lost message.
	SyncWrites bool
}

// DefaultBadgerConfig returns the default Badger configuration for the
// given directory.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:              dir,
		GCInterval:       10 * time.Minute,
		GCThreshold:      0.5,
		CacheSize:        32 << 20,
		ValueLogFileSize: 256 << 20,
		SyncWrites:       true,
	}
}

// BadgerStore is the durable record store backed by Badger v3.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger

	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsRecordCount  prometheus.Gauge

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerStore opens the Badger database and starts the value log GC
// loop.
func NewBadgerStore(cfg BadgerConfig, logger *slog.Logger) (*BadgerStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCThreshold <= 0 {
		cfg.GCThreshold = 0.5
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go s.gcLoop()

	logger.Info("badger store opened",
		"dir", cfg.Dir,
		"sync_writes", cfg.SyncWrites,
		"gc_interval", cfg.GCInterval)

	return s, nil
}

// Insert stores a new message record.
func (s *BadgerStore) Insert(_ context.Context, msg *domain.Message) error {
	data, err := encodeRecord(msg)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	key := recordKey(msg.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return domain.ErrMessageConflict
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if domain.IsDomainError(err, "") {
			return err
		}
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Get retrieves a message record by ID.
func (s *BadgerStore) Get(_ context.Context, id string) (*domain.Message, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, domain.ErrStorageError.WithCause(err)
	}

	msg, err := decodeRecord(data)
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	return msg, nil
}

// Delete removes a message record by ID.
func (s *BadgerStore) Delete(_ context.Context, id string) error {
	key := recordKey(id)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrMessageNotFound
		}
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// ScanExpired iterates over the IDs of records whose expiry has passed
// at the given instant.
func (s *BadgerStore) ScanExpired(ctx context.Context, now time.Time, fn func(id string) bool) error {
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			msg, err := decodeRecord(data)
			if err != nil {
				// An undecodable record can never be served; surface it
				// to the sweep for reclamation.
				s.logger.Warn("skipping corrupt record", "key", string(item.Key()))
				if !fn(idFromKey(item.Key())) {
					return nil
				}
				continue
			}
			if msg.IsExpired(now) {
				if !fn(msg.ID) {
					return nil
				}
			}
		}
		return nil
	})
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Count returns the number of records currently stored.
func (s *BadgerStore) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, domain.ErrStorageError.WithCause(err)
	}
	return count, nil
}

// Close stops the GC loop and closes the database.
func (s *BadgerStore) Close() error {
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}

	s.logger.Info("badger store closed")
	return nil
}

// RegisterMetrics registers store gauges with the given Prometheus
// registerer and starts the updater. Call at most once.
func (s *BadgerStore) RegisterMetrics(registry prometheus.Registerer) *BadgerStore {
	s.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "securesnap",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})
	s.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "securesnap",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})
	s.metricsRecordCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "securesnap",
		Subsystem: "badger",
		Name:      "records",
		Help:      "Number of message records currently stored",
	})

	registry.MustRegister(
		s.metricsLSMSize,
		s.metricsValueLogSize,
		s.metricsRecordCount,
	)

	go s.metricsUpdateLoop()

	return s
}

func (s *BadgerStore) metricsUpdateLoop() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lsm, vlog := s.db.Size()
			s.metricsLSMSize.Set(float64(lsm))
			s.metricsValueLogSize.Set(float64(vlog))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if count, err := s.Count(ctx); err == nil {
				s.metricsRecordCount.Set(float64(count))
			}
			cancel()

		case <-s.stopCh:
			return
		}
	}
}

// gcLoop runs periodic value log garbage collection. Burned records
// leave stale value log entries behind; GC reclaims the space.
func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for {
				err := s.db.RunValueLogGC(s.cfg.GCThreshold)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						s.logger.Error("value log gc failed", "error", err)
					}
					break
				}
			}

		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
