// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for securesnap-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Message MessageSection `koanf:"message"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// CORSOrigins lists allowed cross-origin request origins.
	// "*" allows any origin.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRPS is the per-client sustained request rate.
	// Zero disables rate limiting.
	RateLimitRPS float64 `koanf:"rate_limit_rps"`

	// RateLimitBurst is the per-client burst allowance.
	RateLimitBurst int `koanf:"rate_limit_burst"`

	// RequestTimeout bounds the handling of a single request.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// StorageSection configures the durable record store.
type StorageSection struct {
	// Backend selects the record store implementation
	// ("badger" or "memory").
	Backend string `koanf:"backend"`

	// DataDir is the storage directory. Required for badger.
	DataDir string `koanf:"data_dir"`

	Badger BadgerSection `koanf:"badger"`
}

// BadgerSection contains Badger-specific tuning parameters.
type BadgerSection struct {
	GCInterval       time.Duration `koanf:"gc_interval"`
	GCThreshold      float64       `koanf:"gc_threshold"`
	CacheSize        int64         `koanf:"cache_size"`
	ValueLogFileSize int64         `koanf:"value_log_file_size"`
	SyncWrites       bool          `koanf:"sync_writes"`
}

// MessageSection configures message lifecycle behavior.
type MessageSection struct {
	// MaxExpiry caps the client-declared message expiry.
	MaxExpiry time.Duration `koanf:"max_expiry"`

	// SweepInterval is the interval between reconciliation sweeps.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// SweepTimeout bounds the duration of a single sweep cycle.
	SweepTimeout time.Duration `koanf:"sweep_timeout"`

	// JanitorInterval is the interval between existence cache
	// janitor passes.
	JanitorInterval time.Duration `koanf:"janitor_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
