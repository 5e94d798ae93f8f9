// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr       = "127.0.0.1:3000"
	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20
	DefaultRequestTimeout = 10 * time.Second

	DefaultStorageBackend = "badger"
	DefaultDataDir        = "/var/lib/securesnap/data"

	DefaultBadgerGCInterval  = 10 * time.Minute
	DefaultBadgerGCThreshold = 0.5
	DefaultBadgerCacheSize   = 32 << 20
	DefaultBadgerVLogSize    = 256 << 20

	DefaultMaxExpiry       = 7 * 24 * time.Hour
	DefaultSweepInterval   = time.Minute
	DefaultSweepTimeout    = 30 * time.Second
	DefaultJanitorInterval = 30 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:           DefaultHTTPAddr,
				CORSOrigins:    []string{"*"},
				RateLimitRPS:   DefaultRateLimitRPS,
				RateLimitBurst: DefaultRateLimitBurst,
				RequestTimeout: DefaultRequestTimeout,
			},
		},
		Storage: StorageSection{
			Backend: DefaultStorageBackend,
			DataDir: DefaultDataDir,
			Badger: BadgerSection{
				GCInterval:       DefaultBadgerGCInterval,
				GCThreshold:      DefaultBadgerGCThreshold,
				CacheSize:        DefaultBadgerCacheSize,
				ValueLogFileSize: DefaultBadgerVLogSize,
				SyncWrites:       true,
			},
		},
		Message: MessageSection{
			MaxExpiry:       DefaultMaxExpiry,
			SweepInterval:   DefaultSweepInterval,
			SweepTimeout:    DefaultSweepTimeout,
			JanitorInterval: DefaultJanitorInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
