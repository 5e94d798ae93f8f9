// Package config defines the server configuration structure.
package config

import (
	"errors"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyMessage(&cfg.Message)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	if cfg.HTTP.RateLimitRPS < 0 {
		return errors.New("server.http.rate_limit_rps must not be negative")
	}
	if cfg.HTTP.RateLimitRPS > 0 && cfg.HTTP.RateLimitBurst < 1 {
		return errors.New("server.http.rate_limit_burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case "memory":
		return nil
	case "badger":
	default:
		return errors.New("storage.backend must be \"badger\" or \"memory\"")
	}

	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required for the badger backend")
	}

	// Check if data directory exists or can be created
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return errors.New("cannot create data directory: " + err.Error())
	}

	if cfg.Badger.GCThreshold < 0 || cfg.Badger.GCThreshold > 1 {
		return errors.New("storage.badger.gc_threshold must be between 0 and 1")
	}

	return nil
}

func verifyMessage(cfg *MessageSection) error {
	if cfg.MaxExpiry <= 0 {
		return errors.New("message.max_expiry must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return errors.New("message.sweep_interval must be positive")
	}
	if cfg.SweepTimeout <= 0 {
		return errors.New("message.sweep_timeout must be positive")
	}
	if cfg.JanitorInterval <= 0 {
		return errors.New("message.janitor_interval must be positive")
	}
	return nil
}
