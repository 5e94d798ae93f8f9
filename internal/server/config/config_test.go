package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.Storage.Backend != "badger" {
		t.Errorf("Storage.Backend = %q, want badger", cfg.Storage.Backend)
	}
	if !cfg.Storage.Badger.SyncWrites {
		t.Error("Badger.SyncWrites disabled by default")
	}
	if cfg.Message.MaxExpiry != 7*24*time.Hour {
		t.Errorf("Message.MaxExpiry = %v, want 168h", cfg.Message.MaxExpiry)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
}

func TestVerifyDefault(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "data")

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) failed: %v", err)
	}
}

func TestVerifyMemoryBackendNeedsNoDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "memory"
	cfg.Storage.DataDir = ""

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestVerifyRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantMsg string
	}{
		{"empty addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "" }, "server.http.addr"},
		{"tls cert without key", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "cert.pem" }, "tls_cert_file"},
		{"negative rps", func(c *ServerConfig) { c.Server.HTTP.RateLimitRPS = -1 }, "rate_limit_rps"},
		{"zero burst with rps", func(c *ServerConfig) { c.Server.HTTP.RateLimitBurst = 0 }, "rate_limit_burst"},
		{"unknown backend", func(c *ServerConfig) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"badger without dir", func(c *ServerConfig) { c.Storage.DataDir = "" }, "storage.data_dir"},
		{"gc threshold above 1", func(c *ServerConfig) { c.Storage.Badger.GCThreshold = 1.5 }, "gc_threshold"},
		{"zero max expiry", func(c *ServerConfig) { c.Message.MaxExpiry = 0 }, "message.max_expiry"},
		{"zero sweep interval", func(c *ServerConfig) { c.Message.SweepInterval = 0 }, "message.sweep_interval"},
		{"zero sweep timeout", func(c *ServerConfig) { c.Message.SweepTimeout = 0 }, "message.sweep_timeout"},
		{"zero janitor interval", func(c *ServerConfig) { c.Message.JanitorInterval = 0 }, "message.janitor_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Storage.DataDir = filepath.Join(t.TempDir(), "data")
			tt.mutate(cfg)

			err := Verify(cfg)
			if err == nil {
				t.Fatal("Verify did not fail")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}
