// Package main provides the entry point for securesnap-server.
//
// The server stores client-encrypted payloads and destroys each one
// on its first read:
//
//   - HTTP/HTTPS API for creating, reading, and deleting messages
//   - Durable record store (Badger) with an in-memory existence cache
//   - Periodic reconciliation sweep reclaiming expired messages
//   - Prometheus metrics on /metrics
//
// Usage:
//
//	securesnap-server [flags]
//	securesnap-server --config /path/to/config.yaml
//
// Configuration comes from defaults, an optional YAML file, and
// SECURESNAP_* environment variables, in increasing precedence.
package main
