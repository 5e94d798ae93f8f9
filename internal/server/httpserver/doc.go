// Package httpserver provides the HTTP/HTTPS server for SecureSnap.
//
// This package implements the external API using stdlib net/http:
//
//   - Message endpoints: /create, /message/{id}
//   - Health endpoints: /health, /ready
//   - Metrics endpoint: /metrics
//
// Features:
//
//   - TLS support
//   - Middleware chain: Recover, RequestID, CORS, RateLimit, Audit
//   - Graceful shutdown with configurable timeout
//   - Prometheus metrics integration
package httpserver
