// Package metric provides Prometheus metrics for SecureSnap.
//
// It exposes message lifecycle counters (created, consumed, deleted,
// expired, swept), store divergence events, sweep timing and HTTP
// request metrics in Prometheus format.
package metric
