// Package service provides domain services for SecureSnap.
//
// MessageService is the lifecycle coordinator for one-time messages. It
// ties together two independent stores:
//
//   - MessageRepository: durable keyed storage of message records, the
//     source of truth for ciphertext and declared expiry.
//   - MarkerCache: a self-expiring existence gate with an atomic
//     take-once primitive, consulted before any durable lookup.
//
// The coordinator itself is stateless and holds no lock across store
// calls. It guarantees that a message is served at most once and never
// after its declared expiry; the Sweeper is the authoritative backstop
// that reclaims durable records whose expiry has passed, regardless of
// marker state.
package service
