// Package domain defines the core domain models for SecureSnap.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - Message: An encrypted one-time message record with its declared
//     expiry. Records are immutable once created; only their existence
//     changes over the lifecycle.
//   - Errors: Domain-specific error definitions with structured codes.
//
// The server treats ciphertext, salt and IV as opaque blobs. It never
// parses, validates or decrypts them beyond enforcing size limits.
package domain
