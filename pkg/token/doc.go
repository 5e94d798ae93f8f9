// Package token provides random token generation and hashing
// utilities.
//
// Tokens are drawn from crypto/rand and Base64 RawURL encoded for safe
// use in URLs and headers. Hashes are hex-encoded SHA-256 and verified
// with constant-time comparison.
package token
