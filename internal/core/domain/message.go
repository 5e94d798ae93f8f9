// Package domain defines the core domain models for SecureSnap.
package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Message constraints. Blob limits bound storage per record; the blobs
// themselves stay opaque to the server.
const (
	MaxCiphertextSize = 256 << 10 // 256KB
	MaxSaltSize       = 64
	MaxIVSize         = 32

	// DefaultMaxExpiry caps client-chosen expiries unless overridden in
	// configuration. Bounds the lifetime of existence markers.
	DefaultMaxExpiry = 7 * 24 * time.Hour

	// MessageIDPrefix is the prefix for message IDs.
	MessageIDPrefix = "snap-"
)

// Message represents an encrypted one-time message record.
//
// A record is immutable after creation. Its lifecycle is
// CREATED → AVAILABLE → {CONSUMED | EXPIRED | DELETED}; the terminal
// states all present as "not found" to callers.
type Message struct {
	// ID is the unique identifier for the message.
	// Format: snap-{ulid_lowercase}, 31 characters total. Never reused.
	ID string `json:"id"`

	// Ciphertext is the client-encrypted payload. Opaque to the server.
	Ciphertext []byte `json:"ciphertext"`

	// Salt is the client-side key derivation salt. Opaque to the server.
	Salt []byte `json:"salt"`

	// IV is the client-side initialization vector. Opaque to the server.
	IV []byte `json:"iv"`

	// CreatedAt is the record creation timestamp (Unix milliseconds).
	// Set once, server-side.
	CreatedAt int64 `json:"created_at"`

	// ExpirySeconds is the client-declared lifetime in seconds.
	// Immutable after creation.
	ExpirySeconds int64 `json:"expiry_seconds"`
}

// NewMessage creates a new Message with a generated ID and CreatedAt.
func NewMessage(ciphertext, salt, iv []byte, expirySeconds int64) (*Message, error) {
	id, err := GenerateMessageID()
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:            id,
		Ciphertext:    ciphertext,
		Salt:          salt,
		IV:            iv,
		CreatedAt:     time.Now().UnixMilli(),
		ExpirySeconds: expirySeconds,
	}, nil
}

// GenerateMessageID generates a new message ID using ULID.
// Format: snap-{ulid_lowercase}, 31 characters total.
func GenerateMessageID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return MessageIDPrefix + strings.ToLower(id.String()), nil
}

// ExpiresAt returns the absolute expiration timestamp (Unix milliseconds),
// derived from CreatedAt and ExpirySeconds.
func (m *Message) ExpiresAt() int64 {
	return m.CreatedAt + m.ExpirySeconds*1000
}

// ExpiresAtTime returns the expiration as time.Time.
func (m *Message) ExpiresAtTime() time.Time {
	return time.UnixMilli(m.ExpiresAt())
}

// IsExpired returns true if the message's declared expiry has passed.
func (m *Message) IsExpired(now time.Time) bool {
	return now.UnixMilli() >= m.ExpiresAt()
}

// TTL returns the declared expiry as a duration. Used to set the
// existence marker's time-to-live at creation.
func (m *Message) TTL() time.Duration {
	return time.Duration(m.ExpirySeconds) * time.Second
}

// Validate validates the message fields against constraints.
// maxExpiry bounds ExpirySeconds; pass 0 to apply DefaultMaxExpiry.
func (m *Message) Validate(maxExpiry time.Duration) error {
	if maxExpiry <= 0 {
		maxExpiry = DefaultMaxExpiry
	}

	var violations []string

	if len(m.Ciphertext) == 0 {
		violations = append(violations, "ciphertext is required")
	}
	if len(m.Salt) == 0 {
		violations = append(violations, "salt is required")
	}
	if len(m.IV) == 0 {
		violations = append(violations, "iv is required")
	}

	if len(m.Ciphertext) > MaxCiphertextSize {
		violations = append(violations, fmt.Sprintf("ciphertext exceeds %d bytes", MaxCiphertextSize))
	}
	if len(m.Salt) > MaxSaltSize {
		violations = append(violations, fmt.Sprintf("salt exceeds %d bytes", MaxSaltSize))
	}
	if len(m.IV) > MaxIVSize {
		violations = append(violations, fmt.Sprintf("iv exceeds %d bytes", MaxIVSize))
	}

	if len(violations) > 0 {
		return ErrMessageValidation.WithDetails(strings.Join(violations, "; "))
	}

	if m.ExpirySeconds <= 0 {
		return ErrExpiryOutOfRange.WithDetails("expiry must be a positive number of seconds")
	}
	if time.Duration(m.ExpirySeconds)*time.Second > maxExpiry {
		return ErrExpiryOutOfRange.WithDetails(
			fmt.Sprintf("expiry exceeds maximum of %d seconds", int64(maxExpiry.Seconds())))
	}

	return nil
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	clone := *m
	clone.Ciphertext = append([]byte(nil), m.Ciphertext...)
	clone.Salt = append([]byte(nil), m.Salt...)
	clone.IV = append([]byte(nil), m.IV...)
	return &clone
}

// CreatedAtTime returns CreatedAt as time.Time.
func (m *Message) CreatedAtTime() time.Time {
	return time.UnixMilli(m.CreatedAt)
}

// IsValidMessageID checks if a string is a valid message ID format.
func IsValidMessageID(id string) bool {
	id = strings.ToLower(id)

	if !strings.HasPrefix(id, MessageIDPrefix) {
		return false
	}

	// snap- (5) + ULID (26) = 31 characters
	if len(id) != 31 {
		return false
	}

	ulidPart := strings.ToUpper(id[len(MessageIDPrefix):])
	_, err := ulid.Parse(ulidPart)
	return err == nil
}

// NormalizeMessageID normalizes a message ID to lowercase.
// Returns empty string if the ID is invalid.
func NormalizeMessageID(id string) string {
	normalized := strings.ToLower(id)
	if !IsValidMessageID(normalized) {
		return ""
	}
	return normalized
}
