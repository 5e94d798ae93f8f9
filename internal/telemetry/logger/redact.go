// Package logger provides structured logging for SecureSnap.
package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted. The server never
// needs message payloads or key material in its logs.
var sensitiveKeyPatterns = []string{
	"ciphertext",
	"passphrase",
	"password",
	"secret",
	"token",
	"credential",
	"auth",
	"bearer",
}

// Short keys matched exactly; substring matching on these would catch
// unrelated fields.
var sensitiveExactKeys = []string{
	"iv",
	"salt",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		switch a.Value.Kind() {
		case slog.KindString:
			if a.Value.String() != "" {
				return slog.String(a.Key, redactedValue)
			}
		case slog.KindGroup:
			// Fall through to recursive handling below.
		default:
			return slog.String(a.Key, redactedValue)
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, exact := range sensitiveExactKeys {
		if keyLower == exact {
			return true
		}
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
