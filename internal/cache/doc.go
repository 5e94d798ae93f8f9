// Package cache provides the in-process existence cache for SecureSnap.
//
// The cache holds one self-expiring marker per live message. A marker's
// absence means the message is not available for read, regardless of
// the state of the durable record store.
package cache
