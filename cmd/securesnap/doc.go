// Package main provides the entry point for the securesnap CLI.
//
// The CLI performs all cryptography client-side and talks to the
// server over its JSON API:
//
//   - create: seal a message with a passphrase and upload it
//   - read: fetch a message once, destroying it, and open it locally
//   - delete: destroy an unread message
//
// Usage:
//
//	securesnap create --passphrase SECRET "meet me at noon"
//	securesnap read --passphrase SECRET snap-01arz3ndektsv4rrffq69g5fav
//	securesnap delete snap-01arz3ndektsv4rrffq69g5fav
//
// The server address comes from --server or SECURESNAP_SERVER.
package main
