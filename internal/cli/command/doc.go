// Package command provides CLI command definitions for securesnap.
//
// Commands:
//
//   - create: encrypt a message locally and upload the sealed payload
//   - read: fetch a message once, destroying it, and decrypt it
//   - delete: destroy a message without reading it
//
// All cryptography happens in the CLI. The server only ever sees the
// ciphertext, salt, and IV.
package command
