// Package tlsroots provides TLS certificate management.
//
// It offers two pieces:
//
//   - Pool: a root CA pool built from system roots plus custom PEM
//     files, for clients that must trust privately issued server
//     certificates.
//   - Watcher: a server certificate loader that watches the cert and
//     key files and reloads them on rotation without a restart.
package tlsroots
