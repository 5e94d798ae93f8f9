// Package connection provides the HTTP client for the SecureSnap CLI.
//
// The client speaks the server's JSON envelope protocol and supports
// custom root CAs for servers with privately issued certificates.
package connection
