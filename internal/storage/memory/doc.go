// Package memory provides a volatile record store for SecureSnap.
//
// Records live in a sharded concurrent map and do not survive process
// restarts. Intended for tests and throwaway deployments; production
// deployments use the Badger-backed store.
package memory
