// Package cmap provides a concurrent map implementation for SecureSnap.
//
// This package implements a sharded concurrent map used by the in-memory
// record store and the existence-marker cache:
//
//   - Sharding: Configurable shard count for parallelism
//   - Fine-grained Locking: Per-shard RWMutex for minimal contention
//   - Take-once: Pop removes and returns a value under the shard lock,
//     giving callers an atomic claim on a key
//
// Usage:
//
//	m := cmap.New[string, *Message]()
//	m.Set("key", msg)
//	val, ok := m.Pop("key")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete, Pop) use Lock.
package cmap
