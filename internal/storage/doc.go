// Package storage provides the durable record store for SecureSnap.
//
// The record store holds encrypted message blobs between creation and
// consumption. It never expires records on its own: expiry is enforced
// by the service layer on read and by the reconciliation sweep.
//
// BadgerStore is the production implementation, backed by an embedded
// Badger database. The memory subpackage provides a volatile
// implementation for tests and throwaway deployments.
package storage
