// Package boltkv provides a durable implementation of the kv.Store interface
// on top of bbolt. Every set and every hash is a nested bucket, key scans
// walk the bucket names of a single top-level bucket, and all operations run
// in their own bolt transaction. Intended for single-node deployments that
// must survive restarts.
package boltkv
