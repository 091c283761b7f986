// Package memkv provides the in-memory implementation of the kv.Store
// interface. Sets and hashes live in concurrent maps (xsync.MapOf) with one
// lock per value, so operations on different keys proceed without
// contention. Data is not persisted; the package is the default engine of
// the keydex server and the substrate for most tests.
package memkv
