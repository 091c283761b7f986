// Package kv defines the store operations port of keydex: the minimal set of
// primitive key-value operations (set mutations, glob key scans, hash
// records) the index engine needs from its backing store, together with the
// shared key layout and a unified error type.
//
// The package focuses on:
//   - A unified interface (Store) covering set, scan, delete and hash
//     operations across different backends
//   - The canonical key layout of the index engine (primary records, index
//     sets, reverse index records and their scan patterns)
//   - A structured error system using typed return codes
//
// Implementations:
//
//	The repository ships three implementations of the Store interface:
//
//	- In-memory store (memkv): a concurrent, non-durable implementation used
//	  as the default engine and as the test substrate. Available in the
//	  "github.com/keydex/keydex/lib/kv/memkv" package.
//
//	- Bolt store (boltkv): a durable, single-file implementation built on
//	  bbolt. Available in the "github.com/keydex/keydex/lib/kv/boltkv"
//	  package.
//
//	- RPC store (rpc/client): a remote implementation speaking the keydex
//	  wire protocol; every operation is a network round trip. Available in
//	  the "github.com/keydex/keydex/rpc/client" package.
//
// All implementations are exercised by the shared conformance suite in
// "github.com/keydex/keydex/lib/kv/kvtest".
package kv
