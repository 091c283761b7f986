// Package keyspace implements the keyspace adapter: the entity lifecycle
// (put/get/delete/deleteAll) over a kv.Store, combining primary record
// hashes, keyspace membership sets and the index writer so that secondary
// indexes stay consistent with entity data.
//
// A write is "discover and evict stale membership, then assert current
// membership", never a direct overwrite, because index set keys are
// value-derived and the previous value's key is unknown without either the
// reverse index record or a scan.
//
// Per entity id the state machine is Absent -> Live (Put), Live -> Live
// (Put, index sets re-derived), Live -> Absent (Delete, or DeleteAllOf for
// the whole keyspace). Concurrent writers of the same id are not
// serialized; callers needing stronger guarantees serialize externally.
package keyspace
