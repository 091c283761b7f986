// Package index implements the index writer: the primitive that keeps
// secondary index sets and per-entity reverse index records in sync with
// entity writes. Indexing is append plus targeted cleanup, never
// diff-and-replace; the writer exposes exactly the set mutations and
// scan-and-clean bulk operations the keyspace adapter composes into the
// entity lifecycle.
//
// Key layout (see the kv package for the helpers):
//
//	index set            <keyspace>:<indexName>:<value>   ids of matching entities
//	reverse index record <keyspace>:<id>:idx              index set keys containing id
//
// The invariants maintained across these two structures:
//   - an id is a member of an index set iff the entity's current data
//     carries that (indexName, value) pair
//   - a reverse index record is always exactly the set of index set keys
//     that currently contain the id
package index
