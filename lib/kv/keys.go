package kv

import (
	"strings"
)

// KeySeparator joins the components of every key written by the index
// engine: primary records (<keyspace>:<id>), index sets
// (<keyspace>:<indexName>:<value>) and reverse index records
// (<keyspace>:<id>:idx).
const KeySeparator = ":"

// ReverseIndexSuffix marks the per-entity set listing every index set the
// entity currently belongs to.
const ReverseIndexSuffix = "idx"

// JoinKey builds a store key from its components.
func JoinKey(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

// EntityKey returns the primary record key for an entity.
func EntityKey(keyspace, id string) string {
	return JoinKey(keyspace, id)
}

// IndexSetKey returns the key of the index set for one (indexName, value)
// pair within a keyspace.
func IndexSetKey(keyspace, indexName, value string) string {
	return JoinKey(keyspace, indexName, value)
}

// ReverseIndexKey returns the key of the reverse index record for an entity.
func ReverseIndexKey(keyspace, id string) string {
	return JoinKey(keyspace, id, ReverseIndexSuffix)
}

// IndexPathPattern returns the scan pattern matching every index set of one
// index path, e.g. "persons:address.city:*".
func IndexPathPattern(keyspace, indexName string) string {
	return JoinKey(keyspace, indexName, "*")
}

// KeyspaceIndexPattern returns the scan pattern matching every index set of
// a keyspace, e.g. "persons:*:*".
func KeyspaceIndexPattern(keyspace string) string {
	return JoinKey(keyspace, "*", "*")
}

// ReverseIndexPattern returns the scan pattern matching every reverse index
// record of a keyspace, e.g. "persons:*:idx".
func ReverseIndexPattern(keyspace string) string {
	return JoinKey(keyspace, "*", ReverseIndexSuffix)
}

// IsReverseIndexKey reports whether key denotes a reverse index record
// rather than an index set.
func IsReverseIndexKey(key string) bool {
	return strings.HasSuffix(key, KeySeparator+ReverseIndexSuffix)
}

// MatchPattern reports whether key matches the glob-style pattern. Only the
// '*' wildcard is supported; it matches any (possibly empty) run of
// characters, including the key separator. This is the single matching
// implementation shared by all local store backends so that scan semantics
// do not drift between engines.
func MatchPattern(pattern, key string) bool {
	// Fast paths for the two trivial patterns
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == key
	}

	parts := strings.Split(pattern, "*")

	// Anchored prefix
	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]

	// Middle parts match greedily left to right
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(key, part)
		if idx < 0 {
			return false
		}
		key = key[idx+len(part):]
	}

	// Anchored suffix
	return strings.HasSuffix(key, parts[len(parts)-1])
}
