package keyspace

import (
	"log/slog"

	"github.com/keydex/keydex/lib/index"
	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/logging"
)

// Adapter orchestrates the entity lifecycle over the store: primary record
// hashes, keyspace membership sets and, through the index writer, the
// secondary index state. It performs no in-process locking; consistency
// rests on the idempotent set operations of the port and is subject to the
// documented window under concurrent writers of the same id.
type Adapter struct {
	store     kv.Store
	codec     Codec
	extractor index.Extractor
	writer    *index.Writer
	logger    *slog.Logger
}

// NewAdapter wires an adapter from its collaborators. A nil logger defaults
// to the package component logger.
func NewAdapter(store kv.Store, codec Codec, extractor index.Extractor, writer *index.Writer, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = logging.For("keyspace")
	}
	return &Adapter{
		store:     store,
		codec:     codec,
		extractor: extractor,
		writer:    writer,
		logger:    logger,
	}
}

// Put writes the entity's primary record and membership entry, evicts any
// index membership recorded under a previous version of the entity, then
// asserts membership for the entity's current field values.
//
// Eviction must happen before assertion: index set keys are value-derived,
// so old memberships cannot be overwritten in place, only discovered and
// removed. Discovery uses the reverse index record when one
// exists (exact), falling back to per-path prefix scans otherwise.
//
// A conversion failure of one indexed value aborts the put at that entry;
// entries already written for earlier fields are not rolled back.
func (a *Adapter) Put(id string, entity any, keyspace string) error {
	fields, err := a.codec.Encode(entity)
	if err != nil {
		return err
	}

	if err := a.store.HashSetAll(kv.EntityKey(keyspace, id), fields); err != nil {
		return err
	}
	if err := a.store.SetAdd(keyspace, id); err != nil {
		return err
	}

	if err := a.evictStaleIndexes(id, entity, keyspace); err != nil {
		return err
	}

	entries, err := a.extractor.Extract(keyspace, entity)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := a.writer.AddKeyToIndex(id, entry); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether an entity with the given id is live in the
// keyspace. Pure membership check; no index interaction.
func (a *Adapter) Contains(id, keyspace string) (bool, error) {
	return a.store.SetIsMember(keyspace, id)
}

// Get reads and reconstitutes an entity. An absent primary record yields
// (nil, nil) rather than an error.
func (a *Adapter) Get(id, keyspace string) (any, error) {
	fields, err := a.store.HashGetAll(kv.EntityKey(keyspace, id))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return a.codec.Decode(fields)
}

// Delete removes the entity and returns its last state. The primary record
// deletion is the operation's authoritative outcome: index cleanup failures
// afterwards are logged and swallowed so a half-failed cleanup can never
// leave the primary record alive.
func (a *Adapter) Delete(id, keyspace string) (any, error) {
	entity, err := a.Get(id, keyspace)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, nil
	}

	if err := a.store.Delete(kv.EntityKey(keyspace, id)); err != nil {
		return nil, err
	}
	if err := a.store.SetRemove(keyspace, id); err != nil {
		return nil, err
	}

	for _, indexKey := range a.indexKeysOf(id, keyspace) {
		if err := a.store.SetRemove(indexKey, id); err != nil {
			a.logger.Warn("failed to remove id from index set during delete",
				"keyspace", keyspace, "id", id, "index", indexKey, "err", err)
		}
	}
	if err := a.store.Delete(kv.ReverseIndexKey(keyspace, id)); err != nil {
		a.logger.Warn("failed to delete reverse index record",
			"keyspace", keyspace, "id", id, "err", err)
	}

	return entity, nil
}

// GetAllOf returns every live entity of the keyspace. Members whose primary
// record is missing (a delete racing the membership read) are skipped, not
// failed.
func (a *Adapter) GetAllOf(keyspace string) ([]any, error) {
	members, err := a.store.SetMembers(keyspace)
	if err != nil {
		return nil, err
	}

	entities := make([]any, 0, len(members))
	for _, id := range members {
		entity, err := a.Get(id, keyspace)
		if err != nil {
			return nil, err
		}
		if entity == nil {
			continue
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// DeleteAllOf drops the whole keyspace: every primary record, the
// membership set, every index set and every reverse index record.
func (a *Adapter) DeleteAllOf(keyspace string) error {
	members, err := a.store.SetMembers(keyspace)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(members)+1)
	for _, id := range members {
		keys = append(keys, kv.EntityKey(keyspace, id))
	}
	keys = append(keys, keyspace)
	if err := a.store.Delete(keys...); err != nil {
		return err
	}

	if err := a.writer.RemoveAllIndexes(keyspace); err != nil {
		return err
	}

	reverseKeys, err := a.store.KeysMatching(kv.ReverseIndexPattern(keyspace))
	if err != nil {
		return err
	}
	if len(reverseKeys) == 0 {
		return nil
	}
	return a.store.Delete(reverseKeys...)
}

// Count returns the number of live entities in the keyspace.
func (a *Adapter) Count(keyspace string) (int64, error) {
	return a.store.SetCardinality(keyspace)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// evictStaleIndexes removes id from every index set it may be recorded in
// under a previous version of the entity. With a non-empty reverse index
// record the eviction is exact; otherwise every potential index path is
// prefix-scanned.
func (a *Adapter) evictStaleIndexes(id string, entity any, keyspace string) error {
	reverseKey := kv.ReverseIndexKey(keyspace, id)
	indexKeys, err := a.store.SetMembers(reverseKey)
	if err != nil {
		return err
	}

	if len(indexKeys) > 0 {
		for _, indexKey := range indexKeys {
			if err := a.store.SetRemove(indexKey, id); err != nil {
				return err
			}
		}
		// The record is rebuilt below from the entity's current values.
		return a.store.Delete(reverseKey)
	}

	for _, path := range a.extractor.IndexPaths(keyspace, entity) {
		if err := a.writer.RemoveKeyFromExistingIndexes(id, indexedPath{keyspace, path}); err != nil {
			return err
		}
	}
	return nil
}

// indexedPath names an index path without a value, for scan-based eviction.
type indexedPath struct {
	keyspace string
	path     string
}

func (p indexedPath) Keyspace() string  { return p.keyspace }
func (p indexedPath) IndexName() string { return p.path }

// indexKeysOf discovers the index sets currently containing id, preferring
// the reverse index record and falling back to a keyspace-wide scan when the
// record is empty or unreadable.
func (a *Adapter) indexKeysOf(id, keyspace string) []string {
	indexKeys, err := a.store.SetMembers(kv.ReverseIndexKey(keyspace, id))
	if err == nil && len(indexKeys) > 0 {
		return indexKeys
	}
	if err != nil {
		a.logger.Warn("failed to read reverse index record, falling back to scan",
			"keyspace", keyspace, "id", id, "err", err)
	}

	candidates, err := a.store.KeysMatching(kv.KeyspaceIndexPattern(keyspace))
	if err != nil {
		a.logger.Warn("index scan failed during delete", "keyspace", keyspace, "err", err)
		return nil
	}

	keys := candidates[:0]
	for _, key := range candidates {
		if !kv.IsReverseIndexKey(key) {
			keys = append(keys, key)
		}
	}
	return keys
}
