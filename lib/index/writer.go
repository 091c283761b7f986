package index

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/keydex/keydex/lib/convert"
	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/logging"
)

// ErrNilIndexedData is returned when a writer operation is called with nil
// index data. It fails fast, before any store operation is issued.
var ErrNilIndexedData = errors.New("indexed data must not be nil")

// Writer maintains secondary index sets and the per-entity reverse index
// records. It is a thin primitive: two write-side set mutations
// (AddKeyToIndex) and two scan-and-clean bulk operations
// (RemoveKeyFromExistingIndexes, RemoveAllIndexes). Discovering which
// indexes are stale is the caller's job; the writer never diffs entity
// states.
type Writer struct {
	store    kv.Store
	registry *convert.Registry
	logger   *slog.Logger
}

// NewWriter creates a Writer on top of the given store and conversion
// registry. A nil logger defaults to the package component logger.
func NewWriter(store kv.Store, registry *convert.Registry, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.For("index")
	}
	return &Writer{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// AddKeyToIndex adds id to the index set derived from data and records that
// set's key in the entity's reverse index record. Both additions are
// idempotent set adds; repeating them is a storage-level no-op.
//
// The index set key is <keyspace>:<indexName>:<value>, where value is the
// converted byte representation of the indexed value. A value whose type
// has no registered converter fails with a *convert.ConversionError before
// any store operation is issued.
func (w *Writer) AddKeyToIndex(id string, data *IndexedPropertyValue) error {
	if data == nil {
		return ErrNilIndexedData
	}

	value, err := w.registry.Convert(data.Value())
	if err != nil {
		return fmt.Errorf("cannot index %s.%s: %w", data.Keyspace(), data.IndexName(), err)
	}

	indexKey := kv.IndexSetKey(data.Keyspace(), data.IndexName(), string(value))
	if err := w.store.SetAdd(indexKey, id); err != nil {
		return err
	}

	w.logger.Debug("added id to index set", "id", id, "index", indexKey)

	return w.store.SetAdd(kv.ReverseIndexKey(data.Keyspace(), id), indexKey)
}

// RemoveKeyFromExistingIndexes removes id from every index set of the path
// named by data, whatever value those sets were recorded under. It scans
// for <keyspace>:<indexName>:* and removes id from each match. The reverse
// index record is left untouched; callers use this when they already know
// the path is stale.
func (w *Writer) RemoveKeyFromExistingIndexes(id string, data IndexedData) error {
	if data == nil {
		return ErrNilIndexedData
	}

	pattern := kv.IndexPathPattern(data.Keyspace(), data.IndexName())
	keys, err := w.store.KeysMatching(pattern)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := w.store.SetRemove(key, id); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAllIndexes deletes every index set of the keyspace in a single bulk
// delete. Zero discovered index sets is a no-op; no delete is issued.
//
// The <keyspace>:*:* scan also matches reverse index records
// (<keyspace>:<id>:idx); those are filtered out here and cleaned up by the
// keyspace adapter instead.
func (w *Writer) RemoveAllIndexes(keyspace string) error {
	candidates, err := w.store.KeysMatching(kv.KeyspaceIndexPattern(keyspace))
	if err != nil {
		return err
	}

	keys := candidates[:0]
	for _, key := range candidates {
		if !kv.IsReverseIndexKey(key) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	w.logger.Debug("removing all index sets", "keyspace", keyspace, "count", len(keys))

	return w.store.Delete(keys...)
}
