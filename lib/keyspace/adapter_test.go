package keyspace

import (
	"fmt"
	"testing"

	"github.com/keydex/keydex/lib/convert"
	"github.com/keydex/keydex/lib/index"
	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/kv/memkv"
	"github.com/keydex/keydex/lib/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, store kv.Store) *Adapter {
	t.Helper()

	registry := convert.NewRegistry()
	extractor := NewPathExtractor().
		AddIndex("persons", "firstname").
		AddIndex("persons", "address.city")
	writer := index.NewWriter(store, registry, logging.Discard())
	return NewAdapter(store, NewMapCodec(registry), extractor, writer, logging.Discard())
}

func person(firstname, city string) map[string]any {
	return map[string]any{
		"firstname": firstname,
		"age":       20,
		"address": map[string]any{
			"city": city,
		},
	}
}

func TestPutWritesRecordMembershipAndIndexes(t *testing.T) {
	store := memkv.NewStore()
	adapter := newTestAdapter(t, store)

	require.NoError(t, adapter.Put("key-1", person("Rand", "Caemlyn"), "persons"))

	// Primary record
	fields, err := store.HashGetAll("persons:key-1")
	require.NoError(t, err)
	assert.Equal(t, "Rand", string(fields["firstname"]))
	assert.Equal(t, "Caemlyn", string(fields["address.city"]))
	assert.Equal(t, "20", string(fields["age"]))

	// Keyspace membership
	ok, err := adapter.Contains("key-1", "persons")
	require.NoError(t, err)
	assert.True(t, ok)

	// Index sets for both configured paths
	for _, indexKey := range []string{"persons:firstname:Rand", "persons:address.city:Caemlyn"} {
		member, err := store.SetIsMember(indexKey, "key-1")
		require.NoError(t, err)
		assert.True(t, member, "expected key-1 in %s", indexKey)
	}

	// Reverse index record lists exactly the index sets containing the id
	reverse, err := store.SetMembers("persons:key-1:idx")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"persons:firstname:Rand", "persons:address.city:Caemlyn"}, reverse)
}

func TestPutEvictsStaleIndexMembership(t *testing.T) {
	store := memkv.NewStore()
	adapter := newTestAdapter(t, store)

	require.NoError(t, adapter.Put("key-1", person("Rand", "Caemlyn"), "persons"))
	require.NoError(t, adapter.Put("key-1", person("Mat", "Caemlyn"), "persons"))

	old, err := store.SetIsMember("persons:firstname:Rand", "key-1")
	require.NoError(t, err)
	assert.False(t, old, "stale index membership must be evicted")

	current, err := store.SetIsMember("persons:firstname:Mat", "key-1")
	require.NoError(t, err)
	assert.True(t, current)

	reverse, err := store.SetMembers("persons:key-1:idx")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"persons:firstname:Mat", "persons:address.city:Caemlyn"}, reverse)
}

func TestPutEvictsViaScanWithoutReverseRecord(t *testing.T) {
	store := memkv.NewStore()
	adapter := newTestAdapter(t, store)

	// Index membership left behind without a reverse index record, as a
	// prior incomplete write would leave it.
	require.NoError(t, store.SetAdd("persons:firstname:Rand", "key-1"))

	require.NoError(t, adapter.Put("key-1", person("Mat", "Caemlyn"), "persons"))

	old, err := store.SetIsMember("persons:firstname:Rand", "key-1")
	require.NoError(t, err)
	assert.False(t, old)
}

func TestPutDoesNotDisturbOtherIds(t *testing.T) {
	store := memkv.NewStore()
	adapter := newTestAdapter(t, store)

	require.NoError(t, adapter.Put("key-1", person("Rand", "Caemlyn"), "persons"))
	require.NoError(t, adapter.Put("key-2", person("Rand", "Tear"), "persons"))
	require.NoError(t, adapter.Put("key-1", person("Lews", "Caemlyn"), "persons"))

	// key-2 keeps its membership in the shared index set
	ok, err := store.SetIsMember("persons:firstname:Rand", "key-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetAbsentReturnsNil(t *testing.T) {
	adapter := newTestAdapter(t, memkv.NewStore())

	entity, err := adapter.Get("missing", "persons")
	require.NoError(t, err)
	assert.Nil(t, entity)
}

func TestGetRoundTrip(t *testing.T) {
	adapter := newTestAdapter(t, memkv.NewStore())

	require.NoError(t, adapter.Put("key-1", person("Rand", "Caemlyn"), "persons"))

	entity, err := adapter.Get("key-1", "persons")
	require.NoError(t, err)

	fields, ok := entity.(map[string]string)
	require.True(t, ok, "expected decoded field map, got %T", entity)
	assert.Equal(t, "Rand", fields["firstname"])
	assert.Equal(t, "Caemlyn", fields["address.city"])
}

func TestDeleteRemovesAllTraces(t *testing.T) {
	store := memkv.NewStore()
	adapter := newTestAdapter(t, store)

	require.NoError(t, adapter.Put("key-1", person("Rand", "Caemlyn"), "persons"))

	last, err := adapter.Delete("key-1", "persons")
	require.NoError(t, err)
	require.NotNil(t, last, "delete must return the entity's last state")

	ok, err := adapter.Contains("key-1", "persons")
	require.NoError(t, err)
	assert.False(t, ok)

	// No index set contains the id anymore
	keys, err := store.KeysMatching("persons:*:*")
	require.NoError(t, err)
	for _, key := range keys {
		member, err := store.SetIsMember(key, "key-1")
		require.NoError(t, err)
		assert.False(t, member, "expected key-1 gone from %s", key)
	}

	// Reverse index record is gone
	reverse, err := store.SetMembers("persons:key-1:idx")
	require.NoError(t, err)
	assert.Empty(t, reverse)
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	adapter := newTestAdapter(t, memkv.NewStore())

	last, err := adapter.Delete("missing", "persons")
	require.NoError(t, err)
	assert.Nil(t, last)
}

// failingRemoveStore simulates per-index-set removal failures during delete.
type failingRemoveStore struct {
	kv.Store
	failPrefix string
}

func (s *failingRemoveStore) SetRemove(key, member string) error {
	if s.failPrefix != "" && len(key) >= len(s.failPrefix) && key[:len(s.failPrefix)] == s.failPrefix {
		return kv.NewError(kv.RetCInternalError, "injected failure")
	}
	return s.Store.SetRemove(key, member)
}

func TestDeleteSwallowsIndexCleanupFailures(t *testing.T) {
	inner := memkv.NewStore()
	store := &failingRemoveStore{Store: inner}
	adapter := newTestAdapter(t, store)

	require.NoError(t, adapter.Put("key-1", person("Rand", "Caemlyn"), "persons"))

	// Index set removals fail from now on; membership removal still works.
	store.failPrefix = "persons:firstname"

	last, err := adapter.Delete("key-1", "persons")
	require.NoError(t, err, "index cleanup failures must not fail the delete")
	require.NotNil(t, last)

	// Primary record is gone regardless
	fields, err := inner.HashGetAll("persons:key-1")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestGetAllOfSkipsMissingRecords(t *testing.T) {
	store := memkv.NewStore()
	adapter := newTestAdapter(t, store)

	require.NoError(t, adapter.Put("key-1", person("Rand", "Caemlyn"), "persons"))
	require.NoError(t, adapter.Put("key-2", person("Mat", "Tear"), "persons"))

	// A membership entry whose primary record is missing: the race between
	// a delete and the membership read.
	require.NoError(t, store.SetAdd("persons", "key-3"))

	entities, err := adapter.GetAllOf("persons")
	require.NoError(t, err)
	assert.Len(t, entities, 2)
}

func TestDeleteAllOfDropsKeyspace(t *testing.T) {
	store := memkv.NewStore()
	adapter := newTestAdapter(t, store)

	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("key-%d", i)
		require.NoError(t, adapter.Put(id, person("Rand", "Caemlyn"), "persons"))
	}
	// A second keyspace must stay untouched
	require.NoError(t, store.SetAdd("cities:name:caemlyn", "city-1"))

	require.NoError(t, adapter.DeleteAllOf("persons"))

	count, err := adapter.Count("persons")
	require.NoError(t, err)
	assert.Zero(t, count)

	keys, err := store.KeysMatching("persons:*:*")
	require.NoError(t, err)
	assert.Empty(t, keys, "expected all index and reverse keys gone, got %v", keys)

	fields, err := store.HashGetAll("persons:key-1")
	require.NoError(t, err)
	assert.Empty(t, fields)

	ok, err := store.SetIsMember("cities:name:caemlyn", "city-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCount(t *testing.T) {
	adapter := newTestAdapter(t, memkv.NewStore())

	count, err := adapter.Count("persons")
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, adapter.Put("key-1", person("Rand", "Caemlyn"), "persons"))
	require.NoError(t, adapter.Put("key-2", person("Mat", "Tear"), "persons"))

	count, err = adapter.Count("persons")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
