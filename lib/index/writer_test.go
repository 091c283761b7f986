package index

import (
	"errors"
	"testing"

	"github.com/keydex/keydex/lib/convert"
	"github.com/keydex/keydex/lib/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyspace = "persons"
	testKey      = "key-1"
)

func newTestWriter(store *recordingStore) *Writer {
	return NewWriter(store, convert.NewRegistry(), logging.Discard())
}

// stubIndexedData names an index path without carrying a value.
type stubIndexedData struct{}

func (stubIndexedData) Keyspace() string  { return testKeyspace }
func (stubIndexedData) IndexName() string { return "address.city" }

func TestAddKeyToIndexIssuesBothSetAdds(t *testing.T) {
	store := newRecordingStore()
	writer := newTestWriter(store)

	err := writer.AddKeyToIndex(testKey, NewIndexedPropertyValue(testKeyspace, "firstname", "Rand"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"SetAdd(persons:firstname:Rand, key-1)",
		"SetAdd(persons:key-1:idx, persons:firstname:Rand)",
	}, store.calls)
}

func TestAddKeyToIndexNilDataFailsBeforeStoreCalls(t *testing.T) {
	store := newRecordingStore()
	writer := newTestWriter(store)

	err := writer.AddKeyToIndex(testKey, nil)
	require.ErrorIs(t, err, ErrNilIndexedData)
	assert.Empty(t, store.calls)
}

func TestAddKeyToIndexUnconvertibleValueFailsBeforeStoreCalls(t *testing.T) {
	type dummy struct{}
	store := newRecordingStore()
	writer := newTestWriter(store)

	err := writer.AddKeyToIndex(testKey, NewIndexedPropertyValue(testKeyspace, "firstname", dummy{}))
	require.Error(t, err)

	var convErr *convert.ConversionError
	assert.True(t, errors.As(err, &convErr))
	assert.Empty(t, store.calls)
}

func TestAddKeyToIndexUsesRegisteredConverter(t *testing.T) {
	type dummy struct{ name string }

	store := newRecordingStore()
	registry := convert.NewRegistry()
	registry.Register(dummy{}, func(v any) ([]byte, error) {
		return []byte(v.(dummy).name), nil
	})
	writer := NewWriter(store, registry, logging.Discard())

	err := writer.AddKeyToIndex(testKey, NewIndexedPropertyValue(testKeyspace, "firstname", dummy{name: "converted"}))
	require.NoError(t, err)

	assert.Contains(t, store.calls, "SetAdd(persons:firstname:converted, key-1)")
}

func TestRemoveKeyFromExistingIndexesScansExactlyOnce(t *testing.T) {
	store := newRecordingStore()
	writer := newTestWriter(store)

	err := writer.RemoveKeyFromExistingIndexes(testKey, stubIndexedData{})
	require.NoError(t, err)

	// No matches: the single pattern scan is the only store interaction.
	assert.Equal(t, []string{"KeysMatching(persons:address.city:*)"}, store.calls)
}

func TestRemoveKeyFromExistingIndexesRemovesFromAllMatches(t *testing.T) {
	store := newRecordingStore()
	store.stubbedKeys["persons:address.city:*"] = []string{
		"persons:address.city:London",
		"persons:address.city:Caemlyn",
	}
	writer := newTestWriter(store)

	err := writer.RemoveKeyFromExistingIndexes(testKey, stubIndexedData{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"KeysMatching(persons:address.city:*)",
		"SetRemove(persons:address.city:London, key-1)",
		"SetRemove(persons:address.city:Caemlyn, key-1)",
	}, store.calls)
}

func TestRemoveKeyFromExistingIndexesNilDataFails(t *testing.T) {
	store := newRecordingStore()
	writer := newTestWriter(store)

	err := writer.RemoveKeyFromExistingIndexes(testKey, nil)
	require.ErrorIs(t, err, ErrNilIndexedData)
	assert.Empty(t, store.calls)
}

func TestRemoveAllIndexesIssuesSingleBulkDelete(t *testing.T) {
	store := newRecordingStore()
	store.stubbedKeys["persons:*:*"] = []string{
		"persons:firstname:rand",
		"persons:firstname:mat",
	}
	writer := newTestWriter(store)

	err := writer.RemoveAllIndexes(testKeyspace)
	require.NoError(t, err)

	deletes := store.callsMatching("Delete(")
	require.Len(t, deletes, 1)
	assert.Equal(t, "Delete(persons:firstname:rand, persons:firstname:mat)", deletes[0])
}

func TestRemoveAllIndexesSkipsReverseIndexRecords(t *testing.T) {
	store := newRecordingStore()
	store.stubbedKeys["persons:*:*"] = []string{
		"persons:firstname:rand",
		"persons:key-1:idx",
	}
	writer := newTestWriter(store)

	err := writer.RemoveAllIndexes(testKeyspace)
	require.NoError(t, err)

	deletes := store.callsMatching("Delete(")
	require.Len(t, deletes, 1)
	assert.Equal(t, "Delete(persons:firstname:rand)", deletes[0])
}

func TestRemoveAllIndexesNoMatchesIsNoOp(t *testing.T) {
	store := newRecordingStore()
	writer := newTestWriter(store)

	err := writer.RemoveAllIndexes(testKeyspace)
	require.NoError(t, err)

	assert.Empty(t, store.callsMatching("Delete("))
}
