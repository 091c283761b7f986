package keyspace

import (
	"testing"

	"github.com/keydex/keydex/lib/convert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenNestedMaps(t *testing.T) {
	flat, err := Flatten(map[string]any{
		"firstname": "Rand",
		"address": map[string]any{
			"city": "Caemlyn",
			"geo": map[string]any{
				"lat": 12.5,
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"firstname":       "Rand",
		"address.city":    "Caemlyn",
		"address.geo.lat": 12.5,
	}, flat)
}

func TestFlattenRejectsNonMapEntities(t *testing.T) {
	_, err := Flatten("not-a-map")
	require.Error(t, err)
}

func TestMapCodecEncodeDecode(t *testing.T) {
	codec := NewMapCodec(convert.NewRegistry())

	fields, err := codec.Encode(map[string]any{
		"firstname": "Rand",
		"age":       20,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("Rand"), fields["firstname"])
	assert.Equal(t, []byte("20"), fields["age"])

	entity, err := codec.Decode(fields)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"firstname": "Rand", "age": "20"}, entity)
}

func TestMapCodecEncodeUnconvertibleField(t *testing.T) {
	type dummy struct{}
	codec := NewMapCodec(convert.NewRegistry())

	_, err := codec.Encode(map[string]any{"bad": dummy{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestPathExtractor(t *testing.T) {
	extractor := NewPathExtractor().
		AddIndex("persons", "firstname").
		AddIndex("persons", "address.city").
		AddIndex("persons", "firstname") // duplicate, ignored

	entries, err := extractor.Extract("persons", map[string]any{
		"firstname": "Rand",
		"lastname":  "al'Thor",
		"address":   map[string]any{"city": "Caemlyn"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "firstname", entries[0].IndexName())
	assert.Equal(t, "Rand", entries[0].Value())
	assert.Equal(t, "address.city", entries[1].IndexName())
	assert.Equal(t, "Caemlyn", entries[1].Value())

	assert.Equal(t, []string{"firstname", "address.city"}, extractor.IndexPaths("persons", nil))

	// Paths the entity carries no value for produce no entries
	entries, err = extractor.Extract("persons", map[string]any{"lastname": "al'Thor"})
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Unconfigured keyspaces have no indexes
	entries, err = extractor.Extract("cities", map[string]any{"name": "Tear"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
