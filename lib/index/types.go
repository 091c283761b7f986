package index

// IndexedData describes one secondary index an entity participates in: the
// keyspace it lives in and the (possibly dotted) path of the indexed field,
// e.g. "address.city". It deliberately carries no value; operations that
// only need to locate existing index sets for a path work on this interface.
type IndexedData interface {
	// Keyspace returns the keyspace the index belongs to.
	Keyspace() string
	// IndexName returns the path of the indexed field.
	IndexName() string
}

// IndexedPropertyValue is one concrete (path, value) pair of an entity. The
// value is a domain value; the index writer converts it to its byte
// representation when composing the index set key.
type IndexedPropertyValue struct {
	keyspace  string
	indexName string
	value     any
}

// NewIndexedPropertyValue creates an IndexedPropertyValue for the given
// keyspace, index path and domain value.
func NewIndexedPropertyValue(keyspace, indexName string, value any) *IndexedPropertyValue {
	return &IndexedPropertyValue{
		keyspace:  keyspace,
		indexName: indexName,
		value:     value,
	}
}

func (v *IndexedPropertyValue) Keyspace() string {
	return v.keyspace
}

func (v *IndexedPropertyValue) IndexName() string {
	return v.indexName
}

// Value returns the raw domain value of the indexed field.
func (v *IndexedPropertyValue) Value() any {
	return v.value
}

// Extractor is the external collaborator that decomposes an entity into its
// indexed field values. keydex never inspects entity internals itself; it
// consumes the finite sequence an Extractor produces.
type Extractor interface {
	// Extract returns one IndexedPropertyValue per indexed (path, value)
	// pair the entity currently carries.
	Extract(keyspace string, entity any) ([]*IndexedPropertyValue, error)
	// IndexPaths returns every index path the entity could be stored under,
	// regardless of whether the current entity carries a value for it. The
	// keyspace adapter uses these to discover stale index membership.
	IndexPaths(keyspace string, entity any) []string
}
