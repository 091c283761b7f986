package keyspace

import (
	"fmt"

	"github.com/keydex/keydex/lib/convert"
)

// Codec converts between domain entities and the flattened field map stored
// in an entity's primary record hash.
type Codec interface {
	// Encode flattens an entity into field-name to byte-value pairs.
	Encode(entity any) (map[string][]byte, error)
	// Decode reconstitutes an entity representation from a stored field map.
	Decode(fields map[string][]byte) (any, error)
}

// MapCodec is the default codec for map entities. Nested maps flatten into
// dotted field paths ("address.city"); leaf values are converted through the
// conversion registry. Decoding yields a map[string]string view of the
// stored fields, since the byte representation carries no type information.
type MapCodec struct {
	registry *convert.Registry
}

// NewMapCodec creates a MapCodec on top of the given registry.
func NewMapCodec(registry *convert.Registry) *MapCodec {
	return &MapCodec{registry: registry}
}

func (c *MapCodec) Encode(entity any) (map[string][]byte, error) {
	flat, err := Flatten(entity)
	if err != nil {
		return nil, err
	}

	fields := make(map[string][]byte, len(flat))
	for path, value := range flat {
		b, err := c.registry.Convert(value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", path, err)
		}
		fields[path] = b
	}
	return fields, nil
}

func (c *MapCodec) Decode(fields map[string][]byte) (any, error) {
	entity := make(map[string]string, len(fields))
	for path, value := range fields {
		entity[path] = string(value)
	}
	return entity, nil
}

// Flatten turns a map[string]any entity into a single-level map keyed by
// dotted paths. Non-map entities are rejected; keydex does not reflect over
// arbitrary structs.
func Flatten(entity any) (map[string]any, error) {
	m, ok := entity.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unsupported entity type %T (expected map[string]any)", entity)
	}

	flat := map[string]any{}
	flattenInto(flat, "", m)
	return flat, nil
}

func flattenInto(flat map[string]any, prefix string, m map[string]any) {
	for key, value := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(flat, path, nested)
			continue
		}
		flat[path] = value
	}
}
