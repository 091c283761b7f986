package keyspace

import (
	"github.com/keydex/keydex/lib/index"
)

// PathExtractor is the default index.Extractor: indexed paths are configured
// per keyspace up front, and entities are flattened maps. It mirrors the
// codec's flattening, so a configured path like "address.city" picks up the
// value of a nested field.
type PathExtractor struct {
	paths map[string][]string
}

// NewPathExtractor creates an extractor with no configured indexes.
func NewPathExtractor() *PathExtractor {
	return &PathExtractor{paths: map[string][]string{}}
}

// AddIndex registers an indexed path for a keyspace. Duplicate
// registrations are ignored.
func (e *PathExtractor) AddIndex(keyspace, path string) *PathExtractor {
	for _, existing := range e.paths[keyspace] {
		if existing == path {
			return e
		}
	}
	e.paths[keyspace] = append(e.paths[keyspace], path)
	return e
}

// Extract returns one IndexedPropertyValue per configured path the entity
// currently carries a value for. Paths the entity has no value for produce
// no entry.
func (e *PathExtractor) Extract(keyspace string, entity any) ([]*index.IndexedPropertyValue, error) {
	configured := e.paths[keyspace]
	if len(configured) == 0 {
		return nil, nil
	}

	flat, err := Flatten(entity)
	if err != nil {
		return nil, err
	}

	var entries []*index.IndexedPropertyValue
	for _, path := range configured {
		if value, ok := flat[path]; ok {
			entries = append(entries, index.NewIndexedPropertyValue(keyspace, path, value))
		}
	}
	return entries, nil
}

// IndexPaths returns every path the keyspace's entities could be indexed
// under, regardless of the entity's current values. These are the potential
// index prefixes used for stale-membership discovery.
func (e *PathExtractor) IndexPaths(keyspace string, _ any) []string {
	return e.paths[keyspace]
}
