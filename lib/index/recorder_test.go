package index

import (
	"fmt"
	"strings"

	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/kv/memkv"
)

// recordingStore wraps a real in-memory store and records every operation
// issued against it, so tests can assert on the exact store interactions.
// KeysMatching results can be stubbed per pattern.
type recordingStore struct {
	kv.Store
	calls       []string
	stubbedKeys map[string][]string
	failKeys    map[string]error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		Store:       memkv.NewStore(),
		stubbedKeys: map[string][]string{},
		failKeys:    map[string]error{},
	}
}

func (r *recordingStore) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// callsMatching returns all recorded calls starting with the given prefix.
func (r *recordingStore) callsMatching(prefix string) []string {
	matches := []string{}
	for _, call := range r.calls {
		if strings.HasPrefix(call, prefix) {
			matches = append(matches, call)
		}
	}
	return matches
}

func (r *recordingStore) SetAdd(key, member string) error {
	r.record("SetAdd(%s, %s)", key, member)
	return r.Store.SetAdd(key, member)
}

func (r *recordingStore) SetRemove(key, member string) error {
	r.record("SetRemove(%s, %s)", key, member)
	if err, ok := r.failKeys[key]; ok {
		return err
	}
	return r.Store.SetRemove(key, member)
}

func (r *recordingStore) SetMembers(key string) ([]string, error) {
	r.record("SetMembers(%s)", key)
	return r.Store.SetMembers(key)
}

func (r *recordingStore) SetIsMember(key, member string) (bool, error) {
	r.record("SetIsMember(%s, %s)", key, member)
	return r.Store.SetIsMember(key, member)
}

func (r *recordingStore) SetCardinality(key string) (int64, error) {
	r.record("SetCardinality(%s)", key)
	return r.Store.SetCardinality(key)
}

func (r *recordingStore) KeysMatching(pattern string) ([]string, error) {
	r.record("KeysMatching(%s)", pattern)
	if keys, ok := r.stubbedKeys[pattern]; ok {
		return keys, nil
	}
	return r.Store.KeysMatching(pattern)
}

func (r *recordingStore) Delete(keys ...string) error {
	r.record("Delete(%s)", strings.Join(keys, ", "))
	return r.Store.Delete(keys...)
}

func (r *recordingStore) HashSetAll(key string, fields map[string][]byte) error {
	r.record("HashSetAll(%s)", key)
	return r.Store.HashSetAll(key, fields)
}

func (r *recordingStore) HashGetAll(key string) (map[string][]byte, error) {
	r.record("HashGetAll(%s)", key)
	return r.Store.HashGetAll(key)
}
