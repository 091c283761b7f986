package memkv

import (
	"sync"

	"github.com/keydex/keydex/lib/kv"
	"github.com/puzpuzpuz/xsync/v3"
)

// memSet is one set value. Membership is guarded by its own lock so that
// mutations of different sets never contend with each other.
type memSet struct {
	mu      sync.RWMutex
	members map[string]struct{}
}

// memHash is one hash value. The field map is replaced wholesale on write,
// matching the HashSetAll contract.
type memHash struct {
	mu     sync.RWMutex
	fields map[string][]byte
}

type storeImpl struct {
	sets   *xsync.MapOf[string, *memSet]
	hashes *xsync.MapOf[string, *memHash]
}

// NewStore creates a new in-memory store instance. This store implementation
// is not durable and only works within a single process. It is safe for
// concurrent use by multiple goroutines.
func NewStore() kv.Store {
	return &storeImpl{
		sets:   xsync.NewMapOf[string, *memSet](),
		hashes: xsync.NewMapOf[string, *memHash](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see kv/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) SetAdd(key, member string) error {
	set, _ := s.sets.LoadOrCompute(key, func() *memSet {
		return &memSet{members: map[string]struct{}{}}
	})
	set.mu.Lock()
	set.members[member] = struct{}{}
	set.mu.Unlock()
	return nil
}

func (s *storeImpl) SetRemove(key, member string) error {
	set, ok := s.sets.Load(key)
	if !ok {
		return nil
	}
	set.mu.Lock()
	delete(set.members, member)
	empty := len(set.members) == 0
	set.mu.Unlock()

	// Empty sets cease to exist, so scans never observe them.
	if empty {
		s.sets.Delete(key)
	}
	return nil
}

func (s *storeImpl) SetMembers(key string) ([]string, error) {
	set, ok := s.sets.Load(key)
	if !ok {
		return []string{}, nil
	}
	set.mu.RLock()
	members := make([]string, 0, len(set.members))
	for member := range set.members {
		members = append(members, member)
	}
	set.mu.RUnlock()
	return members, nil
}

func (s *storeImpl) SetIsMember(key, member string) (bool, error) {
	set, ok := s.sets.Load(key)
	if !ok {
		return false, nil
	}
	set.mu.RLock()
	_, found := set.members[member]
	set.mu.RUnlock()
	return found, nil
}

func (s *storeImpl) SetCardinality(key string) (int64, error) {
	set, ok := s.sets.Load(key)
	if !ok {
		return 0, nil
	}
	set.mu.RLock()
	n := int64(len(set.members))
	set.mu.RUnlock()
	return n, nil
}

func (s *storeImpl) KeysMatching(pattern string) ([]string, error) {
	matches := []string{}
	s.sets.Range(func(key string, _ *memSet) bool {
		if kv.MatchPattern(pattern, key) {
			matches = append(matches, key)
		}
		return true
	})
	s.hashes.Range(func(key string, _ *memHash) bool {
		if kv.MatchPattern(pattern, key) {
			matches = append(matches, key)
		}
		return true
	})
	return matches, nil
}

func (s *storeImpl) Delete(keys ...string) error {
	for _, key := range keys {
		s.sets.Delete(key)
		s.hashes.Delete(key)
	}
	return nil
}

func (s *storeImpl) HashSetAll(key string, fields map[string][]byte) error {
	copied := make(map[string][]byte, len(fields))
	for field, value := range fields {
		copied[field] = append([]byte(nil), value...)
	}

	hash, _ := s.hashes.LoadOrCompute(key, func() *memHash {
		return &memHash{}
	})
	hash.mu.Lock()
	hash.fields = copied
	hash.mu.Unlock()
	return nil
}

func (s *storeImpl) HashGetAll(key string) (map[string][]byte, error) {
	hash, ok := s.hashes.Load(key)
	if !ok {
		return nil, nil
	}
	hash.mu.RLock()
	fields := make(map[string][]byte, len(hash.fields))
	for field, value := range hash.fields {
		fields[field] = append([]byte(nil), value...)
	}
	hash.mu.RUnlock()
	return fields, nil
}

func (s *storeImpl) Close() error {
	s.sets.Clear()
	s.hashes.Clear()
	return nil
}
