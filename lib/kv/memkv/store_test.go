package memkv

import (
	"fmt"
	"sync"
	"testing"

	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/kv/kvtest"
)

func TestMemStore(t *testing.T) {
	kvtest.RunStoreTests(t, "memkv", func() kv.Store {
		return NewStore()
	})
}

// Concurrent adds and removes on the same set must not lose unrelated
// members.
func TestMemStoreConcurrentSetOps(t *testing.T) {
	store := NewStore()
	defer store.Close()

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				member := fmt.Sprintf("member-%d-%d", w, i)
				if err := store.SetAdd("shared", member); err != nil {
					t.Errorf("SetAdd failed: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	n, err := store.SetCardinality("shared")
	if err != nil {
		t.Fatalf("SetCardinality failed: %v", err)
	}
	if n != workers*perWorker {
		t.Errorf("expected %d members, got %d", workers*perWorker, n)
	}
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"persons:firstname:*", "persons:firstname:Rand", true},
		{"persons:firstname:*", "persons:lastname:Rand", false},
		{"persons:*:*", "persons:firstname:Rand", true},
		{"persons:*:*", "persons:key-1:idx", true},
		{"persons:*:idx", "persons:key-1:idx", true},
		{"persons:*:idx", "persons:firstname:Rand", false},
		{"*", "anything", true},
		{"persons", "persons", true},
		{"persons", "cities", false},
		{"persons:address.city:*", "persons:address.city:London", true},
		{"persons:address.city:*", "persons:address:London", false},
	}

	for _, tc := range cases {
		if got := kv.MatchPattern(tc.pattern, tc.key); got != tc.want {
			t.Errorf("MatchPattern(%q, %q) = %v, expected %v", tc.pattern, tc.key, got, tc.want)
		}
	}
}
