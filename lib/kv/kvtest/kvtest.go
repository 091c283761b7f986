package kvtest

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/keydex/keydex/lib/kv"
)

// RunStoreTests runs a conformance test suite for a kv.Store implementation.
// Every backend (memkv, boltkv, rpc client) must pass this suite so that the
// index engine observes identical semantics regardless of the engine it runs
// against.
func RunStoreTests(t *testing.T, name string, factory kv.StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("SetAdd&Members", func(t *testing.T) {
			testSetAddMembers(t, factory())
		})

		t.Run("SetRemove", func(t *testing.T) {
			testSetRemove(t, factory())
		})

		t.Run("SetIsMember", func(t *testing.T) {
			testSetIsMember(t, factory())
		})

		t.Run("SetCardinality", func(t *testing.T) {
			testSetCardinality(t, factory())
		})

		t.Run("KeysMatching", func(t *testing.T) {
			testKeysMatching(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Hash", func(t *testing.T) {
			testHash(t, factory())
		})

		t.Run("AbsentKeys", func(t *testing.T) {
			testAbsentKeys(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustOK(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func sortedMembers(t testing.TB, store kv.Store, key string) []string {
	t.Helper()
	members, err := store.SetMembers(key)
	mustOK(t, err)
	sort.Strings(members)
	return members
}

func expectMembers(t testing.TB, store kv.Store, key string, want ...string) {
	t.Helper()
	got := sortedMembers(t, store, key)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("set %s: expected members %v, got %v", key, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("set %s: expected members %v, got %v", key, want, got)
		}
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetAddMembers(t *testing.T, store kv.Store) {
	defer store.Close()

	mustOK(t, store.SetAdd("colors", "red"))
	mustOK(t, store.SetAdd("colors", "green"))
	expectMembers(t, store, "colors", "red", "green")

	// Adds are idempotent
	mustOK(t, store.SetAdd("colors", "red"))
	expectMembers(t, store, "colors", "red", "green")
}

func testSetRemove(t *testing.T, store kv.Store) {
	defer store.Close()

	mustOK(t, store.SetAdd("colors", "red"))
	mustOK(t, store.SetAdd("colors", "green"))

	mustOK(t, store.SetRemove("colors", "red"))
	expectMembers(t, store, "colors", "green")

	// Removing an absent member or from an absent set is a no-op
	mustOK(t, store.SetRemove("colors", "red"))
	mustOK(t, store.SetRemove("nonexistent", "red"))

	// Removing the last member removes the key from scans
	mustOK(t, store.SetRemove("colors", "green"))
	keys, err := store.KeysMatching("colors")
	mustOK(t, err)
	if len(keys) != 0 {
		t.Errorf("expected empty set to disappear from scans, got %v", keys)
	}
}

func testSetIsMember(t *testing.T, store kv.Store) {
	defer store.Close()

	mustOK(t, store.SetAdd("colors", "red"))

	if ok, err := store.SetIsMember("colors", "red"); err != nil || !ok {
		t.Errorf("expected red to be a member (ok=%v, err=%v)", ok, err)
	}
	if ok, err := store.SetIsMember("colors", "blue"); err != nil || ok {
		t.Errorf("expected blue not to be a member (ok=%v, err=%v)", ok, err)
	}
	if ok, err := store.SetIsMember("nonexistent", "red"); err != nil || ok {
		t.Errorf("expected absent set to have no members (ok=%v, err=%v)", ok, err)
	}
}

func testSetCardinality(t *testing.T, store kv.Store) {
	defer store.Close()

	if n, err := store.SetCardinality("colors"); err != nil || n != 0 {
		t.Errorf("expected cardinality 0 for absent set, got %d (err=%v)", n, err)
	}

	for i := 0; i < 5; i++ {
		mustOK(t, store.SetAdd("colors", fmt.Sprintf("color-%d", i)))
	}
	if n, err := store.SetCardinality("colors"); err != nil || n != 5 {
		t.Errorf("expected cardinality 5, got %d (err=%v)", n, err)
	}
}

func testKeysMatching(t *testing.T, store kv.Store) {
	defer store.Close()

	mustOK(t, store.SetAdd("persons:firstname:rand", "key-1"))
	mustOK(t, store.SetAdd("persons:firstname:mat", "key-2"))
	mustOK(t, store.SetAdd("persons:lastname:cauthon", "key-2"))
	mustOK(t, store.SetAdd("cities:name:caemlyn", "key-3"))
	mustOK(t, store.HashSetAll("persons:key-1", map[string][]byte{"firstname": []byte("rand")}))

	cases := []struct {
		pattern string
		want    []string
	}{
		{"persons:firstname:*", []string{"persons:firstname:mat", "persons:firstname:rand"}},
		{"persons:*:*", []string{"persons:firstname:mat", "persons:firstname:rand", "persons:lastname:cauthon"}},
		{"persons:firstname:rand", []string{"persons:firstname:rand"}},
		{"persons:address.city:*", []string{}},
		{"cities:*:*", []string{"cities:name:caemlyn"}},
	}

	for _, tc := range cases {
		got, err := store.KeysMatching(tc.pattern)
		mustOK(t, err)
		sort.Strings(got)
		if len(got) != len(tc.want) {
			t.Errorf("pattern %s: expected %v, got %v", tc.pattern, tc.want, got)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("pattern %s: expected %v, got %v", tc.pattern, tc.want, got)
				break
			}
		}
	}
}

func testDelete(t *testing.T, store kv.Store) {
	defer store.Close()

	mustOK(t, store.SetAdd("colors", "red"))
	mustOK(t, store.SetAdd("shapes", "circle"))
	mustOK(t, store.HashSetAll("records:1", map[string][]byte{"a": []byte("b")}))

	// Bulk delete across sets and hashes
	mustOK(t, store.Delete("colors", "records:1", "nonexistent"))

	expectMembers(t, store, "colors")
	fields, err := store.HashGetAll("records:1")
	mustOK(t, err)
	if len(fields) != 0 {
		t.Errorf("expected hash to be deleted, got %v", fields)
	}
	expectMembers(t, store, "shapes", "circle")

	// Zero keys is a no-op
	mustOK(t, store.Delete())
}

func testHash(t *testing.T, store kv.Store) {
	defer store.Close()

	fields := map[string][]byte{
		"firstname": []byte("Rand"),
		"age":       []byte("20"),
	}
	mustOK(t, store.HashSetAll("persons:key-1", fields))

	got, err := store.HashGetAll("persons:key-1")
	mustOK(t, err)
	if len(got) != 2 || !bytes.Equal(got["firstname"], []byte("Rand")) || !bytes.Equal(got["age"], []byte("20")) {
		t.Errorf("unexpected hash contents: %v", got)
	}

	// HashSetAll overwrites the whole record
	mustOK(t, store.HashSetAll("persons:key-1", map[string][]byte{"firstname": []byte("Mat")}))
	got, err = store.HashGetAll("persons:key-1")
	mustOK(t, err)
	if len(got) != 1 || !bytes.Equal(got["firstname"], []byte("Mat")) {
		t.Errorf("expected overwritten hash, got %v", got)
	}
}

func testAbsentKeys(t *testing.T, store kv.Store) {
	defer store.Close()

	members, err := store.SetMembers("nonexistent")
	mustOK(t, err)
	if len(members) != 0 {
		t.Errorf("expected empty members for absent set, got %v", members)
	}

	fields, err := store.HashGetAll("nonexistent")
	mustOK(t, err)
	if len(fields) != 0 {
		t.Errorf("expected empty hash for absent key, got %v", fields)
	}

	keys, err := store.KeysMatching("nonexistent:*")
	mustOK(t, err)
	if len(keys) != 0 {
		t.Errorf("expected no matches, got %v", keys)
	}
}
