package boltkv

import (
	"path/filepath"
	"testing"

	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/kv/kvtest"
)

func TestBoltStore(t *testing.T) {
	kvtest.RunStoreTests(t, "boltkv", func() kv.Store {
		path := filepath.Join(t.TempDir(), "keydex.db")
		store, err := Open(path)
		if err != nil {
			t.Fatalf("failed to open bolt store: %v", err)
		}
		return store
	})
}

func TestBoltStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keydex.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open bolt store: %v", err)
	}
	if err := store.SetAdd("persons", "key-1"); err != nil {
		t.Fatalf("SetAdd failed: %v", err)
	}
	if err := store.HashSetAll("persons:key-1", map[string][]byte{"firstname": []byte("Rand")}); err != nil {
		t.Fatalf("HashSetAll failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store, err = Open(path)
	if err != nil {
		t.Fatalf("failed to reopen bolt store: %v", err)
	}
	defer store.Close()

	ok, err := store.SetIsMember("persons", "key-1")
	if err != nil || !ok {
		t.Errorf("expected membership to survive reopen (ok=%v, err=%v)", ok, err)
	}
	fields, err := store.HashGetAll("persons:key-1")
	if err != nil || string(fields["firstname"]) != "Rand" {
		t.Errorf("expected hash to survive reopen, got %v (err=%v)", fields, err)
	}
}
