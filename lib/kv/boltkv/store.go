package boltkv

import (
	"fmt"

	"github.com/keydex/keydex/lib/kv"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketSets   = []byte("sets")
	bucketHashes = []byte("hashes")
)

type storeImpl struct {
	db *bolt.DB
}

// Open creates or opens a bolt-backed store at the given path. Sets and
// hashes are stored as nested buckets below one top-level bucket each, so a
// set key and a hash key never collide with one another in the file.
func Open(path string) (kv.Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSets); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketHashes)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return &storeImpl{db: db}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see kv/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) SetAdd(key, member string) error {
	return s.update(func(tx *bolt.Tx) error {
		set, err := tx.Bucket(bucketSets).CreateBucketIfNotExists([]byte(key))
		if err != nil {
			return err
		}
		return set.Put([]byte(member), nil)
	})
}

func (s *storeImpl) SetRemove(key, member string) error {
	return s.update(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		set := sets.Bucket([]byte(key))
		if set == nil {
			return nil
		}
		if err := set.Delete([]byte(member)); err != nil {
			return err
		}

		// Drop the set bucket once the last member is gone so that key
		// scans never observe empty sets.
		if k, _ := set.Cursor().First(); k == nil {
			return sets.DeleteBucket([]byte(key))
		}
		return nil
	})
}

func (s *storeImpl) SetMembers(key string) ([]string, error) {
	members := []string{}
	err := s.view(func(tx *bolt.Tx) error {
		set := tx.Bucket(bucketSets).Bucket([]byte(key))
		if set == nil {
			return nil
		}
		return set.ForEach(func(k, _ []byte) error {
			members = append(members, string(k))
			return nil
		})
	})
	return members, err
}

func (s *storeImpl) SetIsMember(key, member string) (bool, error) {
	var found bool
	err := s.view(func(tx *bolt.Tx) error {
		set := tx.Bucket(bucketSets).Bucket([]byte(key))
		if set == nil {
			return nil
		}
		// A nil value is a valid member marker, so probe with the cursor.
		k, _ := set.Cursor().Seek([]byte(member))
		found = string(k) == member
		return nil
	})
	return found, err
}

func (s *storeImpl) SetCardinality(key string) (int64, error) {
	var n int64
	err := s.view(func(tx *bolt.Tx) error {
		set := tx.Bucket(bucketSets).Bucket([]byte(key))
		if set == nil {
			return nil
		}
		n = int64(set.Stats().KeyN)
		return nil
	})
	return n, err
}

func (s *storeImpl) KeysMatching(pattern string) ([]string, error) {
	matches := []string{}
	err := s.view(func(tx *bolt.Tx) error {
		for _, top := range [][]byte{bucketSets, bucketHashes} {
			err := tx.Bucket(top).ForEachBucket(func(k []byte) error {
				if kv.MatchPattern(pattern, string(k)) {
					matches = append(matches, string(k))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return matches, err
}

func (s *storeImpl) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.update(func(tx *bolt.Tx) error {
		for _, key := range keys {
			for _, top := range [][]byte{bucketSets, bucketHashes} {
				err := tx.Bucket(top).DeleteBucket([]byte(key))
				if err != nil && err != bolt.ErrBucketNotFound {
					return err
				}
			}
		}
		return nil
	})
}

func (s *storeImpl) HashSetAll(key string, fields map[string][]byte) error {
	return s.update(func(tx *bolt.Tx) error {
		hashes := tx.Bucket(bucketHashes)

		// Overwrite semantics: drop the previous hash contents entirely.
		err := hashes.DeleteBucket([]byte(key))
		if err != nil && err != bolt.ErrBucketNotFound {
			return err
		}

		hash, err := hashes.CreateBucket([]byte(key))
		if err != nil {
			return err
		}
		for field, value := range fields {
			if err := hash.Put([]byte(field), value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *storeImpl) HashGetAll(key string) (map[string][]byte, error) {
	var fields map[string][]byte
	err := s.view(func(tx *bolt.Tx) error {
		hash := tx.Bucket(bucketHashes).Bucket([]byte(key))
		if hash == nil {
			return nil
		}
		fields = make(map[string][]byte)
		return hash.ForEach(func(k, v []byte) error {
			fields[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	return fields, err
}

func (s *storeImpl) Close() error {
	return s.db.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *storeImpl) update(fn func(tx *bolt.Tx) error) error {
	if err := s.db.Update(fn); err != nil {
		return kv.NewError(kv.RetCInternalError, err.Error())
	}
	return nil
}

func (s *storeImpl) view(fn func(tx *bolt.Tx) error) error {
	if err := s.db.View(fn); err != nil {
		return kv.NewError(kv.RetCInternalError, err.Error())
	}
	return nil
}
