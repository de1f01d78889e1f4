package rewrite

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// boltGraphStore is the on-disk GraphStore backend named in SPEC_FULL.md §5
// as the "very large histories" alternative to memGraphStore. It keeps the
// same logical structures (the four maps plus Roots), one bbolt bucket
// each. Every bucket except refs is keyed by raw plumbing.Hash bytes so no
// string conversion is needed on the hot path; refs is keyed by reference
// name.
//
// Hash-list values (parents, children) are stored as a flat concatenation
// of fixed-width plumbing.HashSize chunks - the simplest encoding that
// needs no separate codec dependency, matching the teacher's preference
// for hand-rolled binary layouts over generic codecs for small, internal
// record types (see remote/plumbing/changes.go's util.ToBytes use, which
// takes the same "just serialize the bytes" approach).
type boltGraphStore struct {
	db *bolt.DB
}

var (
	bucketParents  = []byte("parents")
	bucketChildren = []byte("children")
	bucketRoots    = []byte("roots")
	bucketRefs     = []byte("refs")
	bucketMapping  = []byte("mapping")
)

// NewBoltGraphStore opens (creating if necessary) a bbolt database at path
// and returns a GraphStore backed by it. Callers are responsible for
// calling Close when the rewrite run completes.
func NewBoltGraphStore(path string) (*boltGraphStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketParents, bucketChildren, bucketRoots, bucketRefs, bucketMapping} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(ErrOutOfMemory, err.Error())
	}

	return &boltGraphStore{db: db}, nil
}

// Close releases the underlying database file.
func (b *boltGraphStore) Close() error {
	return b.db.Close()
}

func encodeHashes(hs []plumbing.Hash) []byte {
	buf := make([]byte, 0, len(hs)*plumbing.HashSize)
	for _, h := range hs {
		buf = append(buf, h[:]...)
	}
	return buf
}

func decodeHashes(raw []byte) []plumbing.Hash {
	n := len(raw) / plumbing.HashSize
	out := make([]plumbing.Hash, n)
	for i := 0; i < n; i++ {
		copy(out[i][:], raw[i*plumbing.HashSize:(i+1)*plumbing.HashSize])
	}
	return out
}

func (b *boltGraphStore) RecordParents(child plumbing.Hash, parents []plumbing.Hash) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		parentsB := tx.Bucket(bucketParents)
		if parentsB.Get(child[:]) != nil {
			return nil
		}
		if err := parentsB.Put(child[:], encodeHashes(parents)); err != nil {
			return errors.Wrap(ErrOutOfMemory, err.Error())
		}

		if len(parents) == 0 {
			rootsB := tx.Bucket(bucketRoots)
			return rootsB.Put(child[:], []byte{1})
		}

		childrenB := tx.Bucket(bucketChildren)
		for _, p := range parents {
			existing := decodeHashes(childrenB.Get(p[:]))
			if containsHash(existing, child) {
				continue
			}
			existing = append(existing, child)
			if err := childrenB.Put(p[:], encodeHashes(existing)); err != nil {
				return errors.Wrap(ErrOutOfMemory, err.Error())
			}
		}
		return nil
	})
}

func containsHash(hs []plumbing.Hash, target plumbing.Hash) bool {
	for _, h := range hs {
		if h == target {
			return true
		}
	}
	return false
}

func (b *boltGraphStore) IsRecorded(c plumbing.Hash) (bool, error) {
	var recorded bool
	err := b.db.View(func(tx *bolt.Tx) error {
		recorded = tx.Bucket(bucketParents).Get(c[:]) != nil
		return nil
	})
	return recorded, err
}

func (b *boltGraphStore) Parents(c plumbing.Hash) ([]plumbing.Hash, error) {
	var out []plumbing.Hash
	err := b.db.View(func(tx *bolt.Tx) error {
		out = decodeHashes(tx.Bucket(bucketParents).Get(c[:]))
		return nil
	})
	return out, err
}

func (b *boltGraphStore) Children(p plumbing.Hash) ([]plumbing.Hash, error) {
	var out []plumbing.Hash
	err := b.db.View(func(tx *bolt.Tx) error {
		out = decodeHashes(tx.Bucket(bucketChildren).Get(p[:]))
		return nil
	})
	return out, err
}

func (b *boltGraphStore) Roots() ([]plumbing.Hash, error) {
	var out []plumbing.Hash
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRoots).ForEach(func(k, _ []byte) error {
			var h plumbing.Hash
			copy(h[:], k)
			out = append(out, h)
			return nil
		})
	})
	return out, err
}

func (b *boltGraphStore) SetRef(name plumbing.ReferenceName, id plumbing.Hash) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRefs).Put([]byte(name.String()), id[:])
	})
}

func (b *boltGraphStore) Refs() ([]RefEntry, error) {
	var out []RefEntry
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRefs).ForEach(func(k, v []byte) error {
			var h plumbing.Hash
			copy(h[:], v)
			out = append(out, RefEntry{Name: plumbing.ReferenceName(k), Old: h})
			return nil
		})
	})
	return out, err
}

func (b *boltGraphStore) SetMapping(old, new plumbing.Hash) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMapping).Put(old[:], new[:])
	})
}

func (b *boltGraphStore) Mapping(old plumbing.Hash) (plumbing.Hash, bool, error) {
	var new plumbing.Hash
	var ok bool
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMapping).Get(old[:])
		if v == nil {
			return nil
		}
		ok = true
		copy(new[:], v)
		return nil
	})
	return new, ok, err
}
