package keymanager

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var keyIndexesBucket = []byte("key-indexes")

// IndexStore persists the next unused key index of every branch, keyed by
// the branch label, so a wallet never hands out the same key index twice
// across restarts.
type IndexStore struct {
	db *bolt.DB
}

// OpenIndexStore opens the index store held at the given path, creating it
// if it does not exist.
func OpenIndexStore(path string) (*IndexStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(keyIndexesBucket)
		return errors.WithStack(err)
	})
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			log.Warnf("Failed to close the index store after a bucket error: %s", closeErr)
		}
		return nil, err
	}
	return &IndexStore{db: db}, nil
}

// Close releases the underlying database.
func (store *IndexStore) Close() error {
	return errors.WithStack(store.db.Close())
}

// NextIndex hands out the next unused key index of the branch and advances
// the persisted counter.
func (store *IndexStore) NextIndex(branch TransactionKeyManagerBranch) (uint64, error) {
	var index uint64
	err := store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(keyIndexesBucket)
		key := []byte(branch.Label())
		index = decodeIndex(bucket.Get(key))
		return errors.WithStack(bucket.Put(key, encodeIndex(index+1)))
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// CurrentIndex returns the index NextIndex would hand out next, without
// advancing it.
func (store *IndexStore) CurrentIndex(branch TransactionKeyManagerBranch) (uint64, error) {
	var index uint64
	err := store.db.View(func(tx *bolt.Tx) error {
		index = decodeIndex(tx.Bucket(keyIndexesBucket).Get([]byte(branch.Label())))
		return nil
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return index, nil
}

func encodeIndex(index uint64) []byte {
	var encoded [8]byte
	binary.LittleEndian.PutUint64(encoded[:], index)
	return encoded[:]
}

func decodeIndex(data []byte) uint64 {
	if len(data) != 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(data)
}
