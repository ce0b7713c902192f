// Package ldb wraps goleveldb behind the small key-value surface the chain
// store needs: point reads and writes on the live database, and snapshot
// reads with batched writes inside a transaction.
package ldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var defaultOptions = opt.Options{
	Compression:            opt.NoCompression,
	DisableSeeksCompaction: true,
}

// LevelDB is an open database handle. Methods are safe for concurrent use.
type LevelDB struct {
	ldb *leveldb.DB
}

// NewLevelDB opens the database at the given path, creating it if it does
// not exist. A database that fails to open because of corruption is run
// through leveldb's recovery before giving up.
func NewLevelDB(path string) (*LevelDB, error) {
	options := defaultOptions
	ldb, err := leveldb.OpenFile(path, &options)
	if _, corrupted := err.(*ldbErrors.ErrCorrupted); corrupted {
		log.Warnf("LevelDB corruption detected for path %s: %s", path, err)
		ldb, err = leveldb.RecoverFile(path, &options)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		log.Warnf("LevelDB recovered from corruption for path %s", path)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &LevelDB{ldb: ldb}, nil
}

// Close releases the database handle. The LevelDB must not be used after
// Close returns.
func (db *LevelDB) Close() error {
	return errors.WithStack(db.ldb.Close())
}

// Put stores value under key, replacing any value already there.
func (db *LevelDB) Put(key []byte, value []byte) error {
	return errors.WithStack(db.ldb.Put(key, value, nil))
}

// Get returns the value stored under key, or nil when the key is absent.
func (db *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := db.ldb.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return value, nil
}

// Has reports whether key is present.
func (db *LevelDB) Has(key []byte) (bool, error) {
	exists, err := db.ldb.Has(key, nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return exists, nil
}

// Delete removes the given key. Deleting a key that does not exist is not an
// error.
func (db *LevelDB) Delete(key []byte) error {
	return errors.WithStack(db.ldb.Delete(key, nil))
}
