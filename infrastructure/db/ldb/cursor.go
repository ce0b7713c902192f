package ldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBCursor iterates over the keys that share a common prefix, in
// lexicographic key order.
type LevelDBCursor struct {
	ldbIterator iterator.Iterator
	prefix      []byte

	isClosed bool
}

// Cursor begins a new cursor over the given prefix.
func (db *LevelDB) Cursor(prefix []byte) *LevelDBCursor {
	ldbIterator := db.ldb.NewIterator(util.BytesPrefix(prefix), nil)
	return &LevelDBCursor{
		ldbIterator: ldbIterator,
		prefix:      prefix,
		isClosed:    false,
	}
}

// Next moves the cursor to the next key/value pair. It returns false when
// the cursor is exhausted.
func (c *LevelDBCursor) Next() (bool, error) {
	if c.isClosed {
		return false, errors.New("cannot call next on a closed cursor")
	}
	return c.ldbIterator.Next(), nil
}

// Key returns the current key with the cursor's prefix stripped. The
// returned slice is a copy and stays valid after the cursor advances.
func (c *LevelDBCursor) Key() ([]byte, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the key of a closed cursor")
	}
	fullKey := c.ldbIterator.Key()
	if fullKey == nil {
		return nil, errors.New("cannot get the key of an exhausted cursor")
	}
	suffix := fullKey[len(c.prefix):]
	suffixClone := make([]byte, len(suffix))
	copy(suffixClone, suffix)
	return suffixClone, nil
}

// Value returns the value of the current key/value pair. The returned slice
// is a copy and stays valid after the cursor advances.
func (c *LevelDBCursor) Value() ([]byte, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the value of a closed cursor")
	}
	value := c.ldbIterator.Value()
	if value == nil {
		return nil, errors.New("cannot get the value of an exhausted cursor")
	}
	valueClone := make([]byte, len(value))
	copy(valueClone, value)
	return valueClone, nil
}

// Close releases the cursor. Any error the underlying iterator accumulated
// is returned here.
func (c *LevelDBCursor) Close() error {
	if c.isClosed {
		return errors.New("cannot close an already closed cursor")
	}
	c.isClosed = true
	err := c.ldbIterator.Error()
	c.ldbIterator.Release()
	c.ldbIterator = nil
	c.prefix = nil
	return errors.WithStack(err)
}
