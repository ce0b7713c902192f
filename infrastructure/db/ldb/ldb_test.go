package ldb

import (
	"bytes"
	"testing"
)

func openTestDB(t *testing.T) *LevelDB {
	db, err := NewLevelDB(t.TempDir())
	if err != nil {
		t.Fatalf("NewLevelDB unexpectedly failed: %s", err)
	}
	t.Cleanup(func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("Close unexpectedly failed: %s", err)
		}
	})
	return db
}

func TestLevelDBSanity(t *testing.T) {
	db := openTestDB(t)

	key := []byte("key")
	putData := []byte("Hello world!")
	err := db.Put(key, putData)
	if err != nil {
		t.Fatalf("Put returned unexpected error: %s", err)
	}

	getData, err := db.Get(key)
	if err != nil {
		t.Fatalf("Get returned unexpected error: %s", err)
	}
	if !bytes.Equal(getData, putData) {
		t.Fatalf("get data and put data are not equal. Put: %s, got: %s",
			string(putData), string(getData))
	}

	exists, err := db.Has(key)
	if err != nil {
		t.Fatalf("Has returned unexpected error: %s", err)
	}
	if !exists {
		t.Fatalf("Has returned false for a key that was put")
	}

	err = db.Delete(key)
	if err != nil {
		t.Fatalf("Delete returned unexpected error: %s", err)
	}
	getData, err = db.Get(key)
	if err != nil {
		t.Fatalf("Get returned unexpected error: %s", err)
	}
	if getData != nil {
		t.Fatalf("Get returned data for a deleted key: %s", string(getData))
	}
}

func TestLevelDBGetMiss(t *testing.T) {
	db := openTestDB(t)

	getData, err := db.Get([]byte("no such key"))
	if err != nil {
		t.Fatalf("Get should not fail on a missing key: %s", err)
	}
	if getData != nil {
		t.Fatalf("Get returned data for a missing key: %s", string(getData))
	}
}

func TestLevelDBTransactionSanity(t *testing.T) {
	db := openTestDB(t)

	// Commit path
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin unexpectedly failed: %s", err)
	}
	key := []byte("key")
	putData := []byte("Hello world!")
	err = tx.Put(key, putData)
	if err != nil {
		t.Fatalf("Put returned unexpected error: %s", err)
	}

	// The write is batched, not yet in the database.
	getData, err := db.Get(key)
	if err != nil {
		t.Fatalf("Get returned unexpected error: %s", err)
	}
	if getData != nil {
		t.Fatalf("an uncommitted write is already visible: %s", string(getData))
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("Commit returned unexpected error: %s", err)
	}
	getData, err = db.Get(key)
	if err != nil {
		t.Fatalf("Get returned unexpected error: %s", err)
	}
	if !bytes.Equal(getData, putData) {
		t.Fatalf("get data and put data are not equal. Put: %s, got: %s",
			string(putData), string(getData))
	}

	// Rollback path
	tx, err = db.Begin()
	if err != nil {
		t.Fatalf("Begin unexpectedly failed: %s", err)
	}
	err = tx.Put([]byte("rolled back key"), []byte("rolled back data"))
	if err != nil {
		t.Fatalf("Put returned unexpected error: %s", err)
	}
	err = tx.Rollback()
	if err != nil {
		t.Fatalf("Rollback returned unexpected error: %s", err)
	}
	getData, err = db.Get([]byte("rolled back key"))
	if err != nil {
		t.Fatalf("Get returned unexpected error: %s", err)
	}
	if getData != nil {
		t.Fatalf("a rolled back write is visible: %s", string(getData))
	}

	err = tx.Commit()
	if err == nil {
		t.Fatalf("committing a closed transaction should fail")
	}
}

func TestLevelDBTransactionSnapshotIsolation(t *testing.T) {
	db := openTestDB(t)

	key := []byte("key")
	err := db.Put(key, []byte("before"))
	if err != nil {
		t.Fatalf("Put returned unexpected error: %s", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin unexpectedly failed: %s", err)
	}
	defer func() {
		err := tx.Rollback()
		if err != nil {
			t.Fatalf("Rollback unexpectedly failed: %s", err)
		}
	}()

	// A write landing after Begin must not be visible to the snapshot.
	err = db.Put(key, []byte("after"))
	if err != nil {
		t.Fatalf("Put returned unexpected error: %s", err)
	}

	getData, err := tx.Get(key)
	if err != nil {
		t.Fatalf("Get returned unexpected error: %s", err)
	}
	if !bytes.Equal(getData, []byte("before")) {
		t.Fatalf("the snapshot observed a write that landed after Begin: %s", string(getData))
	}
}

func TestLevelDBCursorSanity(t *testing.T) {
	db := openTestDB(t)

	entries := map[string]string{
		"outputs/aaa": "1",
		"outputs/bbb": "2",
		"outputs/ccc": "3",
		"kernels/aaa": "4",
	}
	for key, value := range entries {
		err := db.Put([]byte(key), []byte(value))
		if err != nil {
			t.Fatalf("Put returned unexpected error: %s", err)
		}
	}

	cursor := db.Cursor([]byte("outputs/"))
	defer func() {
		err := cursor.Close()
		if err != nil {
			t.Fatalf("Close returned unexpected error: %s", err)
		}
	}()

	expectedKeys := []string{"aaa", "bbb", "ccc"}
	expectedValues := []string{"1", "2", "3"}
	for i := 0; ; i++ {
		hasNext, err := cursor.Next()
		if err != nil {
			t.Fatalf("Next returned unexpected error: %s", err)
		}
		if !hasNext {
			if i != len(expectedKeys) {
				t.Fatalf("the cursor was exhausted after %d entries instead of %d", i, len(expectedKeys))
			}
			break
		}
		if i >= len(expectedKeys) {
			t.Fatalf("the cursor returned more entries than the prefix holds")
		}
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key returned unexpected error: %s", err)
		}
		if string(key) != expectedKeys[i] {
			t.Fatalf("the cursor returned key %s instead of %s", string(key), expectedKeys[i])
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("Value returned unexpected error: %s", err)
		}
		if string(value) != expectedValues[i] {
			t.Fatalf("the cursor returned value %s instead of %s", string(value), expectedValues[i])
		}
	}
}

func TestLevelDBCursorClosed(t *testing.T) {
	db := openTestDB(t)

	cursor := db.Cursor([]byte("outputs/"))
	err := cursor.Close()
	if err != nil {
		t.Fatalf("Close returned unexpected error: %s", err)
	}

	_, err = cursor.Next()
	if err == nil {
		t.Fatalf("Next on a closed cursor unexpectedly succeeded")
	}
	_, err = cursor.Key()
	if err == nil {
		t.Fatalf("Key on a closed cursor unexpectedly succeeded")
	}
	_, err = cursor.Value()
	if err == nil {
		t.Fatalf("Value on a closed cursor unexpectedly succeeded")
	}
	err = cursor.Close()
	if err == nil {
		t.Fatalf("Close on a closed cursor unexpectedly succeeded")
	}
}
