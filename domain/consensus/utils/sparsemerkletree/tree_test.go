package sparsemerkletree

import (
	"errors"
	"testing"
)

func testKey(bytes ...byte) *NodeKey {
	key := &NodeKey{}
	copy(key[:], bytes)
	return key
}

func testValue(b byte) *ValueHash {
	value := &ValueHash{}
	for i := range value {
		value[i] = b
	}
	return value
}

func TestEmptyTree(t *testing.T) {
	tree := New()
	if !tree.IsEmpty() {
		t.Fatal("a new tree is not empty")
	}
	if tree.Size() != 0 {
		t.Fatalf("a new tree has size %d", tree.Size())
	}
	if tree.Hash() != EmptyNodeHash {
		t.Fatalf("a new tree has root hash %s", tree.Hash())
	}
	if _, ok := tree.Root().(*EmptyNode); !ok {
		t.Fatalf("a new tree has root of type %T", tree.Root())
	}

	value, err := tree.Get(testKey(1))
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if value != nil {
		t.Fatalf("Get on an empty tree returned %s", value)
	}
	contains, err := tree.Contains(testKey(1))
	if err != nil {
		t.Fatalf("Contains: %+v", err)
	}
	if contains {
		t.Fatal("Contains on an empty tree returned true")
	}
	deleted, err := tree.Delete(testKey(1))
	if err != nil {
		t.Fatalf("Delete: %+v", err)
	}
	if deleted != nil {
		t.Fatalf("Delete on an empty tree returned %s", deleted)
	}
}

func TestSingleLeafTree(t *testing.T) {
	tree := New()
	key, value := testKey(0x40), testValue(0x80)
	previous, err := tree.Upsert(key, value)
	if err != nil {
		t.Fatalf("Upsert: %+v", err)
	}
	if previous != nil {
		t.Fatalf("Upsert of a fresh key returned previous value %s", previous)
	}
	if tree.Size() != 1 {
		t.Fatalf("tree size is %d after one insert", tree.Size())
	}
	if tree.Hash() != NewLeafNode(key, value).Hash() {
		t.Fatalf("single leaf tree root %s does not match the leaf hash", tree.Hash())
	}

	got, err := tree.Get(key)
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if got == nil || *got != *value {
		t.Fatalf("Get returned %v, want %s", got, value)
	}
	otherValue, err := tree.Get(testKey(0x41))
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if otherValue != nil {
		t.Fatalf("Get of an absent key returned %s", otherValue)
	}
}

func TestUpsertReplacesValue(t *testing.T) {
	tree := New()
	key := testKey(0x40)
	first, second := testValue(1), testValue(2)

	_, err := tree.Upsert(key, first)
	if err != nil {
		t.Fatalf("Upsert: %+v", err)
	}
	hashBefore := tree.Hash()

	previous, err := tree.Upsert(key, second)
	if err != nil {
		t.Fatalf("Upsert: %+v", err)
	}
	if previous == nil || *previous != *first {
		t.Fatalf("Upsert returned previous value %v, want %s", previous, first)
	}
	if tree.Size() != 1 {
		t.Fatalf("tree size is %d after replacing a value", tree.Size())
	}
	if tree.Hash() == hashBefore {
		t.Fatal("the root hash did not change when a value was replaced")
	}
	got, err := tree.Get(key)
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if got == nil || *got != *second {
		t.Fatalf("Get returned %v, want %s", got, second)
	}
}

func TestInsertExistingKey(t *testing.T) {
	tree := New()
	key := testKey(0x40)
	err := tree.Insert(key, testValue(1))
	if err != nil {
		t.Fatalf("Insert: %+v", err)
	}
	err = tree.Insert(key, testValue(2))
	if !errors.Is(err, ErrKeyExists) {
		t.Fatalf("Insert of an existing key returned %v, want ErrKeyExists", err)
	}
	got, err := tree.Get(key)
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if got == nil || *got != *testValue(1) {
		t.Fatal("the failed insert changed the stored value")
	}
}

func TestRootHashMatchesManualAssembly(t *testing.T) {
	// 0x00... goes left at the first bit and 0x80... goes right, so the two
	// leaves hang off a single branch at height 0.
	leftKey, rightKey := testKey(0x00), testKey(0x80)
	leftValue, rightValue := testValue(1), testValue(2)

	branch, err := NewBranchNode(0, NodeKey{},
		NewLeafNode(leftKey, leftValue), NewLeafNode(rightKey, rightValue))
	if err != nil {
		t.Fatalf("NewBranchNode: %+v", err)
	}

	tree := New()
	for _, leaf := range []struct {
		key   *NodeKey
		value *ValueHash
	}{{leftKey, leftValue}, {rightKey, rightValue}} {
		_, err := tree.Upsert(leaf.key, leaf.value)
		if err != nil {
			t.Fatalf("Upsert: %+v", err)
		}
	}

	if tree.Hash() != branch.Hash() {
		t.Fatalf("tree root %s does not match the manually assembled root %s",
			tree.Hash(), branch.Hash())
	}
}

func TestBuildOrderIndependence(t *testing.T) {
	keys := make([]*NodeKey, 16)
	values := make([]*ValueHash, 16)
	for i := range keys {
		keys[i] = testKey(byte(i*37), byte(i*101), 0, byte(i))
		values[i] = testValue(byte(i + 1))
	}

	forward := New()
	for i := range keys {
		err := forward.Insert(keys[i], values[i])
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
	}
	backward := New()
	for i := len(keys) - 1; i >= 0; i-- {
		err := backward.Insert(keys[i], values[i])
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
	}
	interleaved := New()
	for i := 0; i < len(keys); i += 2 {
		err := interleaved.Insert(keys[i], values[i])
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
	}
	for i := 1; i < len(keys); i += 2 {
		err := interleaved.Insert(keys[i], values[i])
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
	}

	if forward.Hash() != backward.Hash() {
		t.Fatalf("insertion order changed the root: %s vs %s", forward.Hash(), backward.Hash())
	}
	if forward.Hash() != interleaved.Hash() {
		t.Fatalf("insertion order changed the root: %s vs %s", forward.Hash(), interleaved.Hash())
	}
	if forward.Size() != uint64(len(keys)) {
		t.Fatalf("tree size is %d, want %d", forward.Size(), len(keys))
	}
}

func TestDeleteBubblesLoneSiblingUp(t *testing.T) {
	// The keys share their first 12 bits, so the two leaves sit below a
	// chain of single-child branches. Deleting one must bubble the other
	// all the way back to the root.
	keptKey, deletedKey := testKey(0xAB, 0xC0), testKey(0xAB, 0xC8)
	keptValue := testValue(1)

	tree := New()
	_, err := tree.Upsert(keptKey, keptValue)
	if err != nil {
		t.Fatalf("Upsert: %+v", err)
	}
	_, err = tree.Upsert(deletedKey, testValue(2))
	if err != nil {
		t.Fatalf("Upsert: %+v", err)
	}
	if _, ok := tree.Root().(*BranchNode); !ok {
		t.Fatalf("two diverging keys made a root of type %T", tree.Root())
	}

	deleted, err := tree.Delete(deletedKey)
	if err != nil {
		t.Fatalf("Delete: %+v", err)
	}
	if deleted == nil || *deleted != *testValue(2) {
		t.Fatalf("Delete returned %v, want %s", deleted, testValue(2))
	}
	if tree.Size() != 1 {
		t.Fatalf("tree size is %d after the delete", tree.Size())
	}
	leaf, ok := tree.Root().(*LeafNode)
	if !ok {
		t.Fatalf("the lone sibling did not bubble up to the root, root is %T", tree.Root())
	}
	if leaf.Key() != *keptKey {
		t.Fatalf("the root leaf has key %s, want %s", leaf.Key(), keptKey)
	}
	if tree.Hash() != NewLeafNode(keptKey, keptValue).Hash() {
		t.Fatalf("tree root %s does not match the kept leaf's hash", tree.Hash())
	}
}

func TestDeleteLeavesBranchSiblingInPlace(t *testing.T) {
	// 0x80... and 0xC0... diverge at the second bit, so they live under a
	// branch at height 1. That branch survives the deletion of 0x00...,
	// whose slot at the root simply becomes empty.
	keyA, keyB, keyC := testKey(0x00), testKey(0x80), testKey(0xC0)
	valueB, valueC := testValue(2), testValue(3)

	tree := New()
	for _, leaf := range []struct {
		key   *NodeKey
		value *ValueHash
	}{{keyA, testValue(1)}, {keyB, valueB}, {keyC, valueC}} {
		_, err := tree.Upsert(leaf.key, leaf.value)
		if err != nil {
			t.Fatalf("Upsert: %+v", err)
		}
	}

	deleted, err := tree.Delete(keyA)
	if err != nil {
		t.Fatalf("Delete: %+v", err)
	}
	if deleted == nil {
		t.Fatal("Delete did not find the key")
	}
	if tree.Size() != 2 {
		t.Fatalf("tree size is %d after the delete", tree.Size())
	}

	inner, err := NewBranchNode(1, *testKey(0x80),
		NewLeafNode(keyB, valueB), NewLeafNode(keyC, valueC))
	if err != nil {
		t.Fatalf("NewBranchNode: %+v", err)
	}
	expected, err := NewBranchNode(0, NodeKey{}, &EmptyNode{}, inner)
	if err != nil {
		t.Fatalf("NewBranchNode: %+v", err)
	}
	if tree.Hash() != expected.Hash() {
		t.Fatalf("tree root %s does not match the expected root %s", tree.Hash(), expected.Hash())
	}

	contains, err := tree.Contains(keyA)
	if err != nil {
		t.Fatalf("Contains: %+v", err)
	}
	if contains {
		t.Fatal("the deleted key is still in the tree")
	}
}

func TestDeleteMissingKey(t *testing.T) {
	tree := New()
	_, err := tree.Upsert(testKey(0x00), testValue(1))
	if err != nil {
		t.Fatalf("Upsert: %+v", err)
	}
	_, err = tree.Upsert(testKey(0x80), testValue(2))
	if err != nil {
		t.Fatalf("Upsert: %+v", err)
	}
	hashBefore := tree.Hash()

	deleted, err := tree.Delete(testKey(0x40))
	if err != nil {
		t.Fatalf("Delete: %+v", err)
	}
	if deleted != nil {
		t.Fatalf("Delete of an absent key returned %s", deleted)
	}
	if tree.Size() != 2 {
		t.Fatalf("Delete of an absent key changed the size to %d", tree.Size())
	}
	if tree.Hash() != hashBefore {
		t.Fatal("Delete of an absent key changed the root hash")
	}
}

func TestDeleteThenReinsertRestoresRoot(t *testing.T) {
	tree := New()
	keys := []*NodeKey{testKey(0x11), testKey(0x85), testKey(0x86)}
	for i, key := range keys {
		_, err := tree.Upsert(key, testValue(byte(i+1)))
		if err != nil {
			t.Fatalf("Upsert: %+v", err)
		}
	}
	hashBefore := tree.Hash()

	_, err := tree.Delete(keys[1])
	if err != nil {
		t.Fatalf("Delete: %+v", err)
	}
	if tree.Hash() == hashBefore {
		t.Fatal("the root hash did not change on delete")
	}

	_, err = tree.Upsert(keys[1], testValue(2))
	if err != nil {
		t.Fatalf("Upsert: %+v", err)
	}
	if tree.Hash() != hashBefore {
		t.Fatalf("reinserting the deleted leaf gave root %s, want %s", tree.Hash(), hashBefore)
	}
}

func TestDeleteMatchesFreshBuild(t *testing.T) {
	keys := make([]*NodeKey, 64)
	values := make([]*ValueHash, 64)
	for i := range keys {
		keys[i] = testKey(byte(i*53), byte(i*7), byte(i*131), byte(i))
		values[i] = testValue(byte(i + 1))
	}

	tree := New()
	for i := range keys {
		err := tree.Insert(keys[i], values[i])
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
	}
	for i := 1; i < len(keys); i += 2 {
		deleted, err := tree.Delete(keys[i])
		if err != nil {
			t.Fatalf("Delete: %+v", err)
		}
		if deleted == nil {
			t.Fatalf("Delete did not find key %s", keys[i])
		}
	}

	fresh := New()
	for i := 0; i < len(keys); i += 2 {
		err := fresh.Insert(keys[i], values[i])
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
	}

	if tree.Size() != fresh.Size() {
		t.Fatalf("sizes diverged: %d vs %d", tree.Size(), fresh.Size())
	}
	if tree.Hash() != fresh.Hash() {
		t.Fatalf("deleting half the keys gave root %s, a fresh tree of the "+
			"remaining keys gives %s", tree.Hash(), fresh.Hash())
	}

	for i := range keys {
		contains, err := tree.Contains(keys[i])
		if err != nil {
			t.Fatalf("Contains: %+v", err)
		}
		if contains != (i%2 == 0) {
			t.Fatalf("Contains(%s) = %t after the deletes", keys[i], contains)
		}
	}
}

func TestDeleteLastLeafEmptiesTree(t *testing.T) {
	tree := New()
	key, value := testKey(0x40), testValue(1)
	_, err := tree.Upsert(key, value)
	if err != nil {
		t.Fatalf("Upsert: %+v", err)
	}
	deleted, err := tree.Delete(key)
	if err != nil {
		t.Fatalf("Delete: %+v", err)
	}
	if deleted == nil || *deleted != *value {
		t.Fatalf("Delete returned %v, want %s", deleted, value)
	}
	if !tree.IsEmpty() {
		t.Fatal("the tree is not empty after its only leaf was deleted")
	}
	if tree.Hash() != EmptyNodeHash {
		t.Fatalf("an emptied tree has root hash %s", tree.Hash())
	}
	if _, ok := tree.Root().(*EmptyNode); !ok {
		t.Fatalf("an emptied tree has root of type %T", tree.Root())
	}
}

func TestBranchNodeShapeRules(t *testing.T) {
	_, err := NewBranchNode(0, NodeKey{}, &EmptyNode{}, &EmptyNode{})
	if err == nil {
		t.Fatal("NewBranchNode accepted two empty children")
	}
	_, err = NewBranchNode(0, NodeKey{}, &EmptyNode{}, NewLeafNode(testKey(0x80), testValue(1)))
	if err == nil {
		t.Fatal("NewBranchNode accepted an empty child next to a leaf child")
	}
	_, err = NewBranchNode(0, NodeKey{}, NewLeafNode(testKey(0x00), testValue(1)), &EmptyNode{})
	if err == nil {
		t.Fatal("NewBranchNode accepted a leaf child next to an empty child")
	}
}

func TestKeyBits(t *testing.T) {
	if bit := keyBit(testKey(0x80), 0); bit != 1 {
		t.Errorf("keyBit(0x80..., 0) = %d, want 1", bit)
	}
	if bit := keyBit(testKey(0x01), 7); bit != 1 {
		t.Errorf("keyBit(0x01..., 7) = %d, want 1", bit)
	}
	if bit := keyBit(testKey(0x00, 0x80), 8); bit != 1 {
		t.Errorf("keyBit(0x0080..., 8) = %d, want 1", bit)
	}

	if prefix := countCommonPrefix(testKey(0xF0), testKey(0xF8)); prefix != 4 {
		t.Errorf("countCommonPrefix(0xF0..., 0xF8...) = %d, want 4", prefix)
	}
	if prefix := countCommonPrefix(testKey(0x00), testKey(0x80)); prefix != 0 {
		t.Errorf("countCommonPrefix(0x00..., 0x80...) = %d, want 0", prefix)
	}
	sameKey := testKey(0xAB, 0xCD)
	if prefix := countCommonPrefix(sameKey, sameKey); prefix != 8*KeyLength {
		t.Errorf("countCommonPrefix of identical keys = %d, want %d", prefix, 8*KeyLength)
	}

	masked := heightKey(testKey(0xFF, 0xFF), 4)
	if masked != *testKey(0xF0) {
		t.Errorf("heightKey(0xFFFF..., 4) = %s, want 0xF0 followed by zeros", masked)
	}
	full := heightKey(testKey(0xFF, 0xFF), 8*KeyLength)
	if full != *testKey(0xFF, 0xFF) {
		t.Errorf("heightKey at the full key length changed the key to %s", full)
	}
}

func TestByteSliceConstructors(t *testing.T) {
	_, err := NodeKeyFromByteSlice(make([]byte, KeyLength-1))
	if err == nil {
		t.Error("NodeKeyFromByteSlice accepted a short slice")
	}
	_, err = ValueHashFromByteSlice(make([]byte, KeyLength+1))
	if err == nil {
		t.Error("ValueHashFromByteSlice accepted a long slice")
	}

	serialized := make([]byte, KeyLength)
	serialized[0] = 0xAB
	key, err := NodeKeyFromByteSlice(serialized)
	if err != nil {
		t.Fatalf("NodeKeyFromByteSlice: %+v", err)
	}
	if *key != *testKey(0xAB) {
		t.Errorf("NodeKeyFromByteSlice returned %s", key)
	}
}
