// Package sparsemerkletree implements the sparse Merkle tree that commits to
// the unspent output set. Keys are 256-bit paths from the root, leaves hang
// at the highest node that distinguishes their key from every other key, and
// empty subtrees collapse into a single well-known hash, so the tree stays
// proportional to the number of leaves rather than to the key space.
//
// Branch hashes are cached and recomputed lazily: mutations mark the path
// they touch as stale, and the next root hash request recomputes exactly the
// stale branches.
package sparsemerkletree

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// KeyLength is the length of node keys, value hashes and node hashes.
const KeyLength = 32

// NodeKey is a leaf's 256-bit path from the root, most significant bit first.
type NodeKey [KeyLength]byte

// String returns the key as a hex string.
func (key NodeKey) String() string {
	return hex.EncodeToString(key[:])
}

// NodeKeyFromByteSlice converts a byte slice to a NodeKey.
func NodeKeyFromByteSlice(serialized []byte) (*NodeKey, error) {
	if len(serialized) != KeyLength {
		return nil, errors.Errorf("invalid node key size. Want: %d, got: %d",
			KeyLength, len(serialized))
	}
	key := &NodeKey{}
	copy(key[:], serialized)
	return key, nil
}

// NodeHash is the hash of a tree node.
type NodeHash [KeyLength]byte

// String returns the hash as a hex string.
func (hash NodeHash) String() string {
	return hex.EncodeToString(hash[:])
}

// ValueHash is the hash of the data stored at a leaf.
type ValueHash [KeyLength]byte

// String returns the value hash as a hex string.
func (value ValueHash) String() string {
	return hex.EncodeToString(value[:])
}

// ValueHashFromByteSlice converts a byte slice to a ValueHash.
func ValueHashFromByteSlice(serialized []byte) (*ValueHash, error) {
	if len(serialized) != KeyLength {
		return nil, errors.Errorf("invalid value hash size. Want: %d, got: %d",
			KeyLength, len(serialized))
	}
	value := &ValueHash{}
	copy(value[:], serialized)
	return value, nil
}

// EmptyNodeHash is the hash of every empty subtree.
var EmptyNodeHash = NodeHash{}

// Domain prefixes separating leaf hashes from branch hashes.
const (
	leafHashPrefix   = byte('V')
	branchHashPrefix = byte('B')
)

// Node is a node of the tree: an *EmptyNode, a *LeafNode or a *BranchNode.
type Node interface {
	// Hash returns the node's hash, recomputing it first if it is stale.
	Hash() NodeHash
}

// EmptyNode marks an empty subtree.
type EmptyNode struct{}

// Hash returns the well-known hash of empty subtrees.
func (*EmptyNode) Hash() NodeHash {
	return EmptyNodeHash
}

// LeafNode stores a value hash at its key. A leaf's hash is computed eagerly
// at construction since leaves never change.
type LeafNode struct {
	key   NodeKey
	hash  NodeHash
	value ValueHash
}

// NewLeafNode returns a leaf storing value at key.
func NewLeafNode(key *NodeKey, value *ValueHash) *LeafNode {
	return &LeafNode{
		key:   *key,
		hash:  hashLeaf(key, value),
		value: *value,
	}
}

// Key returns the leaf's key.
func (leaf *LeafNode) Key() NodeKey {
	return leaf.key
}

// Value returns the leaf's value hash.
func (leaf *LeafNode) Value() ValueHash {
	return leaf.value
}

// Hash returns the leaf's hash.
func (leaf *LeafNode) Hash() NodeHash {
	return leaf.hash
}

// buildTree merges the leaf with another leaf into the chain of branches that
// distinguishes their keys, starting at the given height. All intermediate
// branches between the start height and the height where the keys diverge
// carry the merged subtree on one side and an empty subtree on the other.
func (leaf *LeafNode) buildTree(height int, other *LeafNode) (*BranchNode, error) {
	divergeHeight := countCommonPrefix(&leaf.key, &other.key)
	if divergeHeight < height {
		return nil, errors.Errorf("Diverge height %d is less than height %d",
			divergeHeight, height)
	}
	rootKey := heightKey(&leaf.key, height)
	if divergeHeight == height {
		if keyBit(&leaf.key, height) == 0 {
			return NewBranchNode(height, rootKey, leaf, other)
		}
		return NewBranchNode(height, rootKey, other, leaf)
	}
	child, err := leaf.buildTree(height+1, other)
	if err != nil {
		return nil, err
	}
	if keyBit(&leaf.key, height) == 0 {
		return NewBranchNode(height, rootKey, child, &EmptyNode{})
	}
	return NewBranchNode(height, rootKey, &EmptyNode{}, child)
}

// BranchNode has two children and covers every key agreeing with its own key
// on the first `height` bits.
type BranchNode struct {
	height      int
	key         NodeKey
	hash        NodeHash
	isHashStale bool
	left        Node
	right       Node
}

// NewBranchNode returns a branch with the given children. Branches exist only
// to distinguish keys, so two shapes are rejected: two empty children, which
// distinguish nothing, and an empty child next to a leaf child, which is
// always representable by the leaf alone.
func NewBranchNode(height int, key NodeKey, left, right Node) (*BranchNode, error) {
	_, leftEmpty := left.(*EmptyNode)
	_, rightEmpty := right.(*EmptyNode)
	if leftEmpty && rightEmpty {
		return nil, errors.New("Both left and right nodes are empty")
	}
	_, leftLeaf := left.(*LeafNode)
	_, rightLeaf := right.(*LeafNode)
	if (leftEmpty && rightLeaf) || (rightEmpty && leftLeaf) {
		return nil, errors.New("A branch node cannot have an empty node and a leaf node as children")
	}
	return &BranchNode{
		height:      height,
		key:         key,
		isHashStale: true,
		left:        left,
		right:       right,
	}, nil
}

// Height returns the branch's height: the number of key bits its ancestors
// have already consumed.
func (branch *BranchNode) Height() int {
	return branch.height
}

// Key returns the branch's key: the common prefix of all keys below it,
// padded with zero bits.
func (branch *BranchNode) Key() NodeKey {
	return branch.key
}

// Left returns the left child.
func (branch *BranchNode) Left() Node {
	return branch.left
}

// Right returns the right child.
func (branch *BranchNode) Right() Node {
	return branch.right
}

// Hash returns the branch's hash, recomputing the stale parts of the subtree
// first.
func (branch *BranchNode) Hash() NodeHash {
	if branch.isHashStale {
		leftHash := branch.left.Hash()
		rightHash := branch.right.Hash()
		branch.hash = hashBranch(branch.height, &branch.key, &leftHash, &rightHash)
		branch.isHashStale = false
	}
	return branch.hash
}

func (branch *BranchNode) child(direction traverseDirection) Node {
	if direction == directionLeft {
		return branch.left
	}
	return branch.right
}

func (branch *BranchNode) setChild(direction traverseDirection, child Node) {
	if direction == directionLeft {
		branch.left = child
	} else {
		branch.right = child
	}
}

func hashLeaf(key *NodeKey, value *ValueHash) NodeHash {
	preimage := make([]byte, 0, 1+2*KeyLength)
	preimage = append(preimage, leafHashPrefix)
	preimage = append(preimage, key[:]...)
	preimage = append(preimage, value[:]...)
	return NodeHash(blake2b.Sum256(preimage))
}

func hashBranch(height int, key *NodeKey, leftHash, rightHash *NodeHash) NodeHash {
	var heightBytes [8]byte
	binary.LittleEndian.PutUint64(heightBytes[:], uint64(height))
	preimage := make([]byte, 0, 1+8+3*KeyLength)
	preimage = append(preimage, branchHashPrefix)
	preimage = append(preimage, heightBytes[:]...)
	preimage = append(preimage, key[:]...)
	preimage = append(preimage, leftHash[:]...)
	preimage = append(preimage, rightHash[:]...)
	return NodeHash(blake2b.Sum256(preimage))
}
