package sparsemerkletree

import (
	"github.com/pkg/errors"
)

// ErrKeyExists is returned by Insert when the key is already in the tree.
var ErrKeyExists = errors.New("the key already exists in the tree")

// SparseMerkleTree is a mutable sparse Merkle tree. The zero value is not
// usable; use New.
//
// The tree is not safe for concurrent use.
type SparseMerkleTree struct {
	size uint64
	root Node
}

// New returns an empty tree.
func New() *SparseMerkleTree {
	return &SparseMerkleTree{root: &EmptyNode{}}
}

// Size returns the number of leaves in the tree.
func (tree *SparseMerkleTree) Size() uint64 {
	return tree.size
}

// IsEmpty returns whether the tree has no leaves.
func (tree *SparseMerkleTree) IsEmpty() bool {
	return tree.size == 0
}

// Root returns the root node.
func (tree *SparseMerkleTree) Root() Node {
	return tree.root
}

// Hash returns the root hash, recomputing any stale parts of the tree first.
func (tree *SparseMerkleTree) Hash() NodeHash {
	return tree.root.Hash()
}

// Get returns the value stored at key, or nil if the key is not in the tree.
func (tree *SparseMerkleTree) Get(key *NodeKey) (*ValueHash, error) {
	node := tree.root
	for {
		switch current := node.(type) {
		case *EmptyNode:
			return nil, nil
		case *LeafNode:
			if current.key == *key {
				value := current.value
				return &value, nil
			}
			return nil, nil
		case *BranchNode:
			direction, err := branchDirection(current.height, &current.key, key)
			if err != nil {
				return nil, err
			}
			node = current.child(direction)
		default:
			return nil, errors.Errorf("unknown node type %T", node)
		}
	}
}

// Contains returns whether key is in the tree.
func (tree *SparseMerkleTree) Contains(key *NodeKey) (bool, error) {
	value, err := tree.Get(key)
	if err != nil {
		return false, err
	}
	return value != nil, nil
}

// Upsert stores value at key. It returns the previous value when the key was
// already present, or nil when a new leaf was inserted.
func (tree *SparseMerkleTree) Upsert(key *NodeKey, value *ValueHash) (*ValueHash, error) {
	switch root := tree.root.(type) {
	case *EmptyNode:
		tree.root = NewLeafNode(key, value)
		tree.size++
		return nil, nil
	case *LeafNode:
		if root.key == *key {
			previous := root.value
			tree.root = NewLeafNode(key, value)
			return &previous, nil
		}
		branch, err := root.buildTree(0, NewLeafNode(key, value))
		if err != nil {
			return nil, err
		}
		tree.root = branch
		tree.size++
		return nil, nil
	case *BranchNode:
		parent, direction, _, err := tree.findTerminalBranch(root, key, true)
		if err != nil {
			return nil, err
		}
		return tree.insertOrUpdateLeaf(parent, direction, key, value)
	default:
		return nil, errors.Errorf("unknown node type %T", tree.root)
	}
}

// Insert stores value at key and fails with ErrKeyExists when the key is
// already present.
func (tree *SparseMerkleTree) Insert(key *NodeKey, value *ValueHash) error {
	exists, err := tree.Contains(key)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(ErrKeyExists, "key %s", key)
	}
	_, err = tree.Upsert(key, value)
	return err
}

// Delete removes the leaf at key. It returns the deleted value, or nil when
// the key was not in the tree.
func (tree *SparseMerkleTree) Delete(key *NodeKey) (*ValueHash, error) {
	switch root := tree.root.(type) {
	case *EmptyNode:
		return nil, nil
	case *LeafNode:
		if root.key != *key {
			return nil, nil
		}
		value := root.value
		tree.root = &EmptyNode{}
		tree.size--
		return &value, nil
	case *BranchNode:
		return tree.deleteFromBranches(root, key)
	default:
		return nil, errors.Errorf("unknown node type %T", tree.root)
	}
}

// findTerminalBranch descends from root toward key until the next node in the
// path is no longer a branch, and returns that last branch together with the
// direction of the non-branch child. When markStale is set every branch on
// the path is marked stale, which is how mutations invalidate cached hashes.
// The returned slice records, per visited branch, whether the child off the
// path is empty; deletion uses it to decide how far a lone sibling bubbles up.
func (tree *SparseMerkleTree) findTerminalBranch(root *BranchNode, key *NodeKey,
	markStale bool) (*BranchNode, traverseDirection, []bool, error) {

	current := root
	var emptySiblings []bool
	for {
		if markStale {
			current.isHashStale = true
		}
		direction, err := branchDirection(current.height, &current.key, key)
		if err != nil {
			return nil, 0, nil, err
		}
		_, siblingEmpty := current.child(direction.flip()).(*EmptyNode)
		emptySiblings = append(emptySiblings, siblingEmpty)

		child, childIsBranch := current.child(direction).(*BranchNode)
		if !childIsBranch {
			return current, direction, emptySiblings, nil
		}
		current = child
	}
}

// insertOrUpdateLeaf places the value under the terminal branch found for
// key: straight into an empty slot, as a replacement of the key's existing
// leaf, or by growing the branch chain that separates the new key from the
// other leaf occupying its slot.
func (tree *SparseMerkleTree) insertOrUpdateLeaf(parent *BranchNode,
	direction traverseDirection, key *NodeKey, value *ValueHash) (*ValueHash, error) {

	switch terminal := parent.child(direction).(type) {
	case *EmptyNode:
		parent.setChild(direction, NewLeafNode(key, value))
		tree.size++
		return nil, nil
	case *LeafNode:
		if terminal.key == *key {
			previous := terminal.value
			parent.setChild(direction, NewLeafNode(key, value))
			return &previous, nil
		}
		branch, err := terminal.buildTree(parent.height+1, NewLeafNode(key, value))
		if err != nil {
			return nil, err
		}
		parent.setChild(direction, branch)
		tree.size++
		return nil, nil
	default:
		return nil, errors.Errorf("the terminal node is unexpectedly a %T", terminal)
	}
}

func (tree *SparseMerkleTree) deleteFromBranches(root *BranchNode, key *NodeKey) (*ValueHash, error) {
	// The first traversal only locates the leaf. Nothing is marked stale
	// until the deletion is known to happen.
	parent, direction, emptySiblings, err := tree.findTerminalBranch(root, key, false)
	if err != nil {
		return nil, err
	}
	leaf, terminalIsLeaf := parent.child(direction).(*LeafNode)
	if !terminalIsLeaf || leaf.key != *key {
		return nil, nil
	}
	value := leaf.value

	if _, siblingIsBranch := parent.child(direction.flip()).(*BranchNode); siblingIsBranch {
		// The parent keeps distinguishing keys after the deletion, so the
		// leaf's slot just becomes empty. A second traversal marks the path
		// stale.
		parent.setChild(direction, &EmptyNode{})
		_, _, _, err = tree.findTerminalBranch(root, key, true)
		if err != nil {
			return nil, err
		}
		tree.size--
		return &value, nil
	}

	// The sibling is a leaf, so the parent degenerates: the sibling bubbles
	// up past every ancestor branch whose other child is empty, since those
	// branches distinguished nothing but the deleted key.
	branchesToPrune := 1
	for i := len(emptySiblings) - 2; i >= 0 && emptySiblings[i]; i-- {
		branchesToPrune++
	}
	depth := parent.height + 1 - branchesToPrune
	err = tree.attachOrphanAtDepth(key, depth, parent.child(direction.flip()))
	if err != nil {
		return nil, err
	}
	tree.size--
	return &value, nil
}

// attachOrphanAtDepth replaces the node at the given depth on key's path with
// the orphan, marking the branches above it stale.
func (tree *SparseMerkleTree) attachOrphanAtDepth(key *NodeKey, depth int, orphan Node) error {
	if depth == 0 {
		tree.root = orphan
		return nil
	}
	current, ok := tree.root.(*BranchNode)
	if !ok {
		return errors.New("the root is unexpectedly not a branch")
	}
	for level := 0; ; level++ {
		current.isHashStale = true
		direction, err := branchDirection(current.height, &current.key, key)
		if err != nil {
			return err
		}
		if level == depth-1 {
			current.setChild(direction, orphan)
			return nil
		}
		child, childIsBranch := current.child(direction).(*BranchNode)
		if !childIsBranch {
			return errors.Errorf("expected a branch at level %d on the way to depth %d", level+1, depth)
		}
		current = child
	}
}
