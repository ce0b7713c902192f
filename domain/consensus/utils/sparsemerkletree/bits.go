package sparsemerkletree

import (
	"math/bits"

	"github.com/pkg/errors"
)

// traverseDirection selects a branch child. Bit 0 goes left, bit 1 goes
// right.
type traverseDirection int

const (
	directionLeft traverseDirection = iota
	directionRight
)

func (direction traverseDirection) flip() traverseDirection {
	if direction == directionLeft {
		return directionRight
	}
	return directionLeft
}

// keyBit returns the bit of key at the given index, counting from the most
// significant bit of the first byte.
func keyBit(key *NodeKey, index int) int {
	return int(key[index/8]>>(7-uint(index)%8)) & 1
}

// countCommonPrefix returns the number of leading bits shared by two keys.
func countCommonPrefix(a, b *NodeKey) int {
	count := 0
	for i := 0; i < KeyLength; i++ {
		difference := a[i] ^ b[i]
		if difference == 0 {
			count += 8
			continue
		}
		return count + bits.LeadingZeros8(difference)
	}
	return count
}

// heightKey returns the key a branch at the given height carries: the first
// `height` bits of key with everything after them zeroed.
func heightKey(key *NodeKey, height int) NodeKey {
	var result NodeKey
	if height >= 8*KeyLength {
		return *key
	}
	fullBytes := height / 8
	copy(result[:fullBytes], key[:fullBytes])
	if remainingBits := uint(height % 8); remainingBits > 0 {
		result[fullBytes] = key[fullBytes] & (byte(0xff) << (8 - remainingBits))
	}
	return result
}

// branchDirection returns the direction to take at a branch toward childKey.
// The child key must agree with the branch's key on every bit the branch's
// ancestors have consumed; a disagreement means childKey does not belong to
// the branch's subtree.
func branchDirection(branchHeight int, branchKey, childKey *NodeKey) (traverseDirection, error) {
	if countCommonPrefix(branchKey, childKey) < branchHeight {
		return 0, errors.Errorf("key %s does not belong under the branch at "+
			"height %d with key %s", childKey, branchHeight, branchKey)
	}
	if keyBit(childKey, branchHeight) == 0 {
		return directionLeft, nil
	}
	return directionRight, nil
}
