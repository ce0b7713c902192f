package externalapi

import "fmt"

// MMRTree names one of the chain's Merkle accumulator trees.
type MMRTree byte

// The accumulator trees tracked by the chain store.
const (
	MMRTreeUTXO MMRTree = iota
	MMRTreeKernel
)

func (tree MMRTree) String() string {
	switch tree {
	case MMRTreeUTXO:
		return "UTXO"
	case MMRTreeKernel:
		return "Kernel"
	default:
		return fmt.Sprintf("MMRTree(%d)", byte(tree))
	}
}
