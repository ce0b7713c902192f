// Package memorychainbackend implements a BlockchainBackend over plain maps.
// It serves tests and light deployments that hold the whole chain state in
// memory; durable deployments use the chainstore package instead.
package memorychainbackend

import (
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensushashing"
)

type chainKernel struct {
	kernel    *externalapi.DomainTransactionKernel
	blockHash *externalapi.DomainHash
}

// MemoryChainBackend holds chain state in memory. It is not safe for
// concurrent use; callers serialize access the same way they serialize
// validation runs.
type MemoryChainBackend struct {
	outputs             map[externalapi.DomainHash]*externalapi.DomainTransactionOutput
	unspentByCommitment map[externalapi.DomainCommitment]externalapi.DomainHash
	kernelsByExcessSig  map[externalapi.DomainSignature]*chainKernel
	leafIndexes         map[externalapi.MMRTree]map[externalapi.DomainHash]uint64
}

var _ model.BlockchainBackend = (*MemoryChainBackend)(nil)

// New instantiates an empty MemoryChainBackend.
func New() *MemoryChainBackend {
	return &MemoryChainBackend{
		outputs:             make(map[externalapi.DomainHash]*externalapi.DomainTransactionOutput),
		unspentByCommitment: make(map[externalapi.DomainCommitment]externalapi.DomainHash),
		kernelsByExcessSig:  make(map[externalapi.DomainSignature]*chainKernel),
		leafIndexes: map[externalapi.MMRTree]map[externalapi.DomainHash]uint64{
			externalapi.MMRTreeUTXO:   make(map[externalapi.DomainHash]uint64),
			externalapi.MMRTreeKernel: make(map[externalapi.DomainHash]uint64),
		},
	}
}

// StoreOutput records the output as a new unspent output and returns its
// hash. Storing an output that already exists is a no-op.
func (mcb *MemoryChainBackend) StoreOutput(output *externalapi.DomainTransactionOutput) *externalapi.DomainHash {
	outputHash := consensushashing.OutputHash(output)
	if _, ok := mcb.outputs[*outputHash]; ok {
		return outputHash
	}

	mcb.outputs[*outputHash] = output.Clone()
	mcb.unspentByCommitment[output.Commitment] = *outputHash
	mcb.appendLeaf(externalapi.MMRTreeUTXO, outputHash)
	return outputHash
}

// SpendOutput marks the output with the given hash as spent. The output stays
// fetchable by hash and keeps its accumulator leaf; only the unspent
// commitment index forgets it.
func (mcb *MemoryChainBackend) SpendOutput(outputHash *externalapi.DomainHash) error {
	output, ok := mcb.outputs[*outputHash]
	if !ok {
		return errors.Errorf("output %s is not in the backend", outputHash)
	}
	if unspentHash, ok := mcb.unspentByCommitment[output.Commitment]; ok && unspentHash == *outputHash {
		delete(mcb.unspentByCommitment, output.Commitment)
	}
	return nil
}

// StoreKernel records the kernel as mined in the block with the given hash.
func (mcb *MemoryChainBackend) StoreKernel(kernel *externalapi.DomainTransactionKernel,
	blockHash *externalapi.DomainHash) {

	kernelHash := consensushashing.KernelHash(kernel)
	if _, ok := mcb.leafIndexes[externalapi.MMRTreeKernel][*kernelHash]; ok {
		return
	}

	mcb.kernelsByExcessSig[kernel.ExcessSig] = &chainKernel{kernel: kernel.Clone(), blockHash: blockHash}
	mcb.appendLeaf(externalapi.MMRTreeKernel, kernelHash)
}

// ApplyBody applies a resolved body as the contents of the block with the
// given hash: its inputs are spent, its outputs and kernels stored. The body
// must have passed contextual validation; a failure mid-apply leaves the
// backend partially updated.
func (mcb *MemoryChainBackend) ApplyBody(body *aggregatebody.AggregateBody,
	blockHash *externalapi.DomainHash) error {

	for _, output := range body.Outputs() {
		mcb.StoreOutput(output)
	}
	for _, input := range body.Inputs() {
		err := mcb.SpendOutput(consensushashing.InputOutputHash(input))
		if err != nil {
			return err
		}
	}
	for _, kernel := range body.Kernels() {
		mcb.StoreKernel(kernel, blockHash)
	}
	return nil
}

// Leaf indexes are append-only: an output's index survives its spend, the way
// an accumulator leaf survives in the tree.
func (mcb *MemoryChainBackend) appendLeaf(tree externalapi.MMRTree, hash *externalapi.DomainHash) {
	leaves := mcb.leafIndexes[tree]
	leaves[*hash] = uint64(len(leaves))
}

// FetchKernelByExcessSig returns the kernel carrying the given excess
// signature and the hash of the block it was mined in.
func (mcb *MemoryChainBackend) FetchKernelByExcessSig(excessSig *externalapi.DomainSignature) (
	*externalapi.DomainTransactionKernel, *externalapi.DomainHash, error) {

	entry, ok := mcb.kernelsByExcessSig[*excessSig]
	if !ok {
		return nil, nil, nil
	}
	return entry.kernel.Clone(), entry.blockHash, nil
}

// FetchUnspentOutputHashByCommitment returns the hash of the unspent output
// carrying the given commitment.
func (mcb *MemoryChainBackend) FetchUnspentOutputHashByCommitment(commitment *externalapi.DomainCommitment) (
	*externalapi.DomainHash, error) {

	outputHash, ok := mcb.unspentByCommitment[*commitment]
	if !ok {
		return nil, nil
	}
	return &outputHash, nil
}

// FetchOutput returns the output with the given hash, spent or unspent.
func (mcb *MemoryChainBackend) FetchOutput(outputHash *externalapi.DomainHash) (
	*externalapi.DomainTransactionOutput, error) {

	output, ok := mcb.outputs[*outputHash]
	if !ok {
		return nil, nil
	}
	return output.Clone(), nil
}

// FetchMMRLeafIndex returns the leaf index of the given hash in the given
// accumulator tree.
func (mcb *MemoryChainBackend) FetchMMRLeafIndex(tree externalapi.MMRTree, hash *externalapi.DomainHash) (
	uint64, bool, error) {

	leaves, ok := mcb.leafIndexes[tree]
	if !ok {
		return 0, false, errors.Errorf("unknown accumulator tree %s", tree)
	}
	index, ok := leaves[*hash]
	return index, ok, nil
}
