package model

import "github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"

// BlockchainBackend is the read surface of persisted chain state that
// validation consumes. Implementations must serve all reads of a single
// validation run from one consistent snapshot, otherwise an output could
// appear spent to one check and unspent to another within the same run.
//
// Lookup misses are not errors: the pointer-returning methods return nil and
// FetchMMRLeafIndex returns false. A non-nil error always means the backend
// itself failed, never that the body is invalid.
type BlockchainBackend interface {
	// FetchKernelByExcessSig returns the kernel carrying the given excess
	// signature and the hash of the block it was mined in.
	FetchKernelByExcessSig(excessSig *externalapi.DomainSignature) (
		*externalapi.DomainTransactionKernel, *externalapi.DomainHash, error)

	// FetchUnspentOutputHashByCommitment returns the hash of the unspent
	// output carrying the given commitment.
	FetchUnspentOutputHashByCommitment(commitment *externalapi.DomainCommitment) (
		*externalapi.DomainHash, error)

	// FetchOutput returns the output with the given hash, spent or unspent.
	FetchOutput(outputHash *externalapi.DomainHash) (*externalapi.DomainTransactionOutput, error)

	// FetchMMRLeafIndex returns the leaf index of the given hash in the
	// given accumulator tree.
	FetchMMRLeafIndex(tree externalapi.MMRTree, hash *externalapi.DomainHash) (uint64, bool, error)
}
