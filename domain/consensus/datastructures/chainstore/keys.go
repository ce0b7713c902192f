package chainstore

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusserialization"
	"github.com/tari-project/tari-sub014/util/binaryserializer"
)

// The key space is split into buckets by a path prefix, the same way keys of
// unrelated stores share one database instance.
const (
	outputsBucket         = "outputs/"
	unspentBucket         = "unspent-by-commitment/"
	kernelsBucket         = "kernels-by-excess-sig/"
	utxoLeafIndexBucket   = "leaf-indexes/utxo/"
	kernelLeafIndexBucket = "leaf-indexes/kernel/"
	utxoLeafCountKey      = "meta/utxo-leaf-count"
	kernelLeafCountKey    = "meta/kernel-leaf-count"
)

func makeKey(bucket string, suffix []byte) []byte {
	key := make([]byte, 0, len(bucket)+len(suffix))
	key = append(key, bucket...)
	return append(key, suffix...)
}

func outputKey(outputHash *externalapi.DomainHash) []byte {
	return makeKey(outputsBucket, outputHash.ByteSlice())
}

func unspentKey(commitment *externalapi.DomainCommitment) []byte {
	return makeKey(unspentBucket, commitment.ByteSlice())
}

func kernelKey(excessSig *externalapi.DomainSignature) ([]byte, error) {
	buffer := &bytes.Buffer{}
	err := consensusserialization.SerializeSignature(buffer, excessSig)
	if err != nil {
		return nil, err
	}
	return makeKey(kernelsBucket, buffer.Bytes()), nil
}

func leafIndexKey(tree externalapi.MMRTree, hash *externalapi.DomainHash) ([]byte, error) {
	switch tree {
	case externalapi.MMRTreeUTXO:
		return makeKey(utxoLeafIndexBucket, hash.ByteSlice()), nil
	case externalapi.MMRTreeKernel:
		return makeKey(kernelLeafIndexBucket, hash.ByteSlice()), nil
	default:
		return nil, errors.Errorf("unknown accumulator tree %s", tree)
	}
}

func encodeUint64(value uint64) ([]byte, error) {
	buffer := &bytes.Buffer{}
	err := binaryserializer.PutUint64(buffer, value)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func decodeUint64(data []byte) (uint64, error) {
	return binaryserializer.Uint64(bytes.NewReader(data))
}

// An output record carries the height the output was mined at in front of the
// serialized output, so the accumulator leaf value can be recomputed without
// a separate height index.
func encodeOutputRecord(output *externalapi.DomainTransactionOutput, minedHeight uint64) ([]byte, error) {
	buffer := &bytes.Buffer{}
	err := binaryserializer.PutUint64(buffer, minedHeight)
	if err != nil {
		return nil, err
	}
	err = consensusserialization.SerializeTransactionOutput(buffer, output)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func decodeOutputRecord(data []byte) (*externalapi.DomainTransactionOutput, uint64, error) {
	reader := bytes.NewReader(data)
	minedHeight, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, 0, err
	}
	output, err := consensusserialization.DeserializeTransactionOutput(reader)
	if err != nil {
		return nil, 0, err
	}
	return output, minedHeight, nil
}

// A kernel record carries the hash of the block the kernel was mined in in
// front of the serialized kernel.
func encodeKernelRecord(kernel *externalapi.DomainTransactionKernel,
	blockHash *externalapi.DomainHash) ([]byte, error) {

	buffer := &bytes.Buffer{}
	err := consensusserialization.SerializeDomainHash(buffer, blockHash)
	if err != nil {
		return nil, err
	}
	err = consensusserialization.SerializeTransactionKernel(buffer, kernel)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func decodeKernelRecord(data []byte) (*externalapi.DomainTransactionKernel, *externalapi.DomainHash, error) {
	reader := bytes.NewReader(data)
	blockHash, err := consensusserialization.DeserializeDomainHash(reader)
	if err != nil {
		return nil, nil, err
	}
	kernel, err := consensusserialization.DeserializeTransactionKernel(reader)
	if err != nil {
		return nil, nil, err
	}
	return kernel, blockHash, nil
}
