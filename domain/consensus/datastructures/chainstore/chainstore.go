// Package chainstore implements a durable BlockchainBackend over a leveldb
// instance. Besides the read surface validation consumes, it carries the
// write path that applies a validated body to the chain state: outputs are
// stored and indexed, spent outputs leave the unspent set, kernels are
// recorded under the block that mined them, and the unspent output set is
// mirrored into a sparse merkle tree whose root commits to the whole set.
package chainstore

import (
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensushashing"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/sparsemerkletree"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/utxolrucache"
	"github.com/tari-project/tari-sub014/infrastructure/db/ldb"
	"github.com/tari-project/tari-sub014/infrastructure/logger"
)

// Contextual validation fetches the spent output of every input, so output
// reads are served through a cache. Output records are immutable once
// stored, which means a cached record never goes stale.
const outputCacheSize = 10000

// ChainStore is the durable chain state. The unspent output set is mirrored
// into an in-memory sparse merkle tree that is rebuilt from the database on
// Open, so the tree and the database describe the same set at all times.
//
// A ChainStore is not safe for concurrent use, and reads are served from the
// live database, so serializing writes against validation runs is what makes
// a run see one consistent state. After a write error the in-memory
// accumulator state may be ahead of the database and the store must be
// reopened before further use.
type ChainStore struct {
	db              *ldb.LevelDB
	utxoTree        *sparsemerkletree.SparseMerkleTree
	outputCache     *utxolrucache.LRUCache
	utxoLeafCount   uint64
	kernelLeafCount uint64
}

var _ model.BlockchainBackend = (*ChainStore)(nil)

// Open opens the chain store held at the given path, creating it if it does
// not exist, and rebuilds the unspent output tree from the stored state.
func Open(path string) (*ChainStore, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ChainStore.Open")
	defer onEnd()

	db, err := ldb.NewLevelDB(path)
	if err != nil {
		return nil, err
	}
	store := &ChainStore{
		db:          db,
		utxoTree:    sparsemerkletree.New(),
		outputCache: utxolrucache.New(outputCacheSize),
	}
	err = store.load()
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			log.Warnf("Failed to close the database after a load error: %s", closeErr)
		}
		return nil, err
	}
	log.Infof("Chain store loaded: %d unspent outputs, %d output leaves, %d kernel leaves",
		store.utxoTree.Size(), store.utxoLeafCount, store.kernelLeafCount)
	return store, nil
}

// Close releases the underlying database.
func (cs *ChainStore) Close() error {
	return cs.db.Close()
}

func (cs *ChainStore) load() error {
	utxoLeafCount, err := cs.loadLeafCount([]byte(utxoLeafCountKey))
	if err != nil {
		return err
	}
	cs.utxoLeafCount = utxoLeafCount

	kernelLeafCount, err := cs.loadLeafCount([]byte(kernelLeafCountKey))
	if err != nil {
		return err
	}
	cs.kernelLeafCount = kernelLeafCount

	return cs.rebuildUnspentTree()
}

func (cs *ChainStore) loadLeafCount(key []byte) (uint64, error) {
	data, err := cs.db.Get(key)
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	return decodeUint64(data)
}

func (cs *ChainStore) rebuildUnspentTree() error {
	cursor := cs.db.Cursor([]byte(unspentBucket))
	err := cs.insertUnspentLeaves(cursor)
	if err != nil {
		closeErr := cursor.Close()
		if closeErr != nil {
			log.Warnf("Failed to close the unspent output cursor: %s", closeErr)
		}
		return err
	}
	return cursor.Close()
}

func (cs *ChainStore) insertUnspentLeaves(cursor *ldb.LevelDBCursor) error {
	for {
		hasNext, err := cursor.Next()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}
		hashBytes, err := cursor.Value()
		if err != nil {
			return err
		}
		outputHash, err := externalapi.NewDomainHashFromByteSlice(hashBytes)
		if err != nil {
			return err
		}
		recordBytes, err := cs.db.Get(outputKey(outputHash))
		if err != nil {
			return err
		}
		if recordBytes == nil {
			return errors.Errorf("the unspent index points at output %s "+
				"but the store holds no such output", outputHash)
		}
		_, minedHeight, err := decodeOutputRecord(recordBytes)
		if err != nil {
			return err
		}
		err = cs.insertUnspentLeaf(outputHash, minedHeight)
		if err != nil {
			return err
		}
	}
}

// The leaf value binds the output to the height it was mined at, so two
// chains holding the same outputs at different heights have different roots.
func (cs *ChainStore) insertUnspentLeaf(outputHash *externalapi.DomainHash, minedHeight uint64) error {
	nodeKey, err := sparsemerkletree.NodeKeyFromByteSlice(outputHash.ByteSlice())
	if err != nil {
		return err
	}
	valueHash := consensushashing.OutputSMTValueHash(outputHash, minedHeight)
	leafValue, err := sparsemerkletree.ValueHashFromByteSlice(valueHash.ByteSlice())
	if err != nil {
		return err
	}
	return cs.utxoTree.Insert(nodeKey, leafValue)
}

func rollbackUnlessClosed(tx *ldb.LevelDBTransaction) {
	err := tx.RollbackUnlessClosed()
	if err != nil {
		log.Warnf("Failed to rollback the transaction: %s", err)
	}
}

// StoreOutput records the output as a new unspent output mined at the given
// height and returns its hash. Storing an output that already exists is a
// no-op.
func (cs *ChainStore) StoreOutput(output *externalapi.DomainTransactionOutput,
	minedHeight uint64) (*externalapi.DomainHash, error) {

	tx, err := cs.db.Begin()
	if err != nil {
		return nil, err
	}
	defer rollbackUnlessClosed(tx)

	outputHash, err := cs.storeOutputInTransaction(tx, output, minedHeight)
	if err != nil {
		return nil, err
	}
	err = tx.Commit()
	if err != nil {
		return nil, err
	}
	return outputHash, nil
}

func (cs *ChainStore) storeOutputInTransaction(tx *ldb.LevelDBTransaction,
	output *externalapi.DomainTransactionOutput, minedHeight uint64) (*externalapi.DomainHash, error) {

	outputHash := consensushashing.OutputHash(output)
	has, err := cs.db.Has(outputKey(outputHash))
	if err != nil {
		return nil, err
	}
	if has {
		return outputHash, nil
	}

	record, err := encodeOutputRecord(output, minedHeight)
	if err != nil {
		return nil, err
	}
	err = tx.Put(outputKey(outputHash), record)
	if err != nil {
		return nil, err
	}
	err = tx.Put(unspentKey(&output.Commitment), outputHash.ByteSlice())
	if err != nil {
		return nil, err
	}
	err = cs.appendLeafInTransaction(tx, externalapi.MMRTreeUTXO, outputHash)
	if err != nil {
		return nil, err
	}
	return outputHash, cs.insertUnspentLeaf(outputHash, minedHeight)
}

// Leaf indexes are append-only: an output's index survives its spend, the
// way an accumulator leaf survives in the tree.
func (cs *ChainStore) appendLeafInTransaction(tx *ldb.LevelDBTransaction,
	tree externalapi.MMRTree, hash *externalapi.DomainHash) error {

	indexKey, err := leafIndexKey(tree, hash)
	if err != nil {
		return err
	}

	var count *uint64
	var countKey string
	switch tree {
	case externalapi.MMRTreeUTXO:
		count = &cs.utxoLeafCount
		countKey = utxoLeafCountKey
	case externalapi.MMRTreeKernel:
		count = &cs.kernelLeafCount
		countKey = kernelLeafCountKey
	default:
		return errors.Errorf("unknown accumulator tree %s", tree)
	}

	indexValue, err := encodeUint64(*count)
	if err != nil {
		return err
	}
	err = tx.Put(indexKey, indexValue)
	if err != nil {
		return err
	}
	*count++
	countValue, err := encodeUint64(*count)
	if err != nil {
		return err
	}
	return tx.Put([]byte(countKey), countValue)
}

// SpendOutput marks the output with the given hash as spent. The output
// stays fetchable by hash and keeps its accumulator leaf; only the unspent
// commitment index and the unspent output tree forget it.
func (cs *ChainStore) SpendOutput(outputHash *externalapi.DomainHash) error {
	recordBytes, err := cs.db.Get(outputKey(outputHash))
	if err != nil {
		return err
	}
	if recordBytes == nil {
		return errors.Errorf("output %s is not in the store", outputHash)
	}
	output, _, err := decodeOutputRecord(recordBytes)
	if err != nil {
		return err
	}

	tx, err := cs.db.Begin()
	if err != nil {
		return err
	}
	defer rollbackUnlessClosed(tx)

	_, err = cs.spendOutputInTransaction(tx, outputHash, &output.Commitment)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// spendOutputInTransaction removes the output from the unspent set. It
// reports false without error when the output is already spent. While an
// output is unspent the commitment index maps to it, a second unspent output
// under the same commitment being rejected by validation.
func (cs *ChainStore) spendOutputInTransaction(tx *ldb.LevelDBTransaction,
	outputHash *externalapi.DomainHash, commitment *externalapi.DomainCommitment) (bool, error) {

	nodeKey, err := sparsemerkletree.NodeKeyFromByteSlice(outputHash.ByteSlice())
	if err != nil {
		return false, err
	}
	contains, err := cs.utxoTree.Contains(nodeKey)
	if err != nil {
		return false, err
	}
	if !contains {
		return false, nil
	}
	_, err = cs.utxoTree.Delete(nodeKey)
	if err != nil {
		return false, err
	}
	err = tx.Delete(unspentKey(commitment))
	if err != nil {
		return false, err
	}
	return true, nil
}

// StoreKernel records the kernel as mined in the block with the given hash.
// Storing a kernel that already exists is a no-op.
func (cs *ChainStore) StoreKernel(kernel *externalapi.DomainTransactionKernel,
	blockHash *externalapi.DomainHash) error {

	tx, err := cs.db.Begin()
	if err != nil {
		return err
	}
	defer rollbackUnlessClosed(tx)

	err = cs.storeKernelInTransaction(tx, kernel, blockHash)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (cs *ChainStore) storeKernelInTransaction(tx *ldb.LevelDBTransaction,
	kernel *externalapi.DomainTransactionKernel, blockHash *externalapi.DomainHash) error {

	kernelHash := consensushashing.KernelHash(kernel)
	leafKey, err := leafIndexKey(externalapi.MMRTreeKernel, kernelHash)
	if err != nil {
		return err
	}
	has, err := cs.db.Has(leafKey)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	excessSigKey, err := kernelKey(&kernel.ExcessSig)
	if err != nil {
		return err
	}
	record, err := encodeKernelRecord(kernel, blockHash)
	if err != nil {
		return err
	}
	err = tx.Put(excessSigKey, record)
	if err != nil {
		return err
	}
	return cs.appendLeafInTransaction(tx, externalapi.MMRTreeKernel, kernelHash)
}

// ApplyBody applies a resolved body as the contents of the block mined at
// the given height with the given hash: its outputs and kernels are stored
// and its inputs are spent, all under one database write. The body must have
// passed contextual validation, so its inputs are resolved and it holds no
// duplicates.
func (cs *ChainStore) ApplyBody(body *aggregatebody.AggregateBody,
	blockHash *externalapi.DomainHash, height uint64) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ChainStore.ApplyBody")
	defer onEnd()

	tx, err := cs.db.Begin()
	if err != nil {
		return err
	}
	defer rollbackUnlessClosed(tx)

	for _, output := range body.Outputs() {
		_, err := cs.storeOutputInTransaction(tx, output, height)
		if err != nil {
			return err
		}
	}
	for _, input := range body.Inputs() {
		err := cs.spendInputInTransaction(tx, input)
		if err != nil {
			return err
		}
	}
	for _, kernel := range body.Kernels() {
		err := cs.storeKernelInTransaction(tx, kernel, blockHash)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (cs *ChainStore) spendInputInTransaction(tx *ldb.LevelDBTransaction,
	input *externalapi.DomainTransactionInput) error {

	outputHash := consensushashing.InputOutputHash(input)
	commitment, err := input.Commitment()
	if err != nil {
		return errors.Wrapf(err, "spending input with output hash %s requires a resolved input",
			outputHash)
	}
	spent, err := cs.spendOutputInTransaction(tx, outputHash, commitment)
	if err != nil {
		return err
	}
	if !spent {
		// Outputs stored earlier in this same write are in the tree
		// already, so a miss here is an output the store has never seen
		// or one that is already spent.
		has, err := cs.db.Has(outputKey(outputHash))
		if err != nil {
			return err
		}
		if !has {
			return errors.Errorf("output %s is not in the store", outputHash)
		}
	}
	return nil
}

// FetchKernelByExcessSig returns the kernel carrying the given excess
// signature and the hash of the block it was mined in.
func (cs *ChainStore) FetchKernelByExcessSig(excessSig *externalapi.DomainSignature) (
	*externalapi.DomainTransactionKernel, *externalapi.DomainHash, error) {

	key, err := kernelKey(excessSig)
	if err != nil {
		return nil, nil, err
	}
	record, err := cs.db.Get(key)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, nil
	}
	kernel, blockHash, err := decodeKernelRecord(record)
	if err != nil {
		return nil, nil, err
	}
	return kernel, blockHash, nil
}

// FetchUnspentOutputHashByCommitment returns the hash of the unspent output
// carrying the given commitment.
func (cs *ChainStore) FetchUnspentOutputHashByCommitment(commitment *externalapi.DomainCommitment) (
	*externalapi.DomainHash, error) {

	hashBytes, err := cs.db.Get(unspentKey(commitment))
	if err != nil {
		return nil, err
	}
	if hashBytes == nil {
		return nil, nil
	}
	return externalapi.NewDomainHashFromByteSlice(hashBytes)
}

// FetchOutput returns the output with the given hash, spent or unspent.
func (cs *ChainStore) FetchOutput(outputHash *externalapi.DomainHash) (
	*externalapi.DomainTransactionOutput, error) {

	if output, ok := cs.outputCache.Get(outputHash); ok {
		return output, nil
	}

	record, err := cs.db.Get(outputKey(outputHash))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	output, _, err := decodeOutputRecord(record)
	if err != nil {
		return nil, err
	}
	cs.outputCache.Add(outputHash, output)
	return output, nil
}

// FetchMMRLeafIndex returns the leaf index of the given hash in the given
// accumulator tree.
func (cs *ChainStore) FetchMMRLeafIndex(tree externalapi.MMRTree, hash *externalapi.DomainHash) (
	uint64, bool, error) {

	key, err := leafIndexKey(tree, hash)
	if err != nil {
		return 0, false, err
	}
	data, err := cs.db.Get(key)
	if err != nil {
		return 0, false, err
	}
	if data == nil {
		return 0, false, nil
	}
	index, err := decodeUint64(data)
	if err != nil {
		return 0, false, err
	}
	return index, true, nil
}

// UnspentTreeRoot returns the root hash of the unspent output tree. It
// commits to every unspent output together with the height it was mined at.
func (cs *ChainStore) UnspentTreeRoot() sparsemerkletree.NodeHash {
	return cs.utxoTree.Hash()
}

// UnspentOutputCount returns the number of unspent outputs in the store.
func (cs *ChainStore) UnspentOutputCount() uint64 {
	return cs.utxoTree.Size()
}
