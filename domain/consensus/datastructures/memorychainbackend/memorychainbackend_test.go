package memorychainbackend

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensushashing"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/pedersen"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/schnorr"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/tariscript"
)

func scalar(value uint32) *secp256k1.ModNScalar {
	return new(secp256k1.ModNScalar).SetInt(value)
}

func testOutput(value uint64, blinding uint32) *externalapi.DomainTransactionOutput {
	return &externalapi.DomainTransactionOutput{
		Features: &externalapi.OutputFeatures{
			OutputType:     externalapi.OutputTypeStandard,
			RangeProofType: externalapi.RangeProofTypeBulletProofPlus,
		},
		Commitment: *pedersen.Commit(value, scalar(blinding)),
		Script:     []byte{tariscript.OpNop},
	}
}

func testKernel(fee uint64, excessSecret, nonce uint32) *externalapi.DomainTransactionKernel {
	excess := pedersen.Commit(0, scalar(excessSecret))
	publicNonce := schnorr.PublicKeyFromSecret(scalar(nonce))
	challengeHash := consensushashing.KernelSignatureChallengeFromParts(
		0, publicNonce, excess, fee, 0, 0, nil)
	signature := schnorr.Sign(scalar(excessSecret), scalar(nonce), pedersen.ScalarFromHash(challengeHash))
	return &externalapi.DomainTransactionKernel{Fee: fee, Excess: *excess, ExcessSig: *signature}
}

func testBlockHash(b byte) *externalapi.DomainHash {
	var hashArray [externalapi.DomainHashSize]byte
	hashArray[0] = b
	return externalapi.NewDomainHashFromByteArray(&hashArray)
}

func TestOutputLifecycle(t *testing.T) {
	backend := New()

	output := testOutput(1000, 10)
	outputHash := backend.StoreOutput(output)
	if !outputHash.Equal(consensushashing.OutputHash(output)) {
		t.Fatalf("StoreOutput returned a hash that is not the output's hash")
	}

	fetched, err := backend.FetchOutput(outputHash)
	if err != nil {
		t.Fatalf("FetchOutput: %+v", err)
	}
	if fetched == nil || !fetched.Equal(output) {
		t.Fatalf("FetchOutput did not return the stored output")
	}

	unspentHash, err := backend.FetchUnspentOutputHashByCommitment(&output.Commitment)
	if err != nil {
		t.Fatalf("FetchUnspentOutputHashByCommitment: %+v", err)
	}
	if unspentHash == nil || !unspentHash.Equal(outputHash) {
		t.Fatalf("the stored output is not in the unspent commitment index")
	}

	index, found, err := backend.FetchMMRLeafIndex(externalapi.MMRTreeUTXO, outputHash)
	if err != nil {
		t.Fatalf("FetchMMRLeafIndex: %+v", err)
	}
	if !found || index != 0 {
		t.Fatalf("expected the first output at leaf index 0, got found=%t index=%d", found, index)
	}

	err = backend.SpendOutput(outputHash)
	if err != nil {
		t.Fatalf("SpendOutput: %+v", err)
	}

	// A spent output leaves the unspent commitment index but keeps its
	// hash entry and its accumulator leaf.
	unspentHash, err = backend.FetchUnspentOutputHashByCommitment(&output.Commitment)
	if err != nil {
		t.Fatalf("FetchUnspentOutputHashByCommitment: %+v", err)
	}
	if unspentHash != nil {
		t.Fatalf("a spent output is still in the unspent commitment index")
	}
	fetched, err = backend.FetchOutput(outputHash)
	if err != nil {
		t.Fatalf("FetchOutput: %+v", err)
	}
	if fetched == nil {
		t.Fatalf("a spent output is no longer fetchable by hash")
	}
	_, found, err = backend.FetchMMRLeafIndex(externalapi.MMRTreeUTXO, outputHash)
	if err != nil {
		t.Fatalf("FetchMMRLeafIndex: %+v", err)
	}
	if !found {
		t.Fatalf("a spent output lost its accumulator leaf")
	}
}

func TestSpendUnknownOutput(t *testing.T) {
	backend := New()
	err := backend.SpendOutput(testBlockHash(1))
	if err == nil {
		t.Fatalf("spending an unknown output should fail")
	}
}

func TestLeafIndexesAreAppendOnly(t *testing.T) {
	backend := New()

	first := backend.StoreOutput(testOutput(100, 1))
	second := backend.StoreOutput(testOutput(200, 2))
	err := backend.SpendOutput(first)
	if err != nil {
		t.Fatalf("SpendOutput: %+v", err)
	}
	third := backend.StoreOutput(testOutput(300, 3))

	for i, outputHash := range []*externalapi.DomainHash{first, second, third} {
		index, found, err := backend.FetchMMRLeafIndex(externalapi.MMRTreeUTXO, outputHash)
		if err != nil {
			t.Fatalf("FetchMMRLeafIndex: %+v", err)
		}
		if !found || index != uint64(i) {
			t.Fatalf("expected output %d at leaf index %d, got found=%t index=%d", i, i, found, index)
		}
	}

	// Storing an output twice must not burn a second leaf.
	backend.StoreOutput(testOutput(200, 2))
	index, _, err := backend.FetchMMRLeafIndex(externalapi.MMRTreeUTXO, second)
	if err != nil {
		t.Fatalf("FetchMMRLeafIndex: %+v", err)
	}
	if index != 1 {
		t.Fatalf("a re-stored output moved from leaf index 1 to %d", index)
	}
}

func TestKernelLookup(t *testing.T) {
	backend := New()

	kernel := testKernel(25, 71, 81)
	minedIn := testBlockHash(9)
	backend.StoreKernel(kernel, minedIn)

	fetched, fetchedBlockHash, err := backend.FetchKernelByExcessSig(&kernel.ExcessSig)
	if err != nil {
		t.Fatalf("FetchKernelByExcessSig: %+v", err)
	}
	if fetched == nil || !fetched.Equal(kernel) {
		t.Fatalf("FetchKernelByExcessSig did not return the stored kernel")
	}
	if !fetchedBlockHash.Equal(minedIn) {
		t.Fatalf("FetchKernelByExcessSig returned the wrong block hash")
	}

	index, found, err := backend.FetchMMRLeafIndex(externalapi.MMRTreeKernel, consensushashing.KernelHash(kernel))
	if err != nil {
		t.Fatalf("FetchMMRLeafIndex: %+v", err)
	}
	if !found || index != 0 {
		t.Fatalf("expected the first kernel at leaf index 0, got found=%t index=%d", found, index)
	}

	other := testKernel(26, 72, 82)
	fetched, _, err = backend.FetchKernelByExcessSig(&other.ExcessSig)
	if err != nil {
		t.Fatalf("FetchKernelByExcessSig: %+v", err)
	}
	if fetched != nil {
		t.Fatalf("an unknown excess signature returned a kernel")
	}
}

func TestApplyBody(t *testing.T) {
	backend := New()

	spent := testOutput(1000, 10)
	spentHash := backend.StoreOutput(spent)

	created := testOutput(950, 30)
	kernel := testKernel(50, 15, 81)
	body := aggregatebody.New(
		[]*externalapi.DomainTransactionInput{{
			SpentOutput: externalapi.NewSpentOutputFromHash(spentHash),
		}},
		[]*externalapi.DomainTransactionOutput{created},
		[]*externalapi.DomainTransactionKernel{kernel})

	minedIn := testBlockHash(3)
	err := backend.ApplyBody(body, minedIn)
	if err != nil {
		t.Fatalf("ApplyBody: %+v", err)
	}

	unspentHash, err := backend.FetchUnspentOutputHashByCommitment(&spent.Commitment)
	if err != nil {
		t.Fatalf("FetchUnspentOutputHashByCommitment: %+v", err)
	}
	if unspentHash != nil {
		t.Fatalf("ApplyBody did not spend the body's input")
	}

	unspentHash, err = backend.FetchUnspentOutputHashByCommitment(&created.Commitment)
	if err != nil {
		t.Fatalf("FetchUnspentOutputHashByCommitment: %+v", err)
	}
	if unspentHash == nil {
		t.Fatalf("ApplyBody did not store the body's output")
	}

	fetched, fetchedBlockHash, err := backend.FetchKernelByExcessSig(&kernel.ExcessSig)
	if err != nil {
		t.Fatalf("FetchKernelByExcessSig: %+v", err)
	}
	if fetched == nil {
		t.Fatalf("ApplyBody did not store the body's kernel")
	}
	if !fetchedBlockHash.Equal(minedIn) {
		t.Fatalf("ApplyBody stored the kernel under the wrong block hash")
	}
}
