package aggregatebodyvalidator_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tari-project/tari-sub014/domain/consensus/datastructures/memorychainbackend"
	"github.com/tari-project/tari-sub014/domain/consensus/model"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/processes/aggregatebodyvalidator"
	"github.com/tari-project/tari-sub014/domain/consensus/ruleerrors"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusconstants"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensushashing"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/pedersen"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/schnorr"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/tariscript"
)

func scalar(value uint32) *secp256k1.ModNScalar {
	return new(secp256k1.ModNScalar).SetInt(value)
}

func standardFeatures(maturity uint64) *externalapi.OutputFeatures {
	return &externalapi.OutputFeatures{
		OutputType:     externalapi.OutputTypeStandard,
		Maturity:       maturity,
		RangeProofType: externalapi.RangeProofTypeBulletProofPlus,
	}
}

func testOutput(value uint64, blinding uint32, features *externalapi.OutputFeatures) *externalapi.DomainTransactionOutput {
	return &externalapi.DomainTransactionOutput{
		Features:   features,
		Commitment: *pedersen.Commit(value, scalar(blinding)),
		Script:     []byte{tariscript.OpNop},
	}
}

func fullInput(output *externalapi.DomainTransactionOutput) *externalapi.DomainTransactionInput {
	return &externalapi.DomainTransactionInput{
		Version: output.Version,
		SpentOutput: externalapi.NewSpentOutputFromData(&externalapi.DomainSpentOutputData{
			Version:               output.Version,
			Features:              output.Features,
			Commitment:            output.Commitment,
			Script:                output.Script,
			SenderOffsetPublicKey: output.SenderOffsetPublicKey,
			Covenant:              output.Covenant,
			EncryptedData:         output.EncryptedData,
			MinimumValuePromise:   output.MinimumValuePromise,
		}),
	}
}

func compactInput(output *externalapi.DomainTransactionOutput) *externalapi.DomainTransactionInput {
	return &externalapi.DomainTransactionInput{
		Version:     output.Version,
		SpentOutput: externalapi.NewSpentOutputFromHash(consensushashing.OutputHash(output)),
	}
}

func signedKernel(fee, lockHeight uint64, features externalapi.KernelFeatures,
	excessSecret, nonce uint32, burnCommitment *externalapi.DomainCommitment) *externalapi.DomainTransactionKernel {

	excess := pedersen.Commit(0, scalar(excessSecret))
	publicNonce := schnorr.PublicKeyFromSecret(scalar(nonce))
	challengeHash := consensushashing.KernelSignatureChallengeFromParts(
		0, publicNonce, excess, fee, lockHeight, features, burnCommitment)
	signature := schnorr.Sign(scalar(excessSecret), scalar(nonce), pedersen.ScalarFromHash(challengeHash))

	return &externalapi.DomainTransactionKernel{
		Features:       features,
		Fee:            fee,
		LockHeight:     lockHeight,
		Excess:         *excess,
		ExcessSig:      *signature,
		BurnCommitment: burnCommitment,
	}
}

func metadataSignedOutput(value, blinding, senderOffsetSecret uint32,
	features *externalapi.OutputFeatures) *externalapi.DomainTransactionOutput {

	output := &externalapi.DomainTransactionOutput{
		Features:              features,
		Commitment:            *pedersen.Commit(uint64(value), scalar(blinding)),
		Script:                []byte{tariscript.OpNop},
		SenderOffsetPublicKey: *schnorr.PublicKeyFromSecret(scalar(senderOffsetSecret)),
	}

	nonceA, nonceX, nonceY := scalar(301), scalar(302), scalar(303)
	message := consensushashing.MetadataSignatureMessage(output)
	wideChallenge := consensushashing.MetadataSignatureChallengeFromParts(
		schnorr.PublicKeyFromSecret(nonceY), pedersen.CommitScalars(nonceA, nonceX),
		&output.SenderOffsetPublicKey, &output.Commitment, message)
	output.MetadataSignature = *schnorr.SignComAndPub(
		scalar(value), scalar(blinding), scalar(senderOffsetSecret),
		nonceA, nonceX, nonceY, pedersen.ScalarFromWideBytes(&wideChallenge))
	return output
}

func validatorNodeRegistration(secret, nonce uint32) *externalapi.DomainValidatorNodeRegistration {
	publicKey := schnorr.PublicKeyFromSecret(scalar(secret))
	publicNonce := schnorr.PublicKeyFromSecret(scalar(nonce))
	challengeHash := consensushashing.ValidatorNodeSignatureChallenge(publicKey, publicNonce, []byte{})
	signature := schnorr.Sign(scalar(secret), scalar(nonce), pedersen.ScalarFromHash(challengeHash))
	return &externalapi.DomainValidatorNodeRegistration{PublicKey: *publicKey, Signature: *signature}
}

func blockHash(b byte) *externalapi.DomainHash {
	var hashArray [externalapi.DomainHashSize]byte
	hashArray[0] = b
	return externalapi.NewDomainHashFromByteArray(&hashArray)
}

func newValidator(t *testing.T, backend model.BlockchainBackend) model.AggregateBodyValidator {
	manager, err := consensusconstants.NewManager(consensusconstants.LocalNet())
	if err != nil {
		t.Fatalf("NewManager: %+v", err)
	}
	return aggregatebodyvalidator.New(manager, backend)
}

// balancedBody builds a body spending a 1000 unit output into a 950 unit
// output with a 50 unit fee kernel, balancing against the returned offset.
func balancedBody() (*aggregatebody.AggregateBody, *externalapi.DomainTransactionOutput, *externalapi.DomainScalar) {
	spent := testOutput(1000, 10, standardFeatures(0))
	body := aggregatebody.New(
		[]*externalapi.DomainTransactionInput{fullInput(spent)},
		[]*externalapi.DomainTransactionOutput{metadataSignedOutput(950, 30, 40, standardFeatures(0))},
		[]*externalapi.DomainTransactionKernel{signedKernel(50, 0, 0, 15, 81, nil)})
	body.Sort()
	return body, spent, pedersen.SerializeScalar(scalar(5))
}

func TestValidateBodyInIsolationBalanced(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	body, _, txOffset := balancedBody()
	err := validator.ValidateBodyInIsolation(body, txOffset, 0, 10)
	if err != nil {
		t.Fatalf("a balanced body failed: %+v", err)
	}

	// The reward term: 1000 in plus a 500 reward covers a 1400 out plus a
	// 100 fee.
	withReward := aggregatebody.New(
		[]*externalapi.DomainTransactionInput{fullInput(testOutput(1000, 10, standardFeatures(0)))},
		[]*externalapi.DomainTransactionOutput{metadataSignedOutput(1400, 30, 40, standardFeatures(0))},
		[]*externalapi.DomainTransactionKernel{signedKernel(100, 0, 0, 12, 82, nil)})
	withReward.Sort()
	err = validator.ValidateBodyInIsolation(withReward, pedersen.SerializeScalar(scalar(8)), 500, 10)
	if err != nil {
		t.Fatalf("a balanced body with a reward failed: %+v", err)
	}
}

func TestValidateBodyInIsolationKernelSumMismatch(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	body, _, _ := balancedBody()
	wrongOffset := pedersen.SerializeScalar(scalar(6))
	err := validator.ValidateBodyInIsolation(body, wrongOffset, 0, 10)
	if !errors.Is(err, ruleerrors.ErrKernelSumMismatch) {
		t.Fatalf("an unbalanced body should fail with ErrKernelSumMismatch, got: %+v", err)
	}
}

func TestValidateBodyInIsolationRejectsCoinbase(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	coinbase := testOutput(5000, 11, &externalapi.OutputFeatures{
		OutputType: externalapi.OutputTypeCoinbase,
	})
	body := aggregatebody.New(nil, []*externalapi.DomainTransactionOutput{coinbase}, nil)
	err := validator.ValidateBodyInIsolation(body, pedersen.SerializeScalar(scalar(5)), 0, 10)
	if !errors.Is(err, ruleerrors.ErrErroneousCoinbaseOutput) {
		t.Fatalf("a body with a coinbase output should fail with ErrErroneousCoinbaseOutput, got: %+v", err)
	}
}

func TestValidateBodyInIsolationMaximumWeight(t *testing.T) {
	constants := consensusconstants.LocalNet()
	constants[0].MaxBlockTransactionWeight = 1
	manager, err := consensusconstants.NewManager(constants)
	if err != nil {
		t.Fatalf("NewManager: %+v", err)
	}
	validator := aggregatebodyvalidator.New(manager, memorychainbackend.New())

	body, _, txOffset := balancedBody()
	err = validator.ValidateBodyInIsolation(body, txOffset, 0, 10)
	if !errors.Is(err, ruleerrors.ErrMaxTransactionWeightExceeded) {
		t.Fatalf("an overweight body should fail with ErrMaxTransactionWeightExceeded, got: %+v", err)
	}
}

func TestValidateBodyInIsolationKernelVersion(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	body, _, txOffset := balancedBody()
	body.Kernels()[0].Version = 3
	err := validator.ValidateBodyInIsolation(body, txOffset, 0, 10)
	consensusErr := &ruleerrors.ErrConsensus{}
	if !errors.As(err, consensusErr) {
		t.Fatalf("a kernel version above the range should fail with ErrConsensus, got: %+v", err)
	}
	if consensusErr.Message != "Transaction kernel version is not allowed by consensus (3)" {
		t.Fatalf("unexpected message: %s", consensusErr.Message)
	}
}

func TestValidateBodyInIsolationTamperedKernelSignature(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	body, _, txOffset := balancedBody()
	body.Kernels()[0].LockHeight = 7
	err := validator.ValidateBodyInIsolation(body, txOffset, 0, 10)
	invalidSignature := &ruleerrors.ErrInvalidSignature{}
	if !errors.As(err, invalidSignature) {
		t.Fatalf("a tampered kernel should fail with ErrInvalidSignature, got: %+v", err)
	}
}

func TestValidateBodyInIsolationDuplicateInputs(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	// Two copies of the same input, balanced so the failure is the
	// duplicate itself and not the sums: 2000 in covers 1900 out plus a
	// 100 fee.
	spent := testOutput(1000, 10, standardFeatures(0))
	body := aggregatebody.New(
		[]*externalapi.DomainTransactionInput{fullInput(spent), fullInput(spent)},
		[]*externalapi.DomainTransactionOutput{metadataSignedOutput(1900, 45, 40, standardFeatures(0))},
		[]*externalapi.DomainTransactionKernel{signedKernel(100, 0, 0, 20, 83, nil)})
	body.Sort()

	err := validator.ValidateBodyInIsolation(body, pedersen.SerializeScalar(scalar(5)), 0, 10)
	if !errors.Is(err, ruleerrors.ErrUnsortedOrDuplicateInput) {
		t.Fatalf("a duplicate input should fail with ErrUnsortedOrDuplicateInput, got: %+v", err)
	}
}

func TestValidateBodyInContextResolvesCompactInputs(t *testing.T) {
	backend := memorychainbackend.New()
	validator := newValidator(t, backend)

	spent := testOutput(1000, 10, standardFeatures(0))
	backend.StoreOutput(spent)

	body := aggregatebody.New(
		[]*externalapi.DomainTransactionInput{compactInput(spent)},
		[]*externalapi.DomainTransactionOutput{testOutput(950, 30, standardFeatures(0))},
		[]*externalapi.DomainTransactionKernel{signedKernel(50, 0, 0, 15, 81, nil)})
	body.Sort()

	resolvedBody, err := validator.ValidateBodyInContext(body, 10)
	if err != nil {
		t.Fatalf("a valid body failed: %+v", err)
	}
	resolvedInput := resolvedBody.Inputs()[0]
	if resolvedInput.IsCompact() {
		t.Fatalf("the returned body still carries a compact input")
	}
	commitment, err := resolvedInput.Commitment()
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}
	if !commitment.Equal(&spent.Commitment) {
		t.Fatalf("the resolved input does not carry the spent output's commitment")
	}
	if !consensushashing.InputOutputHash(resolvedInput).Equal(consensushashing.OutputHash(spent)) {
		t.Fatalf("resolution changed the input's spent output hash")
	}
	if !body.Inputs()[0].IsCompact() {
		t.Fatalf("validation mutated the caller's body")
	}
}

func TestValidateBodyInContextResolvesSameBodyOutputs(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	created := testOutput(600, 17, standardFeatures(0))
	body := aggregatebody.New(
		[]*externalapi.DomainTransactionInput{compactInput(created)},
		[]*externalapi.DomainTransactionOutput{created},
		nil)
	body.Sort()

	resolvedBody, err := validator.ValidateBodyInContext(body, 10)
	if err != nil {
		t.Fatalf("a body spending its own output failed: %+v", err)
	}
	commitment, err := resolvedBody.Inputs()[0].Commitment()
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}
	if !commitment.Equal(&created.Commitment) {
		t.Fatalf("the resolved input does not carry the body output's commitment")
	}
}

func TestValidateBodyInContextKernelReplay(t *testing.T) {
	backend := memorychainbackend.New()
	validator := newValidator(t, backend)

	kernel := signedKernel(50, 0, 0, 15, 81, nil)
	minedIn := blockHash(7)
	backend.StoreKernel(kernel, minedIn)

	body := aggregatebody.New(nil, nil, []*externalapi.DomainTransactionKernel{kernel})
	_, err := validator.ValidateBodyInContext(body, 10)
	duplicateKernel := &ruleerrors.ErrDuplicateKernel{}
	if !errors.As(err, duplicateKernel) {
		t.Fatalf("a replayed kernel should fail with ErrDuplicateKernel, got: %+v", err)
	}
	expected := fmt.Sprintf("Aggregate body contains kernel excess: %s which matches already existing "+
		"excess signature in chain database block hash: %s. Existing kernel excess: %s, "+
		"excess sig nonce: %s, excess signature: %s",
		kernel.Excess, minedIn, kernel.Excess, kernel.ExcessSig.PublicNonce, kernel.ExcessSig.Signature)
	if duplicateKernel.Message != expected {
		t.Fatalf("unexpected message:\ngot:  %s\nwant: %s", duplicateKernel.Message, expected)
	}
}

func TestValidateBodyInContextUnknownFullInput(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	neverMined := testOutput(1000, 10, standardFeatures(0))
	input := fullInput(neverMined)
	body := aggregatebody.New([]*externalapi.DomainTransactionInput{input}, nil, nil)
	body.Sort()

	_, err := validator.ValidateBodyInContext(body, 10)
	unknownInputs := &ruleerrors.ErrUnknownInputs{}
	if !errors.As(err, unknownInputs) {
		t.Fatalf("an unknown input should fail with ErrUnknownInputs, got: %+v", err)
	}
	if len(unknownInputs.InputHashes) != 1 {
		t.Fatalf("expected exactly one unknown input hash, got %d", len(unknownInputs.InputHashes))
	}
	if !unknownInputs.InputHashes[0].Equal(consensushashing.InputOutputHash(input)) {
		t.Fatalf("the unknown input hash is not the input's spent output hash")
	}
}

func TestValidateBodyInContextUnknownCompactInput(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	neverMined := testOutput(1000, 10, standardFeatures(0))
	body := aggregatebody.New([]*externalapi.DomainTransactionInput{compactInput(neverMined)}, nil, nil)
	body.Sort()

	// A compact input referencing an unknown output cannot even be
	// resolved, so the failure is the singular ErrUnknownInput.
	_, err := validator.ValidateBodyInContext(body, 10)
	if !errors.Is(err, ruleerrors.ErrUnknownInput) {
		t.Fatalf("an unresolvable compact input should fail with ErrUnknownInput, got: %+v", err)
	}
	unknownInputs := &ruleerrors.ErrUnknownInputs{}
	if errors.As(err, unknownInputs) {
		t.Fatalf("resolution failures should not reach the batched unknown inputs check")
	}
}

func TestValidateBodyInContextInputMaturity(t *testing.T) {
	backend := memorychainbackend.New()
	validator := newValidator(t, backend)

	locked := testOutput(1000, 10, standardFeatures(100))
	backend.StoreOutput(locked)

	body := aggregatebody.New([]*externalapi.DomainTransactionInput{fullInput(locked)}, nil, nil)
	body.Sort()

	_, err := validator.ValidateBodyInContext(body, 10)
	if !errors.Is(err, ruleerrors.ErrInputMaturity) {
		t.Fatalf("an immature input should fail with ErrInputMaturity, got: %+v", err)
	}

	_, err = validator.ValidateBodyInContext(body, 100)
	if err != nil {
		t.Fatalf("a mature input failed: %+v", err)
	}
}

func TestValidateBodyInContextDoubleSpend(t *testing.T) {
	backend := memorychainbackend.New()
	validator := newValidator(t, backend)

	spent := testOutput(1000, 10, standardFeatures(0))
	spentHash := backend.StoreOutput(spent)
	err := backend.SpendOutput(spentHash)
	if err != nil {
		t.Fatalf("SpendOutput: %+v", err)
	}

	body := aggregatebody.New([]*externalapi.DomainTransactionInput{fullInput(spent)}, nil, nil)
	body.Sort()

	_, err = validator.ValidateBodyInContext(body, 10)
	if !errors.Is(err, ruleerrors.ErrContainsSTxO) {
		t.Fatalf("a double spend should fail with ErrContainsSTxO, got: %+v", err)
	}
}

func TestValidateBodyInContextCommitmentHashMismatch(t *testing.T) {
	backend := memorychainbackend.New()
	validator := newValidator(t, backend)

	stored := testOutput(1000, 10, standardFeatures(0))
	backend.StoreOutput(stored)

	// Same commitment, different script: the input's spent output hash
	// cannot match the stored unspent output's hash.
	divergent := testOutput(1000, 10, standardFeatures(0))
	divergent.Script = []byte{tariscript.OpNop, tariscript.OpNop}
	body := aggregatebody.New([]*externalapi.DomainTransactionInput{fullInput(divergent)}, nil, nil)
	body.Sort()

	_, err := validator.ValidateBodyInContext(body, 10)
	if !errors.Is(err, ruleerrors.ErrContainsSTxO) {
		t.Fatalf("an input diverging from the stored output should fail with ErrContainsSTxO, got: %+v", err)
	}
}

func TestValidateBodyInContextOutputAlreadyMined(t *testing.T) {
	backend := memorychainbackend.New()
	validator := newValidator(t, backend)

	mined := testOutput(700, 13, standardFeatures(0))
	backend.StoreOutput(mined)

	body := aggregatebody.New(nil, []*externalapi.DomainTransactionOutput{mined}, nil)
	body.Sort()

	_, err := validator.ValidateBodyInContext(body, 10)
	if !errors.Is(err, ruleerrors.ErrContainsTxO) {
		t.Fatalf("an already mined output should fail with ErrContainsTxO, got: %+v", err)
	}
}

func TestValidateBodyInContextDuplicateCommitment(t *testing.T) {
	backend := memorychainbackend.New()
	validator := newValidator(t, backend)

	stored := testOutput(700, 13, standardFeatures(0))
	backend.StoreOutput(stored)

	// A different output under the same commitment: no MMR leaf matches,
	// but the unspent commitment index does.
	divergent := testOutput(700, 13, standardFeatures(0))
	divergent.Script = []byte{tariscript.OpNop, tariscript.OpNop}
	body := aggregatebody.New(nil, []*externalapi.DomainTransactionOutput{divergent}, nil)
	body.Sort()

	_, err := validator.ValidateBodyInContext(body, 10)
	if !errors.Is(err, ruleerrors.ErrContainsDuplicateUtxoCommitment) {
		t.Fatalf("a duplicate commitment should fail with ErrContainsDuplicateUtxoCommitment, got: %+v", err)
	}
}

func TestValidateBodyInContextKernelLockHeight(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	body := aggregatebody.New(nil, nil,
		[]*externalapi.DomainTransactionKernel{signedKernel(1, 20, 0, 15, 81, nil)})
	body.Sort()

	_, err := validator.ValidateBodyInContext(body, 10)
	if !errors.Is(err, ruleerrors.ErrMaturity) {
		t.Fatalf("a locked kernel should fail with ErrMaturity, got: %+v", err)
	}

	// Lock height 20 admits the body into block 20, which is the next
	// block at height 19.
	_, err = validator.ValidateBodyInContext(body, 19)
	if err != nil {
		t.Fatalf("a kernel locked to the next height failed: %+v", err)
	}
}

func TestValidateBodyInContextInputVersion(t *testing.T) {
	backend := memorychainbackend.New()
	validator := newValidator(t, backend)

	spent := testOutput(1000, 10, standardFeatures(0))
	backend.StoreOutput(spent)
	input := fullInput(spent)
	input.Version = 1
	body := aggregatebody.New([]*externalapi.DomainTransactionInput{input}, nil, nil)
	body.Sort()

	_, err := validator.ValidateBodyInContext(body, 10)
	consensusErr := &ruleerrors.ErrConsensus{}
	if !errors.As(err, consensusErr) {
		t.Fatalf("an input version above the range should fail with ErrConsensus, got: %+v", err)
	}
	if consensusErr.Message != "Transaction input contains a version not allowed by consensus (1)" {
		t.Fatalf("unexpected message: %s", consensusErr.Message)
	}
}

func TestValidateBodyInContextScriptDoesNotParse(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	truncated := testOutput(700, 13, standardFeatures(0))
	truncated.Script = []byte{tariscript.OpPushPubKey}
	body := aggregatebody.New(nil, []*externalapi.DomainTransactionOutput{truncated}, nil)
	body.Sort()

	_, err := validator.ValidateBodyInContext(body, 10)
	consensusErr := &ruleerrors.ErrConsensus{}
	if !errors.As(err, consensusErr) {
		t.Fatalf("an unparseable script should fail with ErrConsensus, got: %+v", err)
	}
}

func TestValidateBodyInContextScriptTooLarge(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	oversized := testOutput(700, 13, standardFeatures(0))
	oversized.Script = bytes.Repeat([]byte{tariscript.OpNop}, 2049)
	body := aggregatebody.New(nil, []*externalapi.DomainTransactionOutput{oversized}, nil)
	body.Sort()

	_, err := validator.ValidateBodyInContext(body, 10)
	exceedsMaxSize := &ruleerrors.ErrTariScriptExceedsMaxSize{}
	if !errors.As(err, exceedsMaxSize) {
		t.Fatalf("an oversized script should fail with ErrTariScriptExceedsMaxSize, got: %+v", err)
	}
	if exceedsMaxSize.MaxScriptSize != 2048 || exceedsMaxSize.ActualScriptSize != 2049 {
		t.Fatalf("unexpected sizes in error: %+v", exceedsMaxSize)
	}
}

func TestValidateBodyInContextValidatorNodeRegistration(t *testing.T) {
	validator := newValidator(t, memorychainbackend.New())

	registered := func(registration *externalapi.DomainValidatorNodeRegistration,
		promise, maturity uint64) *aggregatebody.AggregateBody {

		output := testOutput(2000000, 19, &externalapi.OutputFeatures{
			OutputType:                externalapi.OutputTypeValidatorNodeRegistration,
			Maturity:                  maturity,
			RangeProofType:            externalapi.RangeProofTypeBulletProofPlus,
			ValidatorNodeRegistration: registration,
		})
		output.MinimumValuePromise = promise
		body := aggregatebody.New(nil, []*externalapi.DomainTransactionOutput{output}, nil)
		body.Sort()
		return body
	}

	registration := validatorNodeRegistration(55, 65)

	_, err := validator.ValidateBodyInContext(registered(registration, 2000000, 10), 10)
	if err != nil {
		t.Fatalf("a valid registration failed: %+v", err)
	}

	_, err = validator.ValidateBodyInContext(registered(registration, 100, 10), 10)
	minDeposit := &ruleerrors.ErrValidatorNodeRegistrationMinDepositAmount{}
	if !errors.As(err, minDeposit) {
		t.Fatalf("an underfunded registration should fail with "+
			"ErrValidatorNodeRegistrationMinDepositAmount, got: %+v", err)
	}
	if minDeposit.MinDepositAmount != 1000000 || minDeposit.Actual != 100 {
		t.Fatalf("unexpected amounts in error: %+v", minDeposit)
	}

	_, err = validator.ValidateBodyInContext(registered(registration, 2000000, 1), 10)
	minLockHeight := &ruleerrors.ErrValidatorNodeRegistrationMinLockHeight{}
	if !errors.As(err, minLockHeight) {
		t.Fatalf("an underlocked registration should fail with "+
			"ErrValidatorNodeRegistrationMinLockHeight, got: %+v", err)
	}

	forged := validatorNodeRegistration(55, 65)
	forged.PublicKey = *schnorr.PublicKeyFromSecret(scalar(56))
	_, err = validator.ValidateBodyInContext(registered(forged, 2000000, 10), 10)
	if !errors.Is(err, ruleerrors.ErrInvalidValidatorNodeSignature) {
		t.Fatalf("a forged registration should fail with ErrInvalidValidatorNodeSignature, got: %+v", err)
	}
}
