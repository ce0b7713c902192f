package aggregatebody

import (
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/ruleerrors"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensushashing"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/pedersen"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/schnorr"
)

// VerifyKernelSignatures verifies every kernel's excess signature against its
// excess treated as a public key. It fails on the first kernel whose
// signature does not hold, annotated with that kernel's hash.
func (body *AggregateBody) VerifyKernelSignatures() error {
	for _, kernel := range body.kernels {
		excessKey, err := externalapi.NewDomainPublicKeyFromByteSlice(kernel.Excess.ByteSlice())
		if err != nil {
			return err
		}
		challenge := pedersen.ScalarFromHash(consensushashing.KernelSignatureChallenge(kernel))
		valid, err := schnorr.Verify(&kernel.ExcessSig, excessKey, challenge)
		if err != nil {
			return errors.Wrapf(ruleerrors.NewErrInvalidSignature("Verifying kernel signature"),
				"kernel %s: %s", consensushashing.KernelHash(kernel), err)
		}
		if !valid {
			return errors.Wrapf(ruleerrors.NewErrInvalidSignature("Verifying kernel signature"),
				"kernel %s", consensushashing.KernelHash(kernel))
		}
	}
	return nil
}

// VerifyMetadataSignatures verifies every output's metadata signature: the
// commitment-and-public-key signature binding the output metadata to both the
// output commitment and the sender offset key. It fails on the first output
// whose signature does not hold, annotated with that output's commitment.
func (body *AggregateBody) VerifyMetadataSignatures() error {
	for _, output := range body.outputs {
		wideChallenge := consensushashing.MetadataSignatureChallenge(output)
		challenge := pedersen.ScalarFromWideBytes(&wideChallenge)
		valid, err := schnorr.VerifyComAndPub(
			&output.MetadataSignature, &output.Commitment, &output.SenderOffsetPublicKey, challenge)
		if err != nil {
			return errors.Wrapf(ruleerrors.NewErrInvalidSignature("Metadata signature not valid!"),
				"output %s: %s", output.Commitment, err)
		}
		if !valid {
			return errors.Wrapf(ruleerrors.NewErrInvalidSignature("Metadata signature not valid!"),
				"output %s", output.Commitment)
		}
	}
	return nil
}

// CheckKernelRules checks that no kernel's lock height is above the height
// the body is included at.
func (body *AggregateBody) CheckKernelRules(height uint64) error {
	for _, kernel := range body.kernels {
		if kernel.LockHeight > height {
			return errors.Wrapf(ruleerrors.ErrInvalidKernel,
				"kernel lock height %d is greater than the body height %d", kernel.LockHeight, height)
		}
	}
	return nil
}

// CheckCoinbaseOutput checks that the body carries exactly one coinbase
// output and exactly one coinbase kernel, that the coinbase output is locked
// for at least coinbaseMinMaturity blocks past height, and that the coinbase
// output commitment balances against the coinbase kernel excess and the block
// reward: output.commitment == kernel.excess + commit(0, reward).
func (body *AggregateBody) CheckCoinbaseOutput(reward uint64, coinbaseMinMaturity uint64, height uint64) error {
	var coinbaseOutput *externalapi.DomainTransactionOutput
	coinbaseOutputCounter := 0
	for _, output := range body.outputs {
		if output.IsCoinbase() {
			coinbaseOutputCounter++
			if output.Features.Maturity < height+coinbaseMinMaturity {
				return errors.Wrapf(ruleerrors.ErrInvalidCoinbaseMaturity,
					"coinbase output maturity %d is below the minimum %d for height %d",
					output.Features.Maturity, height+coinbaseMinMaturity, height)
			}
			coinbaseOutput = output
		}
	}
	if coinbaseOutputCounter > 1 {
		return errors.Wrapf(ruleerrors.ErrMoreThanOneCoinbase,
			"body contains %d coinbase outputs", coinbaseOutputCounter)
	}
	if coinbaseOutput == nil {
		return errors.Wrap(ruleerrors.ErrNoCoinbase, "body contains no coinbase output")
	}

	var coinbaseKernel *externalapi.DomainTransactionKernel
	coinbaseKernelCounter := 0
	for _, kernel := range body.kernels {
		if kernel.IsCoinbase() {
			coinbaseKernelCounter++
			coinbaseKernel = kernel
		}
	}
	if coinbaseKernelCounter > 1 {
		return errors.Wrapf(ruleerrors.ErrMoreThanOneCoinbase,
			"body contains %d coinbase kernels", coinbaseKernelCounter)
	}
	if coinbaseKernel == nil {
		return errors.Wrap(ruleerrors.ErrNoCoinbase, "body contains no coinbase kernel")
	}

	expectedCommitment, err := pedersen.Add(&coinbaseKernel.Excess, pedersen.CommitValue(reward))
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidCoinbase, "coinbase kernel excess does not parse: %s", err)
	}
	if !expectedCommitment.Equal(&coinbaseOutput.Commitment) {
		return errors.Wrap(ruleerrors.ErrInvalidCoinbase,
			"coinbase output commitment does not equal the coinbase kernel excess plus the reward commitment")
	}
	return nil
}

// CheckOutputFeatures checks that only coinbase outputs carry coinbase extra
// metadata, and that no coinbase extra exceeds maxCoinbaseExtraSize bytes.
func (body *AggregateBody) CheckOutputFeatures(maxCoinbaseExtraSize int) error {
	for _, output := range body.outputs {
		if !output.IsCoinbase() && len(output.Features.CoinbaseExtra) > 0 {
			return errors.Wrapf(ruleerrors.ErrNonCoinbaseHasCoinbaseExtra,
				"output %s is not a coinbase output but carries coinbase extra", output.Commitment)
		}
		if output.IsCoinbase() && len(output.Features.CoinbaseExtra) > maxCoinbaseExtraSize {
			return ruleerrors.NewErrCoinbaseExtraExceedsMaxSize(
				maxCoinbaseExtraSize, len(output.Features.CoinbaseExtra))
		}
	}
	return nil
}

// CheckUTXORules checks that every input's maturity has been reached at the
// spend height. Inputs in compact form cannot be checked and make this return
// externalapi.ErrMissingTransactionInputData.
func (body *AggregateBody) CheckUTXORules(height uint64) error {
	for _, input := range body.inputs {
		mature, err := input.IsMatureAt(height)
		if err != nil {
			return err
		}
		if !mature {
			features, err := input.Features()
			if err != nil {
				return err
			}
			return errors.Wrapf(ruleerrors.ErrInputMaturity,
				"input %s has maturity %d which is not reached at height %d",
				consensushashing.InputOutputHash(input), features.Maturity, height)
		}
	}
	return nil
}

// CheckTotalBurned checks that burned kernels and burned outputs match: every
// burned kernel's burn commitment must be the commitment of some burned
// output in the body, and every burned output must be claimed by a burned
// kernel.
func (body *AggregateBody) CheckTotalBurned() error {
	burnedOutputs := make(map[[externalapi.DomainCommitmentSize]byte]struct{})
	for _, output := range body.outputs {
		if output.IsBurned() {
			burnedOutputs[*output.Commitment.ByteArray()] = struct{}{}
		}
	}
	for _, kernel := range body.kernels {
		if !kernel.IsBurned() {
			continue
		}
		if kernel.BurnCommitment == nil {
			return errors.Wrapf(ruleerrors.ErrInvalidKernel,
				"burned kernel %s has no burn commitment", consensushashing.KernelHash(kernel))
		}
		key := *kernel.BurnCommitment.ByteArray()
		if _, ok := burnedOutputs[key]; !ok {
			return ruleerrors.NewErrInvalidBurn("Burned kernel does not match burned output")
		}
		delete(burnedOutputs, key)
	}
	if len(burnedOutputs) != 0 {
		return ruleerrors.NewErrInvalidBurn("Burned output has no matching burned kernel")
	}
	return nil
}

// MaxKernelTimelock returns the highest lock height over the body's kernels,
// or zero for a body with no kernels.
func (body *AggregateBody) MaxKernelTimelock() uint64 {
	maxTimelock := uint64(0)
	for _, kernel := range body.kernels {
		if kernel.LockHeight > maxTimelock {
			maxTimelock = kernel.LockHeight
		}
	}
	return maxTimelock
}

// MaxInputMaturity returns the highest maturity over the body's inputs, or
// zero for a body with no inputs. Inputs in compact form make this return
// externalapi.ErrMissingTransactionInputData.
func (body *AggregateBody) MaxInputMaturity() (uint64, error) {
	maxMaturity := uint64(0)
	for _, input := range body.inputs {
		features, err := input.Features()
		if err != nil {
			return 0, err
		}
		if features.Maturity > maxMaturity {
			maxMaturity = features.Maturity
		}
	}
	return maxMaturity, nil
}

// MinSpendableHeight returns the earliest height the body could be included
// at: the maximum of its kernel timelocks and its input maturities.
func (body *AggregateBody) MinSpendableHeight() (uint64, error) {
	maxInputMaturity, err := body.MaxInputMaturity()
	if err != nil {
		return 0, err
	}
	maxKernelTimelock := body.MaxKernelTimelock()
	if maxKernelTimelock > maxInputMaturity {
		return maxKernelTimelock, nil
	}
	return maxInputMaturity, nil
}
