package aggregatebodyvalidator

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/ruleerrors"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusconstants"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensushashing"
	"github.com/tari-project/tari-sub014/infrastructure/logger"
)

// ValidateBodyInContext validates the body against current chain state at the
// given height: no kernel excess signature may already exist in the chain,
// every input must spend an unspent output (or an output of this same body),
// no output may already exist, and all maturities and timelocks must pass.
// The check order is consensus-significant and the first failure is returned.
//
// The body is assumed to have already passed ValidateBodyInIsolation, so
// sorting and internal consistency are not re-checked here. On success the
// resolved body is returned, with every compact input upgraded to full form.
func (v *aggregateBodyValidator) ValidateBodyInContext(body *aggregatebody.AggregateBody,
	height uint64) (*aggregatebody.AggregateBody, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBodyInContext")
	defer onEnd()

	constants := v.constantsManager.ForHeight(height)

	err := v.validateConsensus(body, constants)
	if err != nil {
		return nil, err
	}
	resolvedBody, err := v.validateInputAndMaturity(body, constants, height)
	if err != nil {
		return nil, err
	}
	return resolvedBody, nil
}

func (v *aggregateBodyValidator) validateConsensus(body *aggregatebody.AggregateBody,
	constants *consensusconstants.Constants) error {

	err := v.validateExcessSigNotInChain(body)
	if err != nil {
		return err
	}

	err = validateVersions(body, constants)
	if err != nil {
		return err
	}

	for _, output := range body.Outputs() {
		err = checkPermittedOutputTypes(constants, output)
		if err != nil {
			return err
		}
		err = checkValidatorNodeRegistrationUTXO(constants, output)
		if err != nil {
			return err
		}
	}

	return nil
}

// validateExcessSigNotInChain is the kernel-level replay defense: a kernel
// excess signature may appear in the chain exactly once.
func (v *aggregateBodyValidator) validateExcessSigNotInChain(body *aggregatebody.AggregateBody) error {
	for _, kernel := range body.Kernels() {
		chainKernel, blockHash, err := v.backend.FetchKernelByExcessSig(&kernel.ExcessSig)
		if err != nil {
			return err
		}
		if chainKernel == nil {
			continue
		}
		return ruleerrors.NewErrDuplicateKernel(fmt.Sprintf(
			"Aggregate body contains kernel excess: %s which matches already existing excess signature "+
				"in chain database block hash: %s. Existing kernel excess: %s, excess sig nonce: %s, "+
				"excess signature: %s",
			kernel.Excess, blockHash, chainKernel.Excess,
			chainKernel.ExcessSig.PublicNonce, chainKernel.ExcessSig.Signature))
	}
	return nil
}

func (v *aggregateBodyValidator) validateInputAndMaturity(body *aggregatebody.AggregateBody,
	constants *consensusconstants.Constants, height uint64) (*aggregatebody.AggregateBody, error) {

	resolvedInputs, err := v.resolveInputs(body)
	if err != nil {
		return nil, err
	}
	// Resolving an input does not move it: its ordering key is its output
	// hash, which resolution preserves. Sorting itself was checked by the
	// isolated validation.
	resolvedBody := aggregatebody.NewSortedUnchecked(resolvedInputs, body.Outputs(), body.Kernels())

	err = resolvedBody.CheckUTXORules(height)
	if err != nil {
		return nil, err
	}
	err = v.checkInputsAreUTXOs(resolvedBody)
	if err != nil {
		return nil, err
	}
	err = v.checkOutputs(resolvedBody, constants)
	if err != nil {
		return nil, err
	}
	err = verifyNoDuplicatedInputsOutputs(resolvedBody)
	if err != nil {
		return nil, err
	}
	err = resolvedBody.CheckTotalBurned()
	if err != nil {
		return nil, err
	}
	err = verifyTimelocks(resolvedBody, height)
	if err != nil {
		return nil, err
	}

	return resolvedBody, nil
}

// resolveInputs upgrades every compact input to full form, taking the spent
// output's data from the chain or, for an output created in this same body,
// from the body itself. Inputs already in full form are passed through.
func (v *aggregateBodyValidator) resolveInputs(body *aggregatebody.AggregateBody) (
	[]*externalapi.DomainTransactionInput, error) {

	inputs := body.Inputs()
	resolvedInputs := make([]*externalapi.DomainTransactionInput, 0, len(inputs))
	for _, input := range inputs {
		if !input.IsCompact() {
			resolvedInputs = append(resolvedInputs, input)
			continue
		}

		inputOutputHash := consensushashing.InputOutputHash(input)
		output, err := v.backend.FetchOutput(inputOutputHash)
		if err != nil {
			return nil, err
		}
		if output == nil {
			output = findOutputByHash(body.Outputs(), inputOutputHash)
		}
		if output == nil {
			log.Warnf("Input not found in database or body, hash: %s", inputOutputHash)
			return nil, errors.Wrapf(ruleerrors.ErrUnknownInput,
				"input references unknown output hash %s", inputOutputHash)
		}
		resolvedInputs = append(resolvedInputs, resolveInput(input, output))
	}
	return resolvedInputs, nil
}

func findOutputByHash(outputs []*externalapi.DomainTransactionOutput,
	outputHash *externalapi.DomainHash) *externalapi.DomainTransactionOutput {

	for _, output := range outputs {
		if consensushashing.OutputHash(output).Equal(outputHash) {
			return output
		}
	}
	return nil
}

// resolveInput returns a full-form copy of input carrying output's data. The
// witness fields are untouched.
func resolveInput(input *externalapi.DomainTransactionInput,
	output *externalapi.DomainTransactionOutput) *externalapi.DomainTransactionInput {

	return &externalapi.DomainTransactionInput{
		Version: input.Version,
		SpentOutput: externalapi.NewSpentOutputFromData(&externalapi.DomainSpentOutputData{
			Version:               output.Version,
			Features:              output.Features.Clone(),
			Commitment:            output.Commitment,
			Script:                append([]byte{}, output.Script...),
			SenderOffsetPublicKey: output.SenderOffsetPublicKey,
			Covenant:              append([]byte{}, output.Covenant...),
			EncryptedData:         append([]byte{}, output.EncryptedData...),
			MinimumValuePromise:   output.MinimumValuePromise,
		}),
		InputData:       input.InputData,
		ScriptSignature: input.ScriptSignature,
	}
}

func verifyNoDuplicatedInputsOutputs(body *aggregatebody.AggregateBody) error {
	if body.ContainsDuplicatedInputs() {
		log.Warnf("Aggregate body validation failed due to double input")
		return errors.Wrapf(ruleerrors.ErrUnsortedOrDuplicateInput, "body contains a duplicate input")
	}
	if body.ContainsDuplicatedOutputs() {
		log.Warnf("Aggregate body validation failed due to double output")
		return errors.Wrapf(ruleerrors.ErrUnsortedOrDuplicateOutput, "body contains a duplicate output")
	}
	return nil
}

// verifyTimelocks checks that all kernel lock heights and input maturities
// allow the body into the next block.
func verifyTimelocks(body *aggregatebody.AggregateBody, height uint64) error {
	minSpendableHeight, err := body.MinSpendableHeight()
	if err != nil {
		return err
	}
	nextHeight := height + 1
	if height == math.MaxUint64 {
		nextHeight = height
	}
	if minSpendableHeight > nextHeight {
		log.Warnf("Aggregate body has a min spendable height %d above the next height %d",
			minSpendableHeight, nextHeight)
		return errors.Wrapf(ruleerrors.ErrMaturity,
			"body min spendable height is %d but the next height is %d", minSpendableHeight, nextHeight)
	}
	return nil
}
