package aggregatebodyvalidator

import (
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/ruleerrors"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusconstants"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/pedersen"
	"github.com/tari-project/tari-sub014/infrastructure/logger"
)

// ValidateBodyInIsolation validates the body without touching chain state:
// no coinbase parts, weight under the cap, versions and output features
// allowed, kernel and metadata signatures verify, the sums of commitments and
// kernel excesses balance against the transaction offset and reward, no
// duplicates, and burn kernels match burned outputs. The check order is
// consensus-significant and the first failure is returned.
func (v *aggregateBodyValidator) ValidateBodyInIsolation(body *aggregatebody.AggregateBody,
	txOffset *externalapi.DomainScalar, totalReward uint64, height uint64) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBodyInIsolation")
	defer onEnd()

	constants := v.constantsManager.ForHeight(height)

	err := validateIsNotCoinbase(body)
	if err != nil {
		return err
	}
	err = validateMaximumWeight(body, constants)
	if err != nil {
		return err
	}
	err = validateVersions(body, constants)
	if err != nil {
		return err
	}
	err = validateOutputFeatures(body, constants)
	if err != nil {
		return err
	}
	err = body.VerifyKernelSignatures()
	if err != nil {
		return err
	}
	err = validateKernelSum(body, txOffset, totalReward)
	if err != nil {
		return err
	}
	err = body.VerifyMetadataSignatures()
	if err != nil {
		return err
	}
	err = verifyNoDuplicatedInputsOutputs(body)
	if err != nil {
		return err
	}
	return body.CheckTotalBurned()
}

// validateIsNotCoinbase rejects bodies carrying coinbase outputs. Coinbases
// are created by the miner, never aggregated from transactions.
func validateIsNotCoinbase(body *aggregatebody.AggregateBody) error {
	for _, output := range body.Outputs() {
		if output.IsCoinbase() {
			return errors.Wrapf(ruleerrors.ErrErroneousCoinbaseOutput,
				"transaction body contains a coinbase output %s", output.Commitment)
		}
	}
	return nil
}

func validateMaximumWeight(body *aggregatebody.AggregateBody, constants *consensusconstants.Constants) error {
	weight, err := body.CalculateWeight(&constants.TransactionWeight)
	if err != nil {
		return err
	}
	if weight > constants.MaxBlockTransactionWeight {
		return errors.Wrapf(ruleerrors.ErrMaxTransactionWeightExceeded,
			"body weight is %d grams but the maximum is %d", weight, constants.MaxBlockTransactionWeight)
	}
	return nil
}

func validateOutputFeatures(body *aggregatebody.AggregateBody, constants *consensusconstants.Constants) error {
	// The body carries no coinbase outputs at this point, so the coinbase
	// extra size cap never applies.
	err := body.CheckOutputFeatures(1)
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

// validateKernelSum checks the balance equation of the body: the sum of
// kernel excesses, offset by the transaction offset and the reward, must equal
// the sum of outputs minus inputs plus the total fees. A body that balances
// creates no money out of thin air and destroys none.
func validateKernelSum(body *aggregatebody.AggregateBody, txOffset *externalapi.DomainScalar,
	totalReward uint64) error {

	offset, err := pedersen.ParseScalar(txOffset)
	if err != nil {
		return errors.Wrap(err, "transaction offset is not a valid scalar")
	}

	excess, totalFees, err := sumKernels(body, pedersen.Commit(totalReward, offset))
	if err != nil {
		return err
	}
	sumIO, err := sumCommitments(body)
	if err != nil {
		return err
	}
	expected, err := pedersen.Add(sumIO, pedersen.CommitValue(totalFees))
	if err != nil {
		return err
	}
	if !excess.Equal(expected) {
		log.Warnf("Aggregate body does not balance: kernel sum %s != io sum with fees %s", excess, expected)
		return errors.Wrap(ruleerrors.ErrKernelSumMismatch,
			"Sum of inputs and outputs did not equal sum of kernels with fees")
	}
	return nil
}

// sumKernels folds the kernel excesses and fees, starting the excess sum from
// the reward committed under the transaction offset.
func sumKernels(body *aggregatebody.AggregateBody, offsetWithReward *externalapi.DomainCommitment) (
	*externalapi.DomainCommitment, uint64, error) {

	sum := offsetWithReward
	totalFees := uint64(0)
	for _, kernel := range body.Kernels() {
		var err error
		sum, err = pedersen.Add(sum, &kernel.Excess)
		if err != nil {
			return nil, 0, err
		}
		if totalFees+kernel.Fee < totalFees {
			return nil, 0, errors.Wrapf(ruleerrors.ErrInvalidKernel, "kernel fees overflow")
		}
		totalFees += kernel.Fee
	}
	return sum, totalFees, nil
}

// sumCommitments returns the sum of output commitments minus the sum of input
// commitments.
func sumCommitments(body *aggregatebody.AggregateBody) (*externalapi.DomainCommitment, error) {
	outputCommitments := make([]*externalapi.DomainCommitment, 0, len(body.Outputs()))
	for _, output := range body.Outputs() {
		outputCommitments = append(outputCommitments, &output.Commitment)
	}
	outputSum, err := pedersen.Sum(outputCommitments...)
	if err != nil {
		return nil, err
	}

	inputCommitments := make([]*externalapi.DomainCommitment, 0, len(body.Inputs()))
	for _, input := range body.Inputs() {
		commitment, err := input.Commitment()
		if err != nil {
			return nil, err
		}
		inputCommitments = append(inputCommitments, commitment)
	}
	inputSum, err := pedersen.Sum(inputCommitments...)
	if err != nil {
		return nil, err
	}

	return pedersen.Sub(outputSum, inputSum)
}
