package aggregatebodyvalidator

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/ruleerrors"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusconstants"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensushashing"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/pedersen"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/schnorr"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/tariscript"
)

// validateVersions checks every version field the body carries against the
// ranges consensus allows at this height.
func validateVersions(body *aggregatebody.AggregateBody, constants *consensusconstants.Constants) error {
	for _, input := range body.Inputs() {
		err := validateInputVersion(constants, input)
		if err != nil {
			return err
		}
	}
	for _, output := range body.Outputs() {
		err := validateOutputVersion(constants, output)
		if err != nil {
			return err
		}
	}
	for _, kernel := range body.Kernels() {
		err := validateKernelVersion(constants, kernel)
		if err != nil {
			return err
		}
	}
	return nil
}

func validateInputVersion(constants *consensusconstants.Constants, input *externalapi.DomainTransactionInput) error {
	if !constants.InputVersionRange.Contains(input.Version) {
		return ruleerrors.NewErrConsensus(fmt.Sprintf(
			"Transaction input contains a version not allowed by consensus (%d)", input.Version))
	}
	return nil
}

func validateOutputVersion(constants *consensusconstants.Constants, output *externalapi.DomainTransactionOutput) error {
	if !constants.OutputVersionRange.Outputs.Contains(output.Version) {
		return ruleerrors.NewErrConsensus(fmt.Sprintf(
			"Transaction output version is not allowed by consensus (%d)", output.Version))
	}
	if !constants.OutputVersionRange.Features.Contains(output.Features.Version) {
		return ruleerrors.NewErrConsensus(fmt.Sprintf(
			"Transaction output features version is not allowed by consensus (%d)", output.Features.Version))
	}

	instructions, err := tariscript.Parse(output.Script)
	if err != nil {
		return ruleerrors.NewErrConsensus(fmt.Sprintf("Transaction output script does not parse: %s", err))
	}
	for i := range instructions {
		instruction := &instructions[i]
		if !constants.OutputVersionRange.Opcode.Contains(instruction.Version()) {
			return ruleerrors.NewErrConsensus(fmt.Sprintf(
				"Transaction output script opcode is not allowed by consensus (%s)", instruction))
		}
	}
	return nil
}

func validateKernelVersion(constants *consensusconstants.Constants, kernel *externalapi.DomainTransactionKernel) error {
	if !constants.KernelVersionRange.Contains(kernel.Version) {
		return ruleerrors.NewErrConsensus(fmt.Sprintf(
			"Transaction kernel version is not allowed by consensus (%d)", kernel.Version))
	}
	return nil
}

func checkPermittedOutputTypes(constants *consensusconstants.Constants,
	output *externalapi.DomainTransactionOutput) error {

	if !constants.OutputTypePermitted(output.Features.OutputType) {
		return ruleerrors.NewErrOutputTypeNotPermitted(output.Features.OutputType)
	}
	return nil
}

// checkValidatorNodeRegistrationUTXO checks the validator node registration an
// output may carry: the output must stake at least the minimum deposit, lock
// it for at least the minimum period, and prove possession of the validator
// node key.
func checkValidatorNodeRegistrationUTXO(constants *consensusconstants.Constants,
	output *externalapi.DomainTransactionOutput) error {

	registration := output.Features.ValidatorNodeRegistration
	if registration == nil {
		return nil
	}

	if output.MinimumValuePromise < constants.ValidatorNodeRegistrationMinDepositAmount {
		return ruleerrors.NewErrValidatorNodeRegistrationMinDepositAmount(
			constants.ValidatorNodeRegistrationMinDepositAmount, output.MinimumValuePromise)
	}
	if output.Features.Maturity < constants.ValidatorNodeRegistrationMinLockHeight {
		return ruleerrors.NewErrValidatorNodeRegistrationMinLockHeight(
			constants.ValidatorNodeRegistrationMinLockHeight, output.Features.Maturity)
	}

	// TODO(security): signing over a blank message allows the signature to
	// be replayed. Signing over the commitment would enforce uniqueness,
	// but the validator node and the wallet hold different keys, so the
	// signer does not know the commitment at signing time.
	valid, err := verifyValidatorNodeSignature(registration, []byte{})
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidValidatorNodeSignature,
			"validator node %s: %s", registration.PublicKey, err)
	}
	if !valid {
		return errors.Wrapf(ruleerrors.ErrInvalidValidatorNodeSignature,
			"validator node %s", registration.PublicKey)
	}
	return nil
}

func verifyValidatorNodeSignature(registration *externalapi.DomainValidatorNodeRegistration,
	message []byte) (bool, error) {

	challengeHash := consensushashing.ValidatorNodeSignatureChallenge(
		&registration.PublicKey, &registration.Signature.PublicNonce, message)
	challenge := pedersen.ScalarFromHash(challengeHash)
	return schnorr.Verify(&registration.Signature, &registration.PublicKey, challenge)
}
