package aggregatebodyvalidator

import (
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/ruleerrors"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusconstants"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensushashing"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/hashset"
)

// checkInputsAreUTXOs checks that every input spends an output that is
// currently unspent, or an output created by this same body. Unknown inputs
// are not fatal one at a time: they are collected so the caller learns every
// missing output in a single error.
func (v *aggregateBodyValidator) checkInputsAreUTXOs(body *aggregatebody.AggregateBody) error {
	var notFoundInputs []*externalapi.DomainHash
	var outputHashes hashset.HashSet

	for _, input := range body.Inputs() {
		err := v.checkInputIsUTXO(input)
		if err == nil {
			continue
		}
		if !errors.Is(err, ruleerrors.ErrUnknownInput) {
			return err
		}

		// The input may spend an output of this same body. The output
		// hash set is built lazily, only once an input misses the
		// chain.
		if outputHashes == nil {
			outputHashes = hashOutputs(body.Outputs())
		}
		inputOutputHash := consensushashing.InputOutputHash(input)
		if outputHashes.Contains(inputOutputHash) {
			continue
		}
		notFoundInputs = append(notFoundInputs, inputOutputHash)
	}

	if len(notFoundInputs) > 0 {
		return ruleerrors.NewErrUnknownInputs(notFoundInputs)
	}
	return nil
}

// checkInputIsUTXO checks a single input against the chain. The serious
// errors are the spent ones: an output missing from the unspent set but
// present in the chain has already been spent.
func (v *aggregateBodyValidator) checkInputIsUTXO(input *externalapi.DomainTransactionInput) error {
	inputOutputHash := consensushashing.InputOutputHash(input)
	commitment, err := input.Commitment()
	if err != nil {
		return err
	}

	unspentOutputHash, err := v.backend.FetchUnspentOutputHashByCommitment(commitment)
	if err != nil {
		return err
	}
	if unspentOutputHash != nil {
		if unspentOutputHash.Equal(inputOutputHash) {
			return nil
		}
		// The commitment is in the unspent set, under different output
		// data. Spending it with this input's data would break the
		// hash-keyed indexes.
		log.Warnf("Input spends a UTXO but does not produce the same hash as the "+
			"stored one: %s != %s", inputOutputHash, unspentOutputHash)
		return errors.Wrapf(ruleerrors.ErrContainsSTxO,
			"input with output hash %s does not match the stored unspent output", inputOutputHash)
	}

	output, err := v.backend.FetchOutput(inputOutputHash)
	if err != nil {
		return err
	}
	if output != nil {
		// A wallet watching for its transaction relies on this error to
		// learn the transaction was already mined.
		return errors.Wrapf(ruleerrors.ErrContainsSTxO,
			"input with output hash %s was already spent", inputOutputHash)
	}

	return errors.Wrapf(ruleerrors.ErrUnknownInput,
		"input with output hash %s does not exist yet", inputOutputHash)
}

func hashOutputs(outputs []*externalapi.DomainTransactionOutput) hashset.HashSet {
	hashes := hashset.New()
	for _, output := range outputs {
		hashes.Add(consensushashing.OutputHash(output))
	}
	return hashes
}

// checkOutputs runs the per-output chain checks: the output's type is
// permitted, its script fits, it does not already exist in the chain, and any
// validator node registration it carries is well-formed.
func (v *aggregateBodyValidator) checkOutputs(body *aggregatebody.AggregateBody,
	constants *consensusconstants.Constants) error {

	for _, output := range body.Outputs() {
		err := checkPermittedOutputTypes(constants, output)
		if err != nil {
			return err
		}
		err = checkTariScriptByteSize(output.Script, constants.MaxScriptByteSize)
		if err != nil {
			return err
		}
		err = v.checkNotDuplicateTxO(output)
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

func checkTariScriptByteSize(script []byte, maxScriptSize int) error {
	if len(script) > maxScriptSize {
		return ruleerrors.NewErrTariScriptExceedsMaxSize(maxScriptSize, len(script))
	}
	return nil
}

// checkNotDuplicateTxO checks that the output was never mined before, under
// its hash or under its commitment.
func (v *aggregateBodyValidator) checkNotDuplicateTxO(output *externalapi.DomainTransactionOutput) error {
	outputHash := consensushashing.OutputHash(output)

	index, found, err := v.backend.FetchMMRLeafIndex(externalapi.MMRTreeUTXO, outputHash)
	if err != nil {
		return err
	}
	if found {
		log.Warnf("Validation failed due to previously spent output: %s (MMR index = %d)", outputHash, index)
		return errors.Wrapf(ruleerrors.ErrContainsTxO,
			"output %s was already mined (MMR index = %d)", outputHash, index)
	}

	unspentOutputHash, err := v.backend.FetchUnspentOutputHashByCommitment(&output.Commitment)
	if err != nil {
		return err
	}
	if unspentOutputHash != nil {
		log.Warnf("Duplicate UTXO commitment %s", output.Commitment)
		return errors.Wrapf(ruleerrors.ErrContainsDuplicateUtxoCommitment,
			"output commitment %s already belongs to an unspent output", output.Commitment)
	}

	return nil
}
