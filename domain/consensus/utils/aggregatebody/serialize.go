package aggregatebody

import (
	"io"

	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusserialization"
)

// Serialize writes the body to w in consensus encoding: the inputs, outputs
// and kernels as length-prefixed collections, in that order. The sorted flag
// is a local cache and is not part of the encoding.
func Serialize(w io.Writer, body *AggregateBody) error {
	err := consensusserialization.WriteCollectionLength(w, uint64(len(body.inputs)))
	if err != nil {
		return err
	}
	for _, input := range body.inputs {
		err = consensusserialization.SerializeTransactionInput(w, input)
		if err != nil {
			return err
		}
	}

	err = consensusserialization.WriteCollectionLength(w, uint64(len(body.outputs)))
	if err != nil {
		return err
	}
	for _, output := range body.outputs {
		err = consensusserialization.SerializeTransactionOutput(w, output)
		if err != nil {
			return err
		}
	}

	err = consensusserialization.WriteCollectionLength(w, uint64(len(body.kernels)))
	if err != nil {
		return err
	}
	for _, kernel := range body.kernels {
		err = consensusserialization.SerializeTransactionKernel(w, kernel)
		if err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a body from r. The result is never trusted to be sorted,
// whatever order the encoding carried.
func Deserialize(r io.Reader) (*AggregateBody, error) {
	inputsLength, err := consensusserialization.ReadCollectionLength(r)
	if err != nil {
		return nil, err
	}
	inputs := make([]*externalapi.DomainTransactionInput, 0, inputsLength)
	for i := uint64(0); i < inputsLength; i++ {
		input, err := consensusserialization.DeserializeTransactionInput(r)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
	}

	outputsLength, err := consensusserialization.ReadCollectionLength(r)
	if err != nil {
		return nil, err
	}
	outputs := make([]*externalapi.DomainTransactionOutput, 0, outputsLength)
	for i := uint64(0); i < outputsLength; i++ {
		output, err := consensusserialization.DeserializeTransactionOutput(r)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}

	kernelsLength, err := consensusserialization.ReadCollectionLength(r)
	if err != nil {
		return nil, err
	}
	kernels := make([]*externalapi.DomainTransactionKernel, 0, kernelsLength)
	for i := uint64(0); i < kernelsLength; i++ {
		kernel, err := consensusserialization.DeserializeTransactionKernel(r)
		if err != nil {
			return nil, err
		}
		kernels = append(kernels, kernel)
	}

	return New(inputs, outputs, kernels), nil
}
