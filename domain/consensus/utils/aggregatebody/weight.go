package aggregatebody

import (
	"bytes"

	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusconstants"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusserialization"
)

// CalculateWeight returns the body's weight in grams under the given
// parameters. The per-part weights cover the constant-size fields; the
// serialized output features and scripts are metered separately per started
// block of FeaturesAndScriptsBytesPerGram bytes, so large scripts and
// metadata pay their way.
func (body *AggregateBody) CalculateWeight(params *consensusconstants.WeightParams) (uint64, error) {
	byteSize, err := body.featuresAndScriptsByteSize()
	if err != nil {
		return 0, err
	}
	return params.Calculate(len(body.kernels), len(body.inputs), len(body.outputs), byteSize), nil
}

// featuresAndScriptsByteSize sums the consensus-serialized size of every
// output's features plus its raw script bytes.
func (body *AggregateBody) featuresAndScriptsByteSize() (uint64, error) {
	total := uint64(0)
	for _, output := range body.outputs {
		buffer := &bytes.Buffer{}
		err := consensusserialization.SerializeOutputFeatures(buffer, output.Features)
		if err != nil {
			return 0, err
		}
		total += uint64(buffer.Len()) + uint64(len(output.Script))
	}
	return total, nil
}
