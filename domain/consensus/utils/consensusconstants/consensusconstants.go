// Package consensusconstants defines the height-dependent policy parameters
// consulted during body validation: permitted output types, version ranges,
// size and weight limits, and validator node registration minimums. Constants
// change at hard-fork heights, so they are looked up through a Manager that
// selects the set in effect at a given height.
package consensusconstants

import (
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/tariscript"
)

// VersionRange is an inclusive range of allowed versions.
type VersionRange struct {
	Min uint8
	Max uint8
}

// Contains returns whether version lies within the range.
func (versionRange *VersionRange) Contains(version uint8) bool {
	return version >= versionRange.Min && version <= versionRange.Max
}

// OpcodeVersionRange is an inclusive range of allowed script opcode versions.
type OpcodeVersionRange struct {
	Min tariscript.OpcodeVersion
	Max tariscript.OpcodeVersion
}

// Contains returns whether version lies within the range.
func (versionRange *OpcodeVersionRange) Contains(version tariscript.OpcodeVersion) bool {
	return version >= versionRange.Min && version <= versionRange.Max
}

// OutputVersionRange bundles the version ranges applied to outputs: the
// output structure itself, its features, and the opcodes of its script.
type OutputVersionRange struct {
	Outputs  VersionRange
	Features VersionRange
	Opcode   OpcodeVersionRange
}

// WeightParams are the gram weights of the body weight formula. A body's
// weight is the weighted count of its kernels, inputs and outputs plus one
// gram per started FeaturesAndScriptsBytesPerGram bytes of output features
// and scripts.
type WeightParams struct {
	KernelWeight uint64
	InputWeight  uint64
	OutputWeight uint64

	// FeaturesAndScriptsBytesPerGram may be zero, in which case the byte
	// term is dropped from the formula.
	FeaturesAndScriptsBytesPerGram uint64
}

// Calculate returns the weight of a body with the given part counts and
// total serialized size of output features and scripts.
func (params *WeightParams) Calculate(numKernels, numInputs, numOutputs int, featuresAndScriptsByteSize uint64) uint64 {
	weight := params.KernelWeight*uint64(numKernels) +
		params.InputWeight*uint64(numInputs) +
		params.OutputWeight*uint64(numOutputs)
	if params.FeaturesAndScriptsBytesPerGram > 0 {
		bytesPerGram := params.FeaturesAndScriptsBytesPerGram
		weight += (featuresAndScriptsByteSize + bytesPerGram - 1) / bytesPerGram
	}
	return weight
}

// Constants is one set of consensus parameters, in effect from
// EffectiveFromHeight until the effective height of the next set.
type Constants struct {
	// EffectiveFromHeight is the first height this set applies to.
	EffectiveFromHeight uint64

	// CoinbaseMinMaturity is the number of blocks a coinbase output must
	// mature for beyond the height it was mined at.
	CoinbaseMinMaturity uint64

	// CoinbaseExtraMaxSize caps the extra metadata of a coinbase output.
	CoinbaseExtraMaxSize int

	// MaxBlockTransactionWeight caps a body's weight, excluding the
	// coinbase parts.
	MaxBlockTransactionWeight uint64

	// MaxScriptByteSize caps the serialized size of an output script.
	MaxScriptByteSize int

	InputVersionRange  VersionRange
	OutputVersionRange OutputVersionRange
	KernelVersionRange VersionRange

	// PermittedOutputTypes lists the output types bodies may carry.
	PermittedOutputTypes []externalapi.OutputType

	// ValidatorNodeRegistrationMinDepositAmount is the least value a
	// validator node registration output may promise.
	ValidatorNodeRegistrationMinDepositAmount uint64

	// ValidatorNodeRegistrationMinLockHeight is the least maturity a
	// validator node registration output may carry.
	ValidatorNodeRegistrationMinLockHeight uint64

	// TransactionWeight are the gram weights of the weight formula.
	TransactionWeight WeightParams
}

// OutputTypePermitted returns whether the given output type is permitted.
func (constants *Constants) OutputTypePermitted(outputType externalapi.OutputType) bool {
	for _, permitted := range constants.PermittedOutputTypes {
		if permitted == outputType {
			return true
		}
	}
	return false
}

// Manager selects the constants in effect at a given height.
type Manager struct {
	constants []Constants
}

// NewManager builds a Manager from constant sets ordered by ascending
// effective height. The first set must take effect at height zero so every
// height resolves to a set.
func NewManager(constants []Constants) (*Manager, error) {
	if len(constants) == 0 {
		return nil, errors.New("no consensus constants provided")
	}
	if constants[0].EffectiveFromHeight != 0 {
		return nil, errors.Errorf("first consensus constants must take effect at height 0, not %d",
			constants[0].EffectiveFromHeight)
	}
	for i := 1; i < len(constants); i++ {
		if constants[i].EffectiveFromHeight <= constants[i-1].EffectiveFromHeight {
			return nil, errors.Errorf("consensus constants effective heights must be ascending: "+
				"%d is not above %d", constants[i].EffectiveFromHeight, constants[i-1].EffectiveFromHeight)
		}
	}
	return &Manager{constants: constants}, nil
}

// ForHeight returns the constants in effect at the given height.
func (manager *Manager) ForHeight(height uint64) *Constants {
	current := &manager.constants[0]
	for i := 1; i < len(manager.constants); i++ {
		if manager.constants[i].EffectiveFromHeight > height {
			break
		}
		current = &manager.constants[i]
	}
	return current
}
