package consensusconstants

import (
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/tariscript"
)

func allOutputTypes() []externalapi.OutputType {
	return []externalapi.OutputType{
		externalapi.OutputTypeStandard,
		externalapi.OutputTypeCoinbase,
		externalapi.OutputTypeBurn,
		externalapi.OutputTypeValidatorNodeRegistration,
		externalapi.OutputTypeCodeTemplateRegistration,
	}
}

func v0VersionRanges() (VersionRange, OutputVersionRange, VersionRange) {
	v0 := VersionRange{Min: 0, Max: 0}
	outputRange := OutputVersionRange{
		Outputs:  v0,
		Features: v0,
		Opcode:   OpcodeVersionRange{Min: tariscript.OpcodeVersionV0, Max: tariscript.OpcodeVersionV0},
	}
	return v0, outputRange, v0
}

// weightParamsV1 is the gram schedule shared by all networks.
func weightParamsV1() WeightParams {
	return WeightParams{
		KernelWeight:                   10,
		InputWeight:                    8,
		OutputWeight:                   53,
		FeaturesAndScriptsBytesPerGram: 16,
	}
}

// MainNet returns the constant sets of the main network. The slice is fresh
// on every call so callers may not corrupt the presets of other callers.
func MainNet() []Constants {
	inputRange, outputRange, kernelRange := v0VersionRanges()
	return []Constants{{
		EffectiveFromHeight:       0,
		CoinbaseMinMaturity:       360,
		CoinbaseExtraMaxSize:      64,
		MaxBlockTransactionWeight: 127795,
		MaxScriptByteSize:         2048,
		InputVersionRange:         inputRange,
		OutputVersionRange:        outputRange,
		KernelVersionRange:        kernelRange,
		PermittedOutputTypes:      allOutputTypes(),
		ValidatorNodeRegistrationMinDepositAmount: 10000000000,
		ValidatorNodeRegistrationMinLockHeight:    1440,
		TransactionWeight:                         weightParamsV1(),
	}}
}

// LocalNet returns the constant sets of an isolated development network:
// the main network rules with maturities and minimums small enough to
// exercise in a local session.
func LocalNet() []Constants {
	inputRange, outputRange, kernelRange := v0VersionRanges()
	return []Constants{{
		EffectiveFromHeight:       0,
		CoinbaseMinMaturity:       2,
		CoinbaseExtraMaxSize:      64,
		MaxBlockTransactionWeight: 127795,
		MaxScriptByteSize:         2048,
		InputVersionRange:         inputRange,
		OutputVersionRange:        outputRange,
		KernelVersionRange:        kernelRange,
		PermittedOutputTypes:      allOutputTypes(),
		ValidatorNodeRegistrationMinDepositAmount: 1000000,
		ValidatorNodeRegistrationMinLockHeight:    4,
		TransactionWeight:                         weightParamsV1(),
	}}
}
