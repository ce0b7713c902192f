package externalapi

import (
	"bytes"
	"fmt"
)

// OutputType is the consensus-level type tag of a transaction output.
type OutputType byte

// All known output types. The byte values are part of the wire and hash
// encodings and must never be renumbered.
const (
	OutputTypeStandard OutputType = iota
	OutputTypeCoinbase
	OutputTypeBurn
	OutputTypeValidatorNodeRegistration
	OutputTypeCodeTemplateRegistration
)

func (outputType OutputType) String() string {
	switch outputType {
	case OutputTypeStandard:
		return "Standard"
	case OutputTypeCoinbase:
		return "Coinbase"
	case OutputTypeBurn:
		return "Burn"
	case OutputTypeValidatorNodeRegistration:
		return "ValidatorNodeRegistration"
	case OutputTypeCodeTemplateRegistration:
		return "CodeTemplateRegistration"
	default:
		return fmt.Sprintf("OutputType(%d)", byte(outputType))
	}
}

// RangeProofType selects the range-proof scheme an output commits to. The
// proof bytes themselves are opaque to this package.
type RangeProofType byte

// All known range proof types.
const (
	RangeProofTypeBulletProofPlus RangeProofType = iota
	RangeProofTypeRevealedValue
)

func (rangeProofType RangeProofType) String() string {
	switch rangeProofType {
	case RangeProofTypeBulletProofPlus:
		return "BulletProofPlus"
	case RangeProofTypeRevealedValue:
		return "RevealedValue"
	default:
		return fmt.Sprintf("RangeProofType(%d)", byte(rangeProofType))
	}
}

// DomainValidatorNodeRegistration is the sidechain feature carried by a
// validator-node registration output: the node's public key and a signature
// proving possession of the matching secret key.
type DomainValidatorNodeRegistration struct {
	PublicKey DomainPublicKey
	Signature DomainSignature
}

// Equal returns whether registration equals to other
func (registration *DomainValidatorNodeRegistration) Equal(other *DomainValidatorNodeRegistration) bool {
	if registration == nil || other == nil {
		return registration == other
	}

	return registration.PublicKey.Equal(&other.PublicKey) &&
		registration.Signature.Equal(&other.Signature)
}

// Clone returns a clone of registration
func (registration *DomainValidatorNodeRegistration) Clone() *DomainValidatorNodeRegistration {
	if registration == nil {
		return nil
	}
	registrationClone := *registration
	return &registrationClone
}

// OutputFeatures are the consensus-level properties of a transaction output:
// its type tag, spend maturity, coinbase extra bytes and optional sidechain
// registration data.
type OutputFeatures struct {
	Version                   uint8
	OutputType                OutputType
	Maturity                  uint64
	CoinbaseExtra             []byte
	RangeProofType            RangeProofType
	ValidatorNodeRegistration *DomainValidatorNodeRegistration
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = OutputFeatures{Version: 0, OutputType: 0, Maturity: 0,
	CoinbaseExtra: []byte{}, RangeProofType: 0, ValidatorNodeRegistration: nil}

// Equal returns whether features equals to other
func (features *OutputFeatures) Equal(other *OutputFeatures) bool {
	if features == nil || other == nil {
		return features == other
	}

	return features.Version == other.Version &&
		features.OutputType == other.OutputType &&
		features.Maturity == other.Maturity &&
		bytes.Equal(features.CoinbaseExtra, other.CoinbaseExtra) &&
		features.RangeProofType == other.RangeProofType &&
		features.ValidatorNodeRegistration.Equal(other.ValidatorNodeRegistration)
}

// Clone returns a clone of features
func (features *OutputFeatures) Clone() *OutputFeatures {
	return &OutputFeatures{
		Version:                   features.Version,
		OutputType:                features.OutputType,
		Maturity:                  features.Maturity,
		CoinbaseExtra:             append([]byte{}, features.CoinbaseExtra...),
		RangeProofType:            features.RangeProofType,
		ValidatorNodeRegistration: features.ValidatorNodeRegistration.Clone(),
	}
}
