package externalapi

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// ErrMissingTransactionInputData is returned when send-side data is requested
// from an input in compact form, where only the spent output's hash is known.
// It indicates a construction problem rather than a consensus rule violation.
var ErrMissingTransactionInputData = errors.New("transaction input spent output data is not provided")

// KernelFeatures is the bitflag field of a transaction kernel.
type KernelFeatures byte

const (
	// KernelFeatureCoinbase marks the kernel of a coinbase transaction.
	KernelFeatureCoinbase KernelFeatures = 1 << 0

	// KernelFeatureBurn marks the kernel of a burn transaction.
	KernelFeatureBurn KernelFeatures = 1 << 1
)

// IsCoinbase returns whether the coinbase flag is set.
func (features KernelFeatures) IsCoinbase() bool {
	return features&KernelFeatureCoinbase != 0
}

// IsBurned returns whether the burn flag is set.
func (features KernelFeatures) IsBurned() bool {
	return features&KernelFeatureBurn != 0
}

func (features KernelFeatures) String() string {
	switch {
	case features.IsCoinbase() && features.IsBurned():
		return "Coinbase|Burn"
	case features.IsCoinbase():
		return "Coinbase"
	case features.IsBurned():
		return "Burn"
	case features == 0:
		return "Plain"
	default:
		return fmt.Sprintf("KernelFeatures(%08b)", byte(features))
	}
}

// DomainTransactionKernel is the "kernel" of a Mimblewimble transaction: the
// excess commitment that balances the transaction, a signature proving
// knowledge of the excess, the fee and an optional lock height. Kernels are
// the permanent record of a transaction having happened.
type DomainTransactionKernel struct {
	Version    uint8
	Features   KernelFeatures
	Fee        uint64
	LockHeight uint64
	Excess     DomainCommitment
	ExcessSig  DomainSignature

	// BurnCommitment is only set when the burn feature flag is, and commits
	// to the amount burned.
	BurnCommitment *DomainCommitment
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal, Cmp and Clone accordingly.
var _ = DomainTransactionKernel{Version: 0, Features: 0, Fee: 0, LockHeight: 0,
	Excess: DomainCommitment{}, ExcessSig: DomainSignature{}, BurnCommitment: nil}

// IsCoinbase returns whether this kernel carries the coinbase feature flag.
func (kernel *DomainTransactionKernel) IsCoinbase() bool {
	return kernel.Features.IsCoinbase()
}

// IsBurned returns whether this kernel carries the burn feature flag.
func (kernel *DomainTransactionKernel) IsBurned() bool {
	return kernel.Features.IsBurned()
}

// Equal returns whether kernel equals to other
func (kernel *DomainTransactionKernel) Equal(other *DomainTransactionKernel) bool {
	if kernel == nil || other == nil {
		return kernel == other
	}

	if (kernel.BurnCommitment == nil) != (other.BurnCommitment == nil) {
		return false
	}
	if kernel.BurnCommitment != nil && !kernel.BurnCommitment.Equal(other.BurnCommitment) {
		return false
	}

	return kernel.Version == other.Version &&
		kernel.Features == other.Features &&
		kernel.Fee == other.Fee &&
		kernel.LockHeight == other.LockHeight &&
		kernel.Excess.Equal(&other.Excess) &&
		kernel.ExcessSig.Equal(&other.ExcessSig)
}

// Cmp compares kernel to other by excess signature. The excess signature is
// both the kernel's canonical sort key and its identity for duplicate
// detection.
func (kernel *DomainTransactionKernel) Cmp(other *DomainTransactionKernel) int {
	return kernel.ExcessSig.Cmp(&other.ExcessSig)
}

// Clone returns a clone of kernel
func (kernel *DomainTransactionKernel) Clone() *DomainTransactionKernel {
	kernelClone := *kernel
	if kernel.BurnCommitment != nil {
		burnCommitmentClone := *kernel.BurnCommitment
		kernelClone.BurnCommitment = &burnCommitmentClone
	}
	return &kernelClone
}

func (kernel DomainTransactionKernel) String() string {
	return fmt.Sprintf("Fee: %d, Lock height: %d, Features: %s, Excess: %s, Excess signature: (%s)",
		kernel.Fee, kernel.LockHeight, kernel.Features, kernel.Excess, kernel.ExcessSig)
}

// DomainSpentOutputData is the full form of a spent output carried inside a
// transaction input: every field needed to recompute the spent output's hash
// and to apply maturity and ownership rules without a database lookup.
type DomainSpentOutputData struct {
	Version               uint8
	Features              *OutputFeatures
	Commitment            DomainCommitment
	Script                []byte
	SenderOffsetPublicKey DomainPublicKey
	Covenant              []byte
	EncryptedData         []byte
	MinimumValuePromise   uint64
}

// Equal returns whether data equals to other
func (data *DomainSpentOutputData) Equal(other *DomainSpentOutputData) bool {
	if data == nil || other == nil {
		return data == other
	}

	return data.Version == other.Version &&
		data.Features.Equal(other.Features) &&
		data.Commitment.Equal(&other.Commitment) &&
		bytes.Equal(data.Script, other.Script) &&
		data.SenderOffsetPublicKey.Equal(&other.SenderOffsetPublicKey) &&
		bytes.Equal(data.Covenant, other.Covenant) &&
		bytes.Equal(data.EncryptedData, other.EncryptedData) &&
		data.MinimumValuePromise == other.MinimumValuePromise
}

// Clone returns a clone of data
func (data *DomainSpentOutputData) Clone() *DomainSpentOutputData {
	return &DomainSpentOutputData{
		Version:               data.Version,
		Features:              data.Features.Clone(),
		Commitment:            data.Commitment,
		Script:                append([]byte{}, data.Script...),
		SenderOffsetPublicKey: data.SenderOffsetPublicKey,
		Covenant:              append([]byte{}, data.Covenant...),
		EncryptedData:         append([]byte{}, data.EncryptedData...),
		MinimumValuePromise:   data.MinimumValuePromise,
	}
}

// DomainSpentOutput is a sum type describing the output an input spends:
// either just the output's hash (compact form, used on the wire) or the full
// output data (resolved form). Exactly one of the two is set.
type DomainSpentOutput struct {
	outputHash *DomainHash
	outputData *DomainSpentOutputData
}

// NewSpentOutputFromHash builds the compact form referencing an output by hash.
func NewSpentOutputFromHash(outputHash *DomainHash) DomainSpentOutput {
	return DomainSpentOutput{outputHash: outputHash}
}

// NewSpentOutputFromData builds the full form carrying the spent output's data.
func NewSpentOutputFromData(outputData *DomainSpentOutputData) DomainSpentOutput {
	return DomainSpentOutput{outputData: outputData}
}

// IsCompact returns whether only the spent output's hash is known.
func (spentOutput *DomainSpentOutput) IsCompact() bool {
	return spentOutput.outputData == nil
}

// Equal returns whether spentOutput structurally equals to other
func (spentOutput *DomainSpentOutput) Equal(other *DomainSpentOutput) bool {
	if spentOutput.IsCompact() != other.IsCompact() {
		return false
	}
	if spentOutput.IsCompact() {
		return spentOutput.outputHash.Equal(other.outputHash)
	}
	return spentOutput.outputData.Equal(other.outputData)
}

// Clone returns a clone of spentOutput
func (spentOutput *DomainSpentOutput) Clone() DomainSpentOutput {
	if spentOutput.IsCompact() {
		return DomainSpentOutput{outputHash: spentOutput.outputHash}
	}
	return DomainSpentOutput{outputData: spentOutput.outputData.Clone()}
}

// DomainTransactionInput spends a previous transaction output. In the compact
// form it references the spent output by hash only; in the full form it
// carries the spent output's data. Either way it carries the script witness:
// the input data (execution stack) and the script signature.
type DomainTransactionInput struct {
	Version         uint8
	SpentOutput     DomainSpentOutput
	InputData       []byte
	ScriptSignature DomainComAndPubSignature
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainTransactionInput{Version: 0, SpentOutput: DomainSpentOutput{},
	InputData: []byte{}, ScriptSignature: DomainComAndPubSignature{}}

// IsCompact returns whether this input carries only the spent output's hash.
func (input *DomainTransactionInput) IsCompact() bool {
	return input.SpentOutput.IsCompact()
}

// SpentOutputHash returns the referenced output hash of a compact input. It
// returns nil for an input in full form, whose output hash is derived instead.
func (input *DomainTransactionInput) SpentOutputHash() *DomainHash {
	return input.SpentOutput.outputHash
}

// SpentOutputData returns the full spent output data, or an error if this
// input is in compact form.
func (input *DomainTransactionInput) SpentOutputData() (*DomainSpentOutputData, error) {
	if input.SpentOutput.outputData == nil {
		return nil, errors.WithStack(ErrMissingTransactionInputData)
	}
	return input.SpentOutput.outputData, nil
}

// Features returns the spent output's features, or an error if this input is
// in compact form.
func (input *DomainTransactionInput) Features() (*OutputFeatures, error) {
	if input.SpentOutput.outputData == nil {
		return nil, errors.WithStack(ErrMissingTransactionInputData)
	}
	return input.SpentOutput.outputData.Features, nil
}

// Commitment returns the spent output's commitment, or an error if this input
// is in compact form.
func (input *DomainTransactionInput) Commitment() (*DomainCommitment, error) {
	if input.SpentOutput.outputData == nil {
		return nil, errors.WithStack(ErrMissingTransactionInputData)
	}
	return &input.SpentOutput.outputData.Commitment, nil
}

// Script returns the spent output's script bytes, or an error if this input
// is in compact form.
func (input *DomainTransactionInput) Script() ([]byte, error) {
	if input.SpentOutput.outputData == nil {
		return nil, errors.WithStack(ErrMissingTransactionInputData)
	}
	return input.SpentOutput.outputData.Script, nil
}

// SenderOffsetPublicKey returns the spent output's sender offset public key,
// or an error if this input is in compact form.
func (input *DomainTransactionInput) SenderOffsetPublicKey() (*DomainPublicKey, error) {
	if input.SpentOutput.outputData == nil {
		return nil, errors.WithStack(ErrMissingTransactionInputData)
	}
	return &input.SpentOutput.outputData.SenderOffsetPublicKey, nil
}

// Covenant returns the spent output's covenant bytes, or an error if this
// input is in compact form.
func (input *DomainTransactionInput) Covenant() ([]byte, error) {
	if input.SpentOutput.outputData == nil {
		return nil, errors.WithStack(ErrMissingTransactionInputData)
	}
	return input.SpentOutput.outputData.Covenant, nil
}

// IsMatureAt returns whether the spent output may be spent at the given block
// height, or an error if this input is in compact form.
func (input *DomainTransactionInput) IsMatureAt(blockHeight uint64) (bool, error) {
	features, err := input.Features()
	if err != nil {
		return false, err
	}
	return features.Maturity <= blockHeight, nil
}

// Equal returns whether input structurally equals to other. Note that the
// canonical ordering of inputs compares by derived output hash instead and is
// defined by the body package.
func (input *DomainTransactionInput) Equal(other *DomainTransactionInput) bool {
	if input == nil || other == nil {
		return input == other
	}

	return input.Version == other.Version &&
		input.SpentOutput.Equal(&other.SpentOutput) &&
		bytes.Equal(input.InputData, other.InputData) &&
		input.ScriptSignature.Equal(&other.ScriptSignature)
}

// Clone returns a clone of input
func (input *DomainTransactionInput) Clone() *DomainTransactionInput {
	return &DomainTransactionInput{
		Version:         input.Version,
		SpentOutput:     input.SpentOutput.Clone(),
		InputData:       append([]byte{}, input.InputData...),
		ScriptSignature: *input.ScriptSignature.Clone(),
	}
}

// DomainTransactionOutput is a transaction output: a Pedersen commitment to
// the value, an opaque range proof, the locking script, the sender offset
// public key with the metadata signature binding all metadata fields, and the
// covenant restricting future spends.
type DomainTransactionOutput struct {
	Version               uint8
	Features              *OutputFeatures
	Commitment            DomainCommitment
	RangeProof            []byte
	Script                []byte
	SenderOffsetPublicKey DomainPublicKey
	MetadataSignature     DomainComAndPubSignature
	Covenant              []byte
	EncryptedData         []byte
	MinimumValuePromise   uint64
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainTransactionOutput{Version: 0, Features: nil, Commitment: DomainCommitment{},
	RangeProof: []byte{}, Script: []byte{}, SenderOffsetPublicKey: DomainPublicKey{},
	MetadataSignature: DomainComAndPubSignature{}, Covenant: []byte{}, EncryptedData: []byte{},
	MinimumValuePromise: 0}

// IsCoinbase returns whether this output was created by a coinbase transaction.
func (output *DomainTransactionOutput) IsCoinbase() bool {
	return output.Features.OutputType == OutputTypeCoinbase
}

// IsBurned returns whether this output is burned and unspendable.
func (output *DomainTransactionOutput) IsBurned() bool {
	return output.Features.OutputType == OutputTypeBurn
}

// Equal returns whether output equals to other
func (output *DomainTransactionOutput) Equal(other *DomainTransactionOutput) bool {
	if output == nil || other == nil {
		return output == other
	}

	return output.Version == other.Version &&
		output.Features.Equal(other.Features) &&
		output.Commitment.Equal(&other.Commitment) &&
		bytes.Equal(output.RangeProof, other.RangeProof) &&
		bytes.Equal(output.Script, other.Script) &&
		output.SenderOffsetPublicKey.Equal(&other.SenderOffsetPublicKey) &&
		output.MetadataSignature.Equal(&other.MetadataSignature) &&
		bytes.Equal(output.Covenant, other.Covenant) &&
		bytes.Equal(output.EncryptedData, other.EncryptedData) &&
		output.MinimumValuePromise == other.MinimumValuePromise
}

// Cmp compares output to other by commitment. This is the ordering used for
// canonical output sorting.
func (output *DomainTransactionOutput) Cmp(other *DomainTransactionOutput) int {
	return output.Commitment.Cmp(&other.Commitment)
}

// Clone returns a clone of output
func (output *DomainTransactionOutput) Clone() *DomainTransactionOutput {
	return &DomainTransactionOutput{
		Version:               output.Version,
		Features:              output.Features.Clone(),
		Commitment:            output.Commitment,
		RangeProof:            append([]byte{}, output.RangeProof...),
		Script:                append([]byte{}, output.Script...),
		SenderOffsetPublicKey: output.SenderOffsetPublicKey,
		MetadataSignature:     *output.MetadataSignature.Clone(),
		Covenant:              append([]byte{}, output.Covenant...),
		EncryptedData:         append([]byte{}, output.EncryptedData...),
		MinimumValuePromise:   output.MinimumValuePromise,
	}
}

func (output DomainTransactionOutput) String() string {
	return fmt.Sprintf("%s output, commitment: %s, maturity: %d",
		output.Features.OutputType, output.Commitment, output.Features.Maturity)
}
