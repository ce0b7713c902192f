package ruleerrors

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrUnknownInput indicates an input references an output that is neither
	// in the unspent set nor among the outputs of the same body.
	ErrUnknownInput = newRuleError("ErrUnknownInput")

	// ErrContainsSTxO indicates an input references an output that has already
	// been spent. Distinguished from ErrUnknownInput so a wallet can tell
	// "this transaction was already mined" from "this transaction is invalid".
	ErrContainsSTxO = newRuleError("ErrContainsSTxO")

	// ErrContainsTxO indicates a body output already exists in the unspent
	// output set (found by MMR leaf index).
	ErrContainsTxO = newRuleError("ErrContainsTxO")

	// ErrContainsDuplicateUtxoCommitment indicates a body output commitment
	// already exists in the unspent output set.
	ErrContainsDuplicateUtxoCommitment = newRuleError("ErrContainsDuplicateUtxoCommitment")

	// ErrUnsortedOrDuplicateInput indicates the body contains duplicate inputs.
	ErrUnsortedOrDuplicateInput = newRuleError("ErrUnsortedOrDuplicateInput")

	// ErrUnsortedOrDuplicateOutput indicates the body contains duplicate outputs.
	ErrUnsortedOrDuplicateOutput = newRuleError("ErrUnsortedOrDuplicateOutput")

	// ErrMaturity indicates the body's minimum spendable height is above the
	// height of the block it is to be included in.
	ErrMaturity = newRuleError("ErrMaturity")

	// ErrInputMaturity indicates an input's maturity has not been reached at
	// the spend height.
	ErrInputMaturity = newRuleError("ErrInputMaturity")

	// ErrInvalidKernel indicates a kernel violates kernel rules, e.g. its lock
	// height is above the body's height.
	ErrInvalidKernel = newRuleError("ErrInvalidKernel")

	// ErrNoCoinbase indicates a block body has no coinbase output or no
	// coinbase kernel.
	ErrNoCoinbase = newRuleError("ErrNoCoinbase")

	// ErrMoreThanOneCoinbase indicates a block body has more than one coinbase
	// output or more than one coinbase kernel.
	ErrMoreThanOneCoinbase = newRuleError("ErrMoreThanOneCoinbase")

	// ErrInvalidCoinbaseMaturity indicates the coinbase output's maturity is
	// below the consensus minimum for the block height.
	ErrInvalidCoinbaseMaturity = newRuleError("ErrInvalidCoinbaseMaturity")

	// ErrInvalidCoinbase indicates the coinbase output commitment does not
	// balance against the coinbase kernel excess and the block reward.
	ErrInvalidCoinbase = newRuleError("ErrInvalidCoinbase")

	// ErrErroneousCoinbaseOutput indicates a coinbase output appears in a body
	// that is not allowed to carry one.
	ErrErroneousCoinbaseOutput = newRuleError("ErrErroneousCoinbaseOutput")

	// ErrMaxTransactionWeightExceeded indicates the body weight is above the
	// consensus maximum.
	ErrMaxTransactionWeightExceeded = newRuleError("ErrMaxTransactionWeightExceeded")

	// ErrNonCoinbaseHasCoinbaseExtra indicates a non-coinbase output carries
	// coinbase extra metadata.
	ErrNonCoinbaseHasCoinbaseExtra = newRuleError("ErrNonCoinbaseHasCoinbaseExtra")

	// ErrInvalidValidatorNodeSignature indicates a validator node registration
	// signature failed verification.
	ErrInvalidValidatorNodeSignature = newRuleError("ErrInvalidValidatorNodeSignature")

	// ErrKernelSumMismatch indicates the sum of inputs and outputs did not
	// equal the sum of kernels with fees.
	ErrKernelSumMismatch = newRuleError("ErrKernelSumMismatch")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a body failed due to one of the many validation rules.
// The caller can use type assertions to determine if a failure was
// specifically due to a rule violation, as opposed to a backend I/O error.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// ErrUnknownInputs indicates one or more inputs reference outputs that are
// neither in the unspent set nor among the outputs of the same body. The
// check is batched: all unknown inputs are collected before failing.
type ErrUnknownInputs struct {
	InputHashes []*externalapi.DomainHash
}

func (e ErrUnknownInputs) Error() string {
	return fmt.Sprintf("body contains unknown inputs with hashes: %v", e.InputHashes)
}

// NewErrUnknownInputs creates a new ErrUnknownInputs error wrapped in a RuleError
func NewErrUnknownInputs(inputHashes []*externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrUnknownInputs",
		inner:   ErrUnknownInputs{inputHashes},
	})
}

// ErrConsensus indicates a consensus-parameter violation, e.g. a version or
// opcode outside the range allowed at the body's height.
type ErrConsensus struct {
	Message string
}

func (e ErrConsensus) Error() string {
	return e.Message
}

// NewErrConsensus creates a new ErrConsensus error wrapped in a RuleError
func NewErrConsensus(message string) error {
	return errors.WithStack(RuleError{
		message: "ErrConsensus",
		inner:   ErrConsensus{message},
	})
}

// ErrDuplicateKernel indicates a kernel excess signature already exists in
// the chain. This is the kernel-level replay defense.
type ErrDuplicateKernel struct {
	Message string
}

func (e ErrDuplicateKernel) Error() string {
	return e.Message
}

// NewErrDuplicateKernel creates a new ErrDuplicateKernel error wrapped in a RuleError
func NewErrDuplicateKernel(message string) error {
	return errors.WithStack(RuleError{
		message: "ErrDuplicateKernel",
		inner:   ErrDuplicateKernel{message},
	})
}

// ErrInvalidBurn indicates burned outputs and burned kernels do not match
// one-to-one. The message states which side is missing.
type ErrInvalidBurn struct {
	Message string
}

func (e ErrInvalidBurn) Error() string {
	return e.Message
}

// NewErrInvalidBurn creates a new ErrInvalidBurn error wrapped in a RuleError
func NewErrInvalidBurn(message string) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidBurn",
		inner:   ErrInvalidBurn{message},
	})
}

// ErrInvalidSignature indicates a kernel or metadata signature failed
// verification.
type ErrInvalidSignature struct {
	Message string
}

func (e ErrInvalidSignature) Error() string {
	return e.Message
}

// NewErrInvalidSignature creates a new ErrInvalidSignature error wrapped in a RuleError
func NewErrInvalidSignature(message string) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidSignature",
		inner:   ErrInvalidSignature{message},
	})
}

// ErrOutputTypeNotPermitted indicates an output's type is not in the
// permitted set for the body's height.
type ErrOutputTypeNotPermitted struct {
	OutputType externalapi.OutputType
}

func (e ErrOutputTypeNotPermitted) Error() string {
	return fmt.Sprintf("output type %s is not permitted at this height", e.OutputType)
}

// NewErrOutputTypeNotPermitted creates a new ErrOutputTypeNotPermitted error wrapped in a RuleError
func NewErrOutputTypeNotPermitted(outputType externalapi.OutputType) error {
	return errors.WithStack(RuleError{
		message: "ErrOutputTypeNotPermitted",
		inner:   ErrOutputTypeNotPermitted{outputType},
	})
}

// ErrTariScriptExceedsMaxSize indicates an output script serializes to more
// bytes than consensus allows.
type ErrTariScriptExceedsMaxSize struct {
	MaxScriptSize    int
	ActualScriptSize int
}

func (e ErrTariScriptExceedsMaxSize) Error() string {
	return fmt.Sprintf("tari script size in bytes is %d but the maximum size is %d",
		e.ActualScriptSize, e.MaxScriptSize)
}

// NewErrTariScriptExceedsMaxSize creates a new ErrTariScriptExceedsMaxSize error wrapped in a RuleError
func NewErrTariScriptExceedsMaxSize(maxScriptSize, actualScriptSize int) error {
	return errors.WithStack(RuleError{
		message: "ErrTariScriptExceedsMaxSize",
		inner:   ErrTariScriptExceedsMaxSize{maxScriptSize, actualScriptSize},
	})
}

// ErrCoinbaseExtraExceedsMaxSize indicates a coinbase output's extra metadata
// is larger than consensus allows.
type ErrCoinbaseExtraExceedsMaxSize struct {
	MaxExtraSize    int
	ActualExtraSize int
}

func (e ErrCoinbaseExtraExceedsMaxSize) Error() string {
	return fmt.Sprintf("coinbase extra size in bytes is %d but the maximum size is %d",
		e.ActualExtraSize, e.MaxExtraSize)
}

// NewErrCoinbaseExtraExceedsMaxSize creates a new ErrCoinbaseExtraExceedsMaxSize error wrapped in a RuleError
func NewErrCoinbaseExtraExceedsMaxSize(maxExtraSize, actualExtraSize int) error {
	return errors.WithStack(RuleError{
		message: "ErrCoinbaseExtraExceedsMaxSize",
		inner:   ErrCoinbaseExtraExceedsMaxSize{maxExtraSize, actualExtraSize},
	})
}

// ErrValidatorNodeRegistrationMinDepositAmount indicates a validator node
// registration output promises less than the consensus minimum deposit.
type ErrValidatorNodeRegistrationMinDepositAmount struct {
	MinDepositAmount uint64
	Actual           uint64
}

func (e ErrValidatorNodeRegistrationMinDepositAmount) Error() string {
	return fmt.Sprintf("validator node registration minimum deposit amount is %d but the actual amount is %d",
		e.MinDepositAmount, e.Actual)
}

// NewErrValidatorNodeRegistrationMinDepositAmount creates a new
// ErrValidatorNodeRegistrationMinDepositAmount error wrapped in a RuleError
func NewErrValidatorNodeRegistrationMinDepositAmount(minDepositAmount, actual uint64) error {
	return errors.WithStack(RuleError{
		message: "ErrValidatorNodeRegistrationMinDepositAmount",
		inner:   ErrValidatorNodeRegistrationMinDepositAmount{minDepositAmount, actual},
	})
}

// ErrValidatorNodeRegistrationMinLockHeight indicates a validator node
// registration output matures earlier than the consensus minimum lock height.
type ErrValidatorNodeRegistrationMinLockHeight struct {
	MinLockHeight uint64
	Actual        uint64
}

func (e ErrValidatorNodeRegistrationMinLockHeight) Error() string {
	return fmt.Sprintf("validator node registration minimum lock height is %d but the actual maturity is %d",
		e.MinLockHeight, e.Actual)
}

// NewErrValidatorNodeRegistrationMinLockHeight creates a new
// ErrValidatorNodeRegistrationMinLockHeight error wrapped in a RuleError
func NewErrValidatorNodeRegistrationMinLockHeight(minLockHeight, actual uint64) error {
	return errors.WithStack(RuleError{
		message: "ErrValidatorNodeRegistrationMinLockHeight",
		inner:   ErrValidatorNodeRegistrationMinLockHeight{minLockHeight, actual},
	})
}
