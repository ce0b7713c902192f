// Package tariscript implements parsing of the output script language.
// Scripts are parsed wherever a body enters the system, so a script with an
// unknown opcode or a truncated operand can never reach validation or
// storage. Execution of parsed scripts is a separate concern and not
// implemented here.
package tariscript

// Script opcodes. The byte values are consensus-critical.
const (
	// Flow control
	OpReturn byte = 0x60
	OpIfThen byte = 0x61
	OpElse   byte = 0x62
	OpEndIf  byte = 0x63

	// Boolean logic, each carrying a single count operand
	OpOrVerify byte = 0x64
	OpOr       byte = 0x65

	// Block height checks, the first two carrying a height operand
	OpCheckHeightVerify   byte = 0x66
	OpCheckHeight         byte = 0x67
	OpCompareHeightVerify byte = 0x68
	OpCompareHeight       byte = 0x69

	// Stack manipulation
	OpDrop   byte = 0x70
	OpDup    byte = 0x71
	OpRevRot byte = 0x72
	OpNop    byte = 0x73

	// Pushing operands onto the stack
	OpPushHash   byte = 0x7a
	OpPushZero   byte = 0x7b
	OpPushOne    byte = 0x7c
	OpPushInt    byte = 0x7d
	OpPushPubKey byte = 0x7e

	// Comparisons
	OpEqual       byte = 0x80
	OpEqualVerify byte = 0x81
	OpGeZero      byte = 0x82
	OpGtZero      byte = 0x83
	OpLeZero      byte = 0x84
	OpLtZero      byte = 0x85

	// Arithmetic
	OpAdd byte = 0x93
	OpSub byte = 0x94

	// Signature checks, each carrying a 32-byte message operand
	OpCheckSig            byte = 0xac
	OpCheckSigVerify      byte = 0xad
	OpCheckMultiSig       byte = 0xae
	OpCheckMultiSigVerify byte = 0xaf

	// Cryptographic operations
	OpHashBlake256                       byte = 0xb0
	OpHashSha256                         byte = 0xb1
	OpHashSha3                           byte = 0xb2
	OpToCurvePoint                       byte = 0xb3
	OpCheckMultiSigVerifyAggregatePubKey byte = 0xb4
)

// OpcodeVersion is the version an opcode was introduced in. Consensus
// constants restrict which opcode versions are allowed at a given height.
type OpcodeVersion byte

// OpcodeVersionV0 is the version of every opcode in the table above.
const OpcodeVersionV0 OpcodeVersion = 0

// maxMultiSigKeys bounds the n operand of the multi-signature opcodes.
const maxMultiSigKeys = 32

// Sentinel operand lengths for opcodes whose operand size is not fixed.
const (
	operandLengthMultiSig = -1
)

type opcodeInfo struct {
	name string

	// operandLength is the number of operand bytes following the opcode, or
	// operandLengthMultiSig for the multi-signature opcodes, whose operand
	// length depends on their key count.
	operandLength int
}

var opcodeTable = map[byte]opcodeInfo{
	OpReturn: {name: "Return"},
	OpIfThen: {name: "IfThen"},
	OpElse:   {name: "Else"},
	OpEndIf:  {name: "EndIf"},

	OpOrVerify: {name: "OrVerify", operandLength: 1},
	OpOr:       {name: "Or", operandLength: 1},

	OpCheckHeightVerify:   {name: "CheckHeightVerify", operandLength: 8},
	OpCheckHeight:         {name: "CheckHeight", operandLength: 8},
	OpCompareHeightVerify: {name: "CompareHeightVerify"},
	OpCompareHeight:       {name: "CompareHeight"},

	OpDrop:   {name: "Drop"},
	OpDup:    {name: "Dup"},
	OpRevRot: {name: "RevRot"},
	OpNop:    {name: "Nop"},

	OpPushHash:   {name: "PushHash", operandLength: 32},
	OpPushZero:   {name: "PushZero"},
	OpPushOne:    {name: "PushOne"},
	OpPushInt:    {name: "PushInt", operandLength: 8},
	OpPushPubKey: {name: "PushPubKey", operandLength: 33},

	OpEqual:       {name: "Equal"},
	OpEqualVerify: {name: "EqualVerify"},
	OpGeZero:      {name: "GeZero"},
	OpGtZero:      {name: "GtZero"},
	OpLeZero:      {name: "LeZero"},
	OpLtZero:      {name: "LtZero"},

	OpAdd: {name: "Add"},
	OpSub: {name: "Sub"},

	OpCheckSig:            {name: "CheckSig", operandLength: 32},
	OpCheckSigVerify:      {name: "CheckSigVerify", operandLength: 32},
	OpCheckMultiSig:       {name: "CheckMultiSig", operandLength: operandLengthMultiSig},
	OpCheckMultiSigVerify: {name: "CheckMultiSigVerify", operandLength: operandLengthMultiSig},

	OpHashBlake256: {name: "HashBlake256"},
	OpHashSha256:   {name: "HashSha256"},
	OpHashSha3:     {name: "HashSha3"},
	OpToCurvePoint: {name: "ToCurvePoint"},
	OpCheckMultiSigVerifyAggregatePubKey: {
		name:          "CheckMultiSigVerifyAggregatePubKey",
		operandLength: operandLengthMultiSig,
	},
}

// OpcodeName returns the human-readable name of an opcode, or an empty string
// for bytes that are not opcodes.
func OpcodeName(opcode byte) string {
	return opcodeTable[opcode].name
}
