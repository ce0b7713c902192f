package tariscript

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
)

// multiSigMessageLength is the length of the message operand trailing the
// key list of the multi-signature opcodes.
const multiSigMessageLength = 32

// Instruction is a single parsed script operation: the opcode and its raw
// operand bytes, empty for opcodes without operands.
type Instruction struct {
	Opcode  byte
	Operand []byte
}

// Version returns the version of the instruction's opcode.
func (instruction *Instruction) Version() OpcodeVersion {
	return OpcodeVersionV0
}

// String returns the instruction in a form suitable for logs.
func (instruction *Instruction) String() string {
	name := OpcodeName(instruction.Opcode)
	if name == "" {
		name = fmt.Sprintf("0x%02x", instruction.Opcode)
	}
	if len(instruction.Operand) == 0 {
		return name
	}
	return fmt.Sprintf("%s(%x)", name, instruction.Operand)
}

// Parse decodes a script into its instructions. It fails on unknown opcodes,
// truncated operands, and multi-signature instructions with impossible
// threshold arguments, so a script that parses is structurally well-formed.
func Parse(script []byte) ([]Instruction, error) {
	instructions := make([]Instruction, 0, len(script))
	for offset := 0; offset < len(script); {
		opcode := script[offset]
		info, ok := opcodeTable[opcode]
		if !ok {
			return nil, errors.Errorf("invalid opcode 0x%02x at offset %d", opcode, offset)
		}
		offset++

		operandLength := info.operandLength
		if operandLength == operandLengthMultiSig {
			length, err := multiSigOperandLength(script[offset:], info.name, offset)
			if err != nil {
				return nil, err
			}
			operandLength = length
		}
		if len(script)-offset < operandLength {
			return nil, errors.Errorf("truncated operand for opcode %s at offset %d: "+
				"want %d bytes, have %d", info.name, offset, operandLength, len(script)-offset)
		}

		instructions = append(instructions, Instruction{
			Opcode:  opcode,
			Operand: script[offset : offset+operandLength],
		})
		offset += operandLength
	}
	return instructions, nil
}

// multiSigOperandLength computes the operand length of a multi-signature
// instruction from its threshold header: m, n, n public keys, and a message.
func multiSigOperandLength(operand []byte, opcodeName string, offset int) (int, error) {
	if len(operand) < 2 {
		return 0, errors.Errorf("truncated operand for opcode %s at offset %d: "+
			"missing threshold arguments", opcodeName, offset)
	}
	m := int(operand[0])
	n := int(operand[1])
	if m == 0 || n == 0 || m > n || n > maxMultiSigKeys {
		return 0, errors.Errorf("invalid threshold arguments %d-of-%d for opcode %s "+
			"at offset %d", m, n, opcodeName, offset)
	}
	return 2 + n*externalapi.DomainPublicKeySize + multiSigMessageLength, nil
}

// Validate parses the script and discards the instructions. It is the check
// run on every script that enters the system.
func Validate(script []byte) error {
	_, err := Parse(script)
	return err
}
