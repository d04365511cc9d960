// Package compiler translates decoded RV32IM instructions into native
// ARM64 machine code.
package compiler

import "github.com/sonalite/rv32jit/instruction"

// Translator compiles a sequence of decoded instructions into the native
// code buf, returning the number of bytes written. It writes nothing and
// returns 0 if buf is too small for the compiled output.
type Translator interface {
	Compile(instructions []instruction.Instruction, buf []byte) int
}

// retInstruction is the ARM64 encoding for RET (return to link register):
// 1101011_0010_11111_000000_11110_00000.
const retInstruction uint32 = 0xD65F03C0

// StubTranslator is a placeholder Translator that ignores instruction
// semantics and emits a single RET, so a Module can be exercised end to end
// before real code generation exists for any RV32IM opcode.
type StubTranslator struct{}

// Compile implements Translator by emitting RET regardless of input.
func (StubTranslator) Compile(_ []instruction.Instruction, buf []byte) int {
	if len(buf) < 4 {
		return 0
	}
	ret := retInstruction
	buf[0] = byte(ret)
	buf[1] = byte(ret >> 8)
	buf[2] = byte(ret >> 16)
	buf[3] = byte(ret >> 24)
	return 4
}
