package instruction_test

import (
	"testing"

	"github.com/sonalite/rv32jit/instruction"
)

func TestString(t *testing.T) {
	cases := []struct {
		name string
		inst instruction.Instruction
		want string
	}{
		{"add", instruction.Instruction{Kind: instruction.KindAdd, Rd: 1, Rs1: 2, Rs2: 3}, "add x1, x2, x3"},
		{"mul", instruction.Instruction{Kind: instruction.KindMul, Rd: 1, Rs1: 2, Rs2: 3}, "mul x1, x2, x3"},
		{"addi", instruction.Instruction{Kind: instruction.KindAddi, Rd: 1, Rs1: 2, Imm: -5}, "addi x1, x2, -5"},
		{"slli", instruction.Instruction{Kind: instruction.KindSlli, Rd: 1, Rs1: 2, Imm: 5}, "slli x1, x2, 5"},
		{"lw", instruction.Instruction{Kind: instruction.KindLw, Rd: 1, Rs1: 2, Imm: 4}, "lw x1, 4(x2)"},
		{"sw", instruction.Instruction{Kind: instruction.KindSw, Rs1: 2, Rs2: 3, Imm: 4}, "sw x3, 4(x2)"},
		{"beq", instruction.Instruction{Kind: instruction.KindBeq, Rs1: 5, Rs2: 6, Imm: -8}, "beq x5, x6, -8"},
		{"jal", instruction.Instruction{Kind: instruction.KindJal, Rd: 1, Imm: -8}, "jal x1, -8"},
		{"jalr", instruction.Instruction{Kind: instruction.KindJalr, Rd: 1, Rs1: 2, Imm: 4}, "jalr x1, 4(x2)"},
		{"lui", instruction.Instruction{Kind: instruction.KindLui, Rd: 1, Imm: 0x12345}, "lui x1, 0x12345"},
		{"auipc", instruction.Instruction{Kind: instruction.KindAuipc, Rd: 2, Imm: 1}, "auipc x2, 0x1"},
		{"ecall", instruction.Instruction{Kind: instruction.KindEcall}, "ecall"},
		{"ebreak", instruction.Instruction{Kind: instruction.KindEbreak}, "ebreak"},
		{"unsupported", instruction.Unsupported(0xDEADBEEF), "unsupported: 0xdeadbeef"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.inst.String(); got != c.want {
				t.Fatalf("String() = %q, want %q", got, c.want)
			}
		})
	}
}
