package compiler_test

import (
	"testing"

	"github.com/sonalite/rv32jit/compiler"
	"github.com/sonalite/rv32jit/instruction"
)

func TestStubTranslator_EmitsRet(t *testing.T) {
	var c compiler.StubTranslator
	buf := make([]byte, 16)

	n := c.Compile([]instruction.Instruction{instruction.Decode(0x003100B3)}, buf)
	if n != 4 {
		t.Fatalf("Compile() wrote %d bytes, want 4", n)
	}
	want := []byte{0xC0, 0x03, 0x5F, 0xD6}
	for i, b := range want {
		if buf[i] != b {
			t.Fatalf("Compile() byte %d = 0x%02x, want 0x%02x", i, buf[i], b)
		}
	}
}

func TestStubTranslator_BufferTooSmall(t *testing.T) {
	var c compiler.StubTranslator
	buf := make([]byte, 2)

	n := c.Compile(nil, buf)
	if n != 0 {
		t.Fatalf("Compile() with undersized buffer wrote %d bytes, want 0", n)
	}
}

func TestStubTranslator_IgnoresInputInstructions(t *testing.T) {
	var c compiler.StubTranslator
	bufA := make([]byte, 4)
	bufB := make([]byte, 4)

	c.Compile([]instruction.Instruction{instruction.Decode(0x003100B3)}, bufA)
	c.Compile([]instruction.Instruction{instruction.Decode(0xFE628CE3)}, bufB)

	for i := range bufA {
		if bufA[i] != bufB[i] {
			t.Fatalf("Compile() output differs by input instruction at byte %d: 0x%02x vs 0x%02x", i, bufA[i], bufB[i])
		}
	}
}
