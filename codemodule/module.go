// Package codemodule owns the W^X-protected native code buffer a compiled
// RISC-V program is translated into, and its attach/detach lifecycle.
package codemodule

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/sonalite/rv32jit/compiler"
	"github.com/sonalite/rv32jit/instruction"
)

// codeSizeMultiplier bounds how much larger the native ARM64 translation
// can be than the RISC-V source it came from, to size the code buffer.
// Register spilling, immediate-loading sequences and syscall thunks all
// expand the instruction count per source instruction.
const codeSizeMultiplier = 4

// Error is a sentinel reason a Module operation was refused.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrInstancesAttached is returned by SetCode when instances are still
	// attached to the module being recompiled.
	ErrInstancesAttached Error = "module: cannot set code while instances are attached"
	// ErrCodeTooLarge is returned by SetCode when codeSizeMultiplier times
	// the RISC-V source length exceeds the module's buffer.
	ErrCodeTooLarge Error = "module: compiled code exceeds buffer capacity"
	// ErrAllocationFailed is returned when mmap or mprotect fails.
	ErrAllocationFailed Error = "module: native code allocation failed"
)

// Module owns a single executable code buffer compiled from one RISC-V
// program. A Module must outlive every Instance attached to it; Close
// panics if any are still attached.
type Module struct {
	translator compiler.Translator

	codeBuffer []byte // mmap'd, currently either RW or RX
	codeSize   int    // bytes of codeBuffer actually holding compiled code

	instanceCount int
	memoryPtr     *unsafe.Pointer // stable slot native code loads the active instance's *memory.Memory from
}

// New allocates a Module whose native code buffer can hold a translation of
// up to maxRiscvCodeSize bytes of RISC-V source, using t to compile code
// passed to SetCode.
func New(maxRiscvCodeSize int, t compiler.Translator) (*Module, error) {
	bufSize := maxRiscvCodeSize * codeSizeMultiplier
	buf, err := mmapCodeBuffer(bufSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}

	slot := new(unsafe.Pointer)
	return &Module{
		translator: t,
		codeBuffer: buf,
		memoryPtr:  slot,
	}, nil
}

// SetCode decodes riscvCode as a stream of 4-byte little-endian RV32IM
// words, translates it with the module's Translator, and makes the result
// executable. It fails if any Instance is currently attached, or if
// codeSizeMultiplier times len(riscvCode) exceeds the buffer; that check is
// made before translation, whatever size the translator would emit.
func (m *Module) SetCode(riscvCode []byte) error {
	if m.instanceCount != 0 {
		return ErrInstancesAttached
	}

	required := len(riscvCode) * codeSizeMultiplier
	if required > len(m.codeBuffer) {
		return ErrCodeTooLarge
	}

	instructions := make([]instruction.Instruction, 0, len(riscvCode)/4)
	for i := 0; i+4 <= len(riscvCode); i += 4 {
		word := uint32(riscvCode[i]) | uint32(riscvCode[i+1])<<8 |
			uint32(riscvCode[i+2])<<16 | uint32(riscvCode[i+3])<<24
		instructions = append(instructions, instruction.Decode(word))
	}

	if err := unix.Mprotect(m.codeBuffer, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}

	m.codeSize = m.translator.Compile(instructions, m.codeBuffer)

	if err := unix.Mprotect(m.codeBuffer, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	return nil
}

// Code returns the compiled native code currently in the buffer. It is
// empty until SetCode has succeeded at least once.
func (m *Module) Code() []byte {
	if m.codeSize == 0 {
		return nil
	}
	return m.codeBuffer[:m.codeSize]
}

// Attach increments the attached-instance count and points the module's
// stable memory slot at mem, so compiled native code can dereference it
// without calling back into the host. Instance.Attach is the intended
// caller; it is exported only so the instance package can reach it.
func (m *Module) Attach(mem unsafe.Pointer) {
	m.instanceCount++
	*m.memoryPtr = mem
}

// Detach decrements the attached-instance count and clears the memory slot.
// Instance.Detach is the intended caller.
func (m *Module) Detach() {
	m.instanceCount--
	*m.memoryPtr = nil
}

// MemorySlot exposes the stable pointer-to-pointer native code reads the
// active instance's memory through. Its address stays the same for the
// lifetime of the Module; Attach and Detach only change what it holds.
func (m *Module) MemorySlot() *unsafe.Pointer {
	return m.memoryPtr
}

// InstanceCount reports how many instances are currently attached.
func (m *Module) InstanceCount() int {
	return m.instanceCount
}

// Close releases the module's native code buffer.
//
// Panics if any Instance is still attached, the same way the teacher's
// other lifecycle-bound resources refuse to be torn down out from under a
// live user.
func (m *Module) Close() error {
	if m.instanceCount != 0 {
		panic(fmt.Sprintf("codemodule: closed with %d attached instance(s)", m.instanceCount))
	}
	if m.codeBuffer == nil {
		return nil
	}
	err := unix.Munmap(m.codeBuffer)
	m.codeBuffer = nil
	return err
}
