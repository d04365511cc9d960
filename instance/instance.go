// Package instance ties a guest Memory to a compiled codemodule.Module and
// invokes translated native code on its behalf.
package instance

import (
	"unsafe"

	"github.com/sonalite/rv32jit/codemodule"
	"github.com/sonalite/rv32jit/memory"
)

// Error is a sentinel reason a call on an Instance was refused.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrNotAttached is returned by CallFunction when the instance has not
	// been attached to a module.
	ErrNotAttached Error = "instance: not attached to module"
	// ErrNoCompiledCode is returned by CallFunction when the attached
	// module has no compiled native code yet.
	ErrNoCompiledCode Error = "instance: module has no compiled code"
)

// Instance is one running guest: its own page-table memory, optionally
// attached to a Module whose compiled native code it can invoke.
//
// Attaching an already-attached Instance to a different module detaches it
// from the old one first rather than erroring; callers that need exclusive
// single-attach semantics should check Attached themselves.
type Instance struct {
	mem    *memory.Memory
	module *codemodule.Module
}

// New creates an Instance over mem, initially detached.
func New(mem *memory.Memory) *Instance {
	return &Instance{mem: mem}
}

// Attach connects this instance to module, pointing the module's native
// code at this instance's memory. If the instance was already attached
// elsewhere, it is detached first.
func (i *Instance) Attach(module *codemodule.Module) {
	if i.module != nil {
		i.Detach()
	}
	i.module = module
	module.Attach(unsafe.Pointer(i.mem))
}

// Detach disconnects this instance from its module, if any. Detaching an
// already-detached instance is a no-op.
func (i *Instance) Detach() {
	if i.module == nil {
		return
	}
	i.module.Detach()
	i.module = nil
}

// Attached reports whether the instance currently has a module attached.
func (i *Instance) Attached() bool {
	return i.module != nil
}

// Memory returns this instance's page-table memory.
func (i *Instance) Memory() *memory.Memory {
	return i.mem
}

// CallFunction invokes the attached module's compiled native code as a
// zero-argument function. The call goes through a Go func value, so it uses
// Go's own calling convention; there is no transition to the C ABI.
//
// The function index is currently unused: the stub translator emits a
// single entry point regardless of how many RISC-V instructions it saw, so
// there is only ever one function to call. A real translator would use
// functionIndex to pick among multiple compiled entry points.
func (i *Instance) CallFunction(functionIndex int) error {
	_ = functionIndex

	if i.module == nil {
		return ErrNotAttached
	}
	code := i.module.Code()
	if len(code) == 0 {
		return ErrNoCompiledCode
	}

	entry := &funcval{addr: uintptr(unsafe.Pointer(&code[0]))}
	fn := *(*func())(unsafe.Pointer(&entry))
	fn()
	return nil
}

// funcval mirrors the runtime's internal representation of a func value: a
// pointer to a struct whose first word is the code entry point. Pointing a
// func variable at one of these lets Go call into a raw native code buffer
// as if it were an ordinary zero-argument function.
type funcval struct {
	addr uintptr
}

// Close detaches the instance (if attached) and releases its memory's
// pages back to the pool.
func (i *Instance) Close() {
	i.Detach()
	i.mem.Close()
}
