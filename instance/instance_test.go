package instance_test

import (
	"testing"

	"github.com/sonalite/rv32jit/codemodule"
	"github.com/sonalite/rv32jit/compiler"
	"github.com/sonalite/rv32jit/instance"
	"github.com/sonalite/rv32jit/memory"
	"github.com/sonalite/rv32jit/pagestore"
)

func newInstance(t *testing.T) (*instance.Instance, *pagestore.PageStore) {
	t.Helper()
	store := pagestore.New(4)
	mem := memory.New(store, 4, 4)
	return instance.New(mem), store
}

func TestCallFunction_NotAttached(t *testing.T) {
	inst, store := newInstance(t)
	t.Cleanup(func() { inst.Close(); store.Close() })

	if err := inst.CallFunction(0); err != instance.ErrNotAttached {
		t.Fatalf("CallFunction() error = %v, want ErrNotAttached", err)
	}
}

func TestCallFunction_NoCompiledCode(t *testing.T) {
	inst, store := newInstance(t)
	module, err := codemodule.New(64, compiler.StubTranslator{})
	if err != nil {
		t.Fatalf("codemodule.New() error = %v", err)
	}
	t.Cleanup(func() { inst.Close(); store.Close(); module.Close() })

	inst.Attach(module)
	if err := inst.CallFunction(0); err != instance.ErrNoCompiledCode {
		t.Fatalf("CallFunction() error = %v, want ErrNoCompiledCode", err)
	}
}

func TestCallFunction_InvokesCompiledRet(t *testing.T) {
	inst, store := newInstance(t)
	module, err := codemodule.New(64, compiler.StubTranslator{})
	if err != nil {
		t.Fatalf("codemodule.New() error = %v", err)
	}
	t.Cleanup(func() { inst.Close(); store.Close(); module.Close() })

	if err := module.SetCode([]byte{0xB3, 0x00, 0x31, 0x00}); err != nil {
		t.Fatalf("SetCode() error = %v", err)
	}
	inst.Attach(module)

	if err := inst.CallFunction(0); err != nil {
		t.Fatalf("CallFunction() error = %v", err)
	}
}

func TestAttach_Idempotent(t *testing.T) {
	inst, store := newInstance(t)
	module, err := codemodule.New(64, compiler.StubTranslator{})
	if err != nil {
		t.Fatalf("codemodule.New() error = %v", err)
	}
	t.Cleanup(func() { inst.Close(); store.Close(); module.Close() })

	inst.Attach(module)
	inst.Attach(module) // re-attaching to the same module is permitted
	if !inst.Attached() {
		t.Fatal("Attached() = false after double Attach()")
	}
	if module.InstanceCount() != 1 {
		t.Fatalf("InstanceCount() = %d, want 1 after double Attach() to the same module", module.InstanceCount())
	}
}

func TestDetach_ClearsAttachment(t *testing.T) {
	inst, store := newInstance(t)
	module, err := codemodule.New(64, compiler.StubTranslator{})
	if err != nil {
		t.Fatalf("codemodule.New() error = %v", err)
	}
	t.Cleanup(func() { inst.Close(); store.Close(); module.Close() })

	inst.Attach(module)
	inst.Detach()
	if inst.Attached() {
		t.Fatal("Attached() = true after Detach()")
	}
	if module.InstanceCount() != 0 {
		t.Fatalf("InstanceCount() = %d, want 0 after Detach()", module.InstanceCount())
	}
}
