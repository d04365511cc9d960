package pagestore_test

import (
	"testing"

	"github.com/sonalite/rv32jit/pagestore"
)

func TestNew_AllPagesAvailable(t *testing.T) {
	s := pagestore.New(10)
	if got := s.Available(); got != 10 {
		t.Fatalf("Available() = %d, want 10", got)
	}
}

func TestNew_PanicsAboveMaxPages(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New(MaxPages+1) did not panic")
		}
	}()
	pagestore.New(pagestore.MaxPages + 1)
}

func TestAcquireRelease_LIFO(t *testing.T) {
	s := pagestore.New(3)

	a, ok := s.Acquire()
	if !ok || a != 2 {
		t.Fatalf("first Acquire() = %d, %v, want 2, true", a, ok)
	}
	b, ok := s.Acquire()
	if !ok || b != 1 {
		t.Fatalf("second Acquire() = %d, %v, want 1, true", b, ok)
	}

	s.Release(a)
	c, ok := s.Acquire()
	if !ok || c != a {
		t.Fatalf("Acquire() after Release(a) = %d, %v, want %d, true (LIFO reuse)", c, ok, a)
	}
}

func TestAcquire_ExhaustedPoolReturnsFalse(t *testing.T) {
	s := pagestore.New(1)
	if _, ok := s.Acquire(); !ok {
		t.Fatal("first Acquire() should succeed")
	}
	if _, ok := s.Acquire(); ok {
		t.Fatal("Acquire() on exhausted pool should return false")
	}
}

func TestRelease_ZeroesPage(t *testing.T) {
	s := pagestore.New(1)
	idx, _ := s.Acquire()

	page := s.PageBytes(idx)
	for i := range page {
		page[i] = 0xAB
	}

	s.Release(idx)
	reacquired, _ := s.Acquire()
	page = s.PageBytes(reacquired)
	for i, b := range page {
		if b != 0 {
			t.Fatalf("page byte %d = 0x%02x after release/reacquire, want 0", i, b)
		}
	}
}

func TestClose_PanicsWhileAttached(t *testing.T) {
	s := pagestore.New(1)
	s.Attach()

	defer func() {
		if recover() == nil {
			t.Fatal("Close() while attached did not panic")
		}
	}()
	s.Close()
}

func TestClose_SucceedsAfterDetach(t *testing.T) {
	s := pagestore.New(1)
	s.Attach()
	s.Detach()
	s.Close() // must not panic
}
