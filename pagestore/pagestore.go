// Package pagestore implements the shared pool of fixed-size pages that
// Memory instances (see the memory package) allocate from and return to.
//
// A single PageStore is meant to be shared across every Instance attached to
// a runtime: pages are handed out lazily as guest code touches new
// addresses, and returned to the pool when a Memory resets or is torn down.
package pagestore

import "fmt"

// PageSize is the size in bytes of a single page (16KB).
const PageSize = 1 << 14

// MaxPages is the largest pool a PageStore can hold. It is bounded by the
// sentinel value 0xFFFF the memory package uses to mark an unmapped L2
// entry: a pool of exactly 65536 pages would make page index 0xFFFF a real
// page, indistinguishable from "unmapped".
const MaxPages = 65535

// PageStore is a pool of PageSize byte pages shared by one or more Memory
// instances. It owns the backing storage; Memory only ever holds page
// indices into it.
//
// A PageStore must outlive every Memory created against it. Close panics if
// any Memory is still attached, the same way the teacher's subsystems panic
// on a lifecycle violation that a caller should have prevented.
type PageStore struct {
	pages     []byte
	available []uint16 // LIFO free list; available[:len] are free page indices
	attached  int       // number of Memory instances currently using this store
}

// New creates a pool of totalPages pages, all initially free.
//
// Panics if totalPages exceeds MaxPages.
func New(totalPages int) *PageStore {
	if totalPages > MaxPages {
		panic(fmt.Sprintf("pagestore: totalPages %d exceeds maximum allowed (%d)", totalPages, MaxPages))
	}

	available := make([]uint16, totalPages)
	for i := range available {
		available[i] = uint16(i)
	}

	return &PageStore{
		pages:     make([]byte, totalPages*PageSize),
		available: available,
	}
}

// Available reports how many pages remain unallocated in the pool.
func (s *PageStore) Available() int {
	return len(s.available)
}

// Attach increments the store's attached-instance count. Called by
// memory.New when a Memory starts using this store.
func (s *PageStore) Attach() {
	s.attached++
}

// Detach decrements the store's attached-instance count. Called when a
// Memory using this store is torn down.
func (s *PageStore) Detach() {
	s.attached--
}

// Acquire removes and returns one page index from the free list. The
// second return value is false if the pool is exhausted.
func (s *PageStore) Acquire() (uint16, bool) {
	n := len(s.available)
	if n == 0 {
		return 0, false
	}
	idx := s.available[n-1]
	s.available = s.available[:n-1]
	return idx, true
}

// Release returns a page index to the free list and zeroes its backing
// bytes, so the page reads as fresh when reallocated.
func (s *PageStore) Release(idx uint16) {
	offset := int(idx) * PageSize
	clear(s.pages[offset : offset+PageSize])
	s.available = append(s.available, idx)
}

// PageBytes returns the backing slice for page idx. Callers must not retain
// the slice past the page's next Release, since Release zeroes it in place.
func (s *PageStore) PageBytes(idx uint16) []byte {
	offset := int(idx) * PageSize
	return s.pages[offset : offset+PageSize]
}

// Close releases the pool's backing storage.
//
// Panics if any Memory is still attached, mirroring the teacher's lifecycle
// guards elsewhere: a PageStore going away out from under a live Memory is a
// caller bug, not a recoverable error.
func (s *PageStore) Close() {
	if s.attached > 0 {
		panic(fmt.Sprintf("pagestore: closed while %d instance(s) still attached", s.attached))
	}
	s.pages = nil
	s.available = nil
}
