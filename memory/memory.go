// Package memory implements a sparse, two-level paged address space for a
// single guest instance, backed by a shared pagestore.PageStore.
//
// The 32-bit address space is split as:
//
//	bits 31-22 (10 bits): L1 index, selects an L2 table
//	bits 21-14 ( 8 bits): L2 index, selects a page within that L2 table
//	bits 13-0  (14 bits): offset within the page
//
// Each L2 table covers 4MB (256 pages x 16KB); up to 255 L2 tables can be
// allocated per Memory, giving just under 1GB of addressable space. Pages
// are allocated lazily as Write touches new addresses, never eagerly.
package memory

import (
	"fmt"

	"github.com/sonalite/rv32jit/pagestore"
)

const (
	l1IndexBits  = 10
	l2IndexBits  = 8
	l2IndexShift = 14 // same as the page offset width
	l1IndexShift = l2IndexShift + l2IndexBits

	l1TableSize = 1 << l1IndexBits
	l2TableSize = 1 << l2IndexBits

	l1IndexMask    = l1TableSize - 1
	l2IndexMask    = l2TableSize - 1
	pageOffsetMask = pagestore.PageSize - 1
)

// MaxL2Tables is the largest number of L2 tables a Memory can hold. Bounded
// by unmappedL2Table (0xFF): with 256 tables, index 255 would be
// indistinguishable from "unmapped".
const MaxL2Tables = 255

const (
	unmappedL2Table = 0xFF
	unmappedPage    = 0xFFFF
)

// Status codes returned by AllocatePage and Write. These are plain integers
// rather than error values so that compiled guest code can branch on them
// directly.
const (
	StatusSuccess             = 0
	StatusErrNoL2Tables       = 1
	StatusErrPageLimit        = 2
	StatusErrNoPagesAvailable = 3
)

// Memory is one guest instance's view of its address space. It must not be
// shared between goroutines, and must not outlive the PageStore it was
// created from.
type Memory struct {
	store *pagestore.PageStore

	l1Table  [l1TableSize]uint8 // L1 index -> L2 table index, or unmappedL2Table
	l2Tables []uint16           // maxL2Tables * l2TableSize entries, preallocated and contiguous

	allocated   []uint16 // page indices allocated to this instance, in allocation order
	maxPages    int
	maxL2Tables int
	numL2Tables int
}

// New creates a Memory drawing pages from store, able to hold up to maxPages
// pages across up to maxL2Tables L2 tables.
//
// Panics if maxPages exceeds pagestore.MaxPages or store's current
// available page count, or if maxL2Tables exceeds MaxL2Tables.
func New(store *pagestore.PageStore, maxPages, maxL2Tables int) *Memory {
	if maxPages > pagestore.MaxPages {
		panic(fmt.Sprintf("memory: maxPages %d exceeds maximum allowed (%d)", maxPages, pagestore.MaxPages))
	}
	if maxPages > store.Available() {
		panic(fmt.Sprintf("memory: maxPages %d exceeds available pages in store (%d)", maxPages, store.Available()))
	}
	if maxL2Tables > MaxL2Tables {
		panic(fmt.Sprintf("memory: maxL2Tables %d exceeds maximum allowed (%d)", maxL2Tables, MaxL2Tables))
	}

	store.Attach()

	m := &Memory{
		store:       store,
		l2Tables:    make([]uint16, maxL2Tables*l2TableSize),
		allocated:   make([]uint16, 0, maxPages),
		maxPages:    maxPages,
		maxL2Tables: maxL2Tables,
	}
	for i := range m.l1Table {
		m.l1Table[i] = unmappedL2Table
	}
	for i := range m.l2Tables {
		m.l2Tables[i] = unmappedPage
	}
	return m
}

func splitAddress(address uint32) (l1Idx, l2Idx, offset uint32) {
	l1Idx = (address >> l1IndexShift) & l1IndexMask
	l2Idx = (address >> l2IndexShift) & l2IndexMask
	offset = address & pageOffsetMask
	return
}

// AllocatePage ensures a page backs the region containing address,
// allocating an L2 table and/or a page from the PageStore as needed.
// Allocating an already-mapped page is a no-op that returns StatusSuccess.
func (m *Memory) AllocatePage(address uint32) int {
	l1Idx, l2Idx, _ := splitAddress(address)

	l2TableIdx := m.l1Table[l1Idx]
	if l2TableIdx == unmappedL2Table {
		if m.numL2Tables >= m.maxL2Tables {
			return StatusErrNoL2Tables
		}
		l2TableIdx = uint8(m.numL2Tables)
		m.l1Table[l1Idx] = l2TableIdx
		m.numL2Tables++
	}

	entryOffset := int(l2TableIdx)*l2TableSize + int(l2Idx)
	if m.l2Tables[entryOffset] != unmappedPage {
		return StatusSuccess
	}

	if len(m.allocated) >= m.maxPages {
		return StatusErrPageLimit
	}

	pageIdx, ok := m.store.Acquire()
	if !ok {
		return StatusErrNoPagesAvailable
	}

	m.allocated = append(m.allocated, pageIdx)
	m.l2Tables[entryOffset] = pageIdx
	return StatusSuccess
}

func (m *Memory) lookupPage(l1Idx, l2Idx uint32) (uint16, bool) {
	l2TableIdx := m.l1Table[l1Idx]
	if l2TableIdx == unmappedL2Table {
		return 0, false
	}
	entryOffset := int(l2TableIdx)*l2TableSize + int(l2Idx)
	pageIdx := m.l2Tables[entryOffset]
	if pageIdx == unmappedPage {
		return 0, false
	}
	return pageIdx, true
}

// Read fills buf with len(buf) bytes starting at address. Bytes in
// unallocated pages read as zero. Addresses wrap modulo 2^32: a read that
// runs past 0xFFFFFFFF continues from 0x00000000.
func (m *Memory) Read(address uint32, buf []byte) {
	addr := address
	offset := 0
	total := len(buf)

	for offset < total {
		l1Idx, l2Idx, pageOffset := splitAddress(addr)
		chunk := min(pagestore.PageSize-int(pageOffset), total-offset)

		if pageIdx, ok := m.lookupPage(l1Idx, l2Idx); ok {
			page := m.store.PageBytes(pageIdx)
			copy(buf[offset:offset+chunk], page[pageOffset:int(pageOffset)+chunk])
		} else {
			clear(buf[offset : offset+chunk])
		}

		offset += chunk
		addr += uint32(chunk)
	}
}

// Write copies buf into memory starting at address, allocating pages on
// demand. It stops and returns the first non-success status if allocation
// fails partway through; bytes already written before the failure remain
// written. Addresses wrap modulo 2^32, as in Read.
func (m *Memory) Write(address uint32, buf []byte) int {
	addr := address
	offset := 0
	total := len(buf)

	for offset < total {
		l1Idx, l2Idx, pageOffset := splitAddress(addr)
		chunk := min(pagestore.PageSize-int(pageOffset), total-offset)

		pageBase := addr &^ uint32(pageOffsetMask)
		if status := m.AllocatePage(pageBase); status != StatusSuccess {
			return status
		}

		pageIdx, _ := m.lookupPage(l1Idx, l2Idx)
		page := m.store.PageBytes(pageIdx)
		copy(page[pageOffset:int(pageOffset)+chunk], buf[offset:offset+chunk])

		offset += chunk
		addr += uint32(chunk)
	}

	return StatusSuccess
}

// Reset returns every page this instance holds back to the PageStore and
// clears both levels of the page table. A Memory can be reused immediately
// after Reset, as if freshly created.
func (m *Memory) Reset() {
	for _, pageIdx := range m.allocated {
		m.store.Release(pageIdx)
	}
	m.allocated = m.allocated[:0]

	for i := range m.l1Table {
		m.l1Table[i] = unmappedL2Table
	}
	for i := range m.l2Tables[:m.numL2Tables*l2TableSize] {
		m.l2Tables[i] = unmappedPage
	}
	m.numL2Tables = 0
}

// NumPages reports how many pages are currently allocated to this instance.
func (m *Memory) NumPages() int {
	return len(m.allocated)
}

// NumL2Tables reports how many L2 tables are currently allocated.
func (m *Memory) NumL2Tables() int {
	return m.numL2Tables
}

// Close returns this instance's pages to the pool and detaches from the
// PageStore. The Memory must not be used afterward.
func (m *Memory) Close() {
	m.Reset()
	m.store.Detach()
}
