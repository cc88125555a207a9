package vm

import (
	"log"
	"sync"
)

// A PageTable is the page directory of one process. It is indexed by virtual
// page number and holds one PTE per page.
type PageTable struct {
	sync.Mutex
	entries []PTE
}

// NewPageTable creates a page table that can map numPages pages.
func NewPageTable(numPages int) *PageTable {
	return &PageTable{
		entries: make([]PTE, numPages),
	}
}

// Len returns the number of pages the table can map.
func (pt *PageTable) Len() int {
	return len(pt.entries)
}

// Get returns the entry of the given page.
func (pt *PageTable) Get(pgn uint32) PTE {
	pt.Lock()
	defer pt.Unlock()

	pt.pageMustBeInRange(pgn)

	return pt.entries[pgn]
}

// Set replaces the entry of the given page.
func (pt *PageTable) Set(pgn uint32, pte PTE) {
	pt.Lock()
	defer pt.Unlock()

	pt.pageMustBeInRange(pgn)

	pt.entries[pgn] = pte
}

// Walk visits the pages in [first, last]. Pages outside the table are
// skipped.
func (pt *PageTable) Walk(first, last uint32, fn func(pgn uint32, pte PTE)) {
	pt.Lock()
	snapshot := make([]PTE, len(pt.entries))
	copy(snapshot, pt.entries)
	pt.Unlock()

	for pgn := first; pgn <= last && int(pgn) < len(snapshot); pgn++ {
		fn(pgn, snapshot[pgn])
	}
}

func (pt *PageTable) pageMustBeInRange(pgn uint32) {
	if int(pgn) >= len(pt.entries) {
		log.Panicf("page %d is beyond the page table of %d pages",
			pgn, len(pt.entries))
	}
}
