// Package cpu provides the TLB-backed memory instructions that processes
// execute.
package cpu

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/mem/vm"
	"github.com/sarchlab/ossim/mem/vm/tlb"
	"github.com/sarchlab/ossim/sim"
)

// The area that every memory instruction works on.
const defaultAreaID = 0

var _ kernel.TLB = (*tlb.Cache)(nil)

// HookPosMemAccess marks a read or a write that consulted the TLB. The hook
// item is a MemAccess.
var HookPosMemAccess = &sim.HookPos{Name: "Mem Access"}

// MemOp is the kind of a memory access.
type MemOp string

// Memory access kinds.
const (
	MemOpRead  MemOp = "read"
	MemOpWrite MemOp = "write"
)

// A MemAccess describes one read or write.
type MemAccess struct {
	PID    vm.PID
	Op     MemOp
	Region uint32
	Offset uint32
	Page   uint32
	Hit    bool
}

// TLB is the front end that processes use to allocate, free, read, and write
// memory. The memory manager stays the source of truth; the per-process TLB
// cache only mirrors its translations.
type TLB struct {
	sim.HookableBase

	name       string
	mm         MemoryManager
	dumpWriter io.Writer
}

// Name returns the name of the TLB.
func (t *TLB) Name() string {
	return t.name
}

// Alloc allocates size bytes for a region and caches the translations of all
// the pages of the new range. If the memory manager fails, the TLB cache is
// not touched. If caching a page fails, the pages cached before it are
// dropped again.
func (t *TLB) Alloc(p *kernel.Process, size, regionID uint32) error {
	addr, err := t.mm.Alloc(p, defaultAreaID, regionID, size)
	if err != nil {
		return err
	}

	if size > 0 {
		first, last := vm.PageSpan(addr, size)
		for pgn := first; pgn <= last; pgn++ {
			if err := t.cachePage(p, pgn); err != nil {
				return t.uncache(p, first, pgn, err)
			}
		}
	}

	t.dumpf("TLB after alloc: PID: %d, size: %d, region: %d\n",
		p.PID, size, regionID)
	t.dumpTLB(p)

	return nil
}

// Free releases a region and drops the translations of its pages.
func (t *TLB) Free(p *kernel.Process, regionID uint32) error {
	region, err := t.mm.Region(p, regionID)
	if err != nil {
		return err
	}

	if err := t.mm.Free(p, defaultAreaID, regionID); err != nil {
		return err
	}

	if region.Empty() {
		return nil
	}

	first, last := region.Pages()

	return p.TLB.InvalidateRange(p.PID, first, last)
}

// Read returns the byte at offset in the source region. The memory manager
// provides the data; the TLB is only checked to count hits and misses.
func (t *TLB) Read(p *kernel.Process, source, offset uint32) (byte, error) {
	pgn, err := t.pageOf(p, source, offset)
	if err != nil {
		return 0, err
	}

	data, err := t.mm.Read(p, defaultAreaID, source, offset)
	if err != nil {
		return 0, err
	}

	hit, err := t.lookup(p, pgn)
	if err != nil {
		return 0, err
	}

	t.count(p, MemAccess{
		PID:    p.PID,
		Op:     MemOpRead,
		Region: source,
		Offset: offset,
		Page:   pgn,
		Hit:    hit,
	})

	if hit {
		t.dumpf("\tTLB hit at read region=%d offset=%d, Read value = %d\n",
			source, offset, data)
	} else {
		t.dumpf("\tTLB miss at read region=%d offset=%d\n", source, offset)
	}

	return data, nil
}

// Write stores data at offset in the destination region. On a TLB miss, the
// translation is cached after the write.
func (t *TLB) Write(
	p *kernel.Process,
	data byte,
	destination, offset uint32,
) error {
	pgn, err := t.pageOf(p, destination, offset)
	if err != nil {
		return err
	}

	hit, err := t.lookup(p, pgn)
	if err != nil {
		return err
	}

	err = t.mm.Write(p, defaultAreaID, destination, offset, data)
	if err != nil {
		return err
	}

	t.count(p, MemAccess{
		PID:    p.PID,
		Op:     MemOpWrite,
		Region: destination,
		Offset: offset,
		Page:   pgn,
		Hit:    hit,
	})

	if hit {
		t.dumpf("TLB hit at write region=%d offset=%d value=%d\n",
			destination, offset, data)

		return nil
	}

	t.dumpf("TLB miss at write region=%d offset=%d value=%d\n",
		destination, offset, data)

	return t.cachePage(p, pgn)
}

// FlushOf drops the translations of every page in the first area of the
// process. Other areas are not flushed.
func (t *TLB) FlushOf(p *kernel.Process) error {
	area, err := t.mm.Area(p, defaultAreaID)
	if err != nil {
		return err
	}

	return p.TLB.InvalidateRange(p.PID, 0, area.LastPage())
}

// InvalidateAll is meant to refresh every page-directory entry cached for a
// process. It is not implemented and does nothing.
func (t *TLB) InvalidateAll(_ *kernel.Process) error {
	return nil
}

func (t *TLB) pageOf(p *kernel.Process, regionID, offset uint32) (uint32, error) {
	region, err := t.mm.Region(p, regionID)
	if err != nil {
		return 0, err
	}

	return vm.VAddr(region.Start + offset).PageNumber(), nil
}

func (t *TLB) lookup(p *kernel.Process, pgn uint32) (bool, error) {
	_, err := p.TLB.Read(p.PID, pgn)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, tlb.ErrMiss):
		return false, nil
	default:
		return false, fmt.Errorf("tlb lookup of page %d: %w", pgn, err)
	}
}

func (t *TLB) cachePage(p *kernel.Process, pgn uint32) error {
	pte := p.Space.PageTable.Get(pgn)

	_, err := p.TLB.Write(p.PID, pgn, pte)
	if errors.Is(err, tlb.ErrNoVictim) {
		return nil
	}

	return err
}

func (t *TLB) uncache(p *kernel.Process, first, last uint32, cause error) error {
	if err := p.TLB.InvalidateRange(p.PID, first, last); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}

func (t *TLB) count(p *kernel.Process, access MemAccess) {
	if access.Hit {
		p.Stats.Hit()
	} else {
		p.Stats.Miss()
	}

	if t.NumHooks() == 0 {
		return
	}

	t.InvokeHook(sim.HookCtx{
		Domain: t,
		Pos:    HookPosMemAccess,
		Item:   access,
	})
}

func (t *TLB) dumpf(format string, args ...interface{}) {
	if t.dumpWriter == nil {
		return
	}

	fmt.Fprintf(t.dumpWriter, format, args...)
}

func (t *TLB) dumpTLB(p *kernel.Process) {
	if t.dumpWriter == nil {
		return
	}

	_ = p.TLB.BinDump(t.dumpWriter)
}
