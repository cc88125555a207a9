// Package tlb emulates a two-way set-associative TLB that lives in a
// byte-addressable storage device.
package tlb

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sarchlab/ossim/mem/storage"
	"github.com/sarchlab/ossim/mem/vm"
	"github.com/sarchlab/ossim/mem/vm/tlb/internal"
	"github.com/sarchlab/ossim/sim"
)

var (
	// ErrMiss is returned when the TLB does not hold a usable translation.
	// It is part of the normal control flow.
	ErrMiss = errors.New("tlb miss")

	// ErrNoVictim is returned when no way of the line can be replaced.
	ErrNoVictim = errors.New("no replaceable way in tlb line")

	// ErrTagRange is returned for a pid or a page number that a tag cannot
	// hold.
	ErrTagRange = errors.New("pid or page number out of tlb tag range")
)

// Hook positions of a Cache. The hook item is an Access.
var (
	HookPosHit        = &sim.HookPos{Name: "TLB Hit"}
	HookPosMiss       = &sim.HookPos{Name: "TLB Miss"}
	HookPosInsert     = &sim.HookPos{Name: "TLB Insert"}
	HookPosEvict      = &sim.HookPos{Name: "TLB Evict"}
	HookPosInvalidate = &sim.HookPos{Name: "TLB Invalidate"}
)

// An Access describes the translation a TLB operation worked on.
type Access struct {
	PID   vm.PID
	Page  uint32
	Frame uint32
	Line  uint64
	Way   int
}

// A WayEntry is a valid way of the TLB.
type WayEntry struct {
	Line   uint64
	Way    int
	PID    vm.PID
	Page   uint32
	Recent bool
	PTE    vm.PTE
}

// Cache is a TLB whose lines are stored in a Storage. Each line has two
// ways; a way is a header word (valid, recency, tag) and a shadow PTE word.
//
// A single lock guards the whole storage.
type Cache struct {
	sim.HookableBase

	name     string
	lock     sync.Mutex
	storage  *storage.Storage
	numLines uint64
}

type hookEvent struct {
	pos    *sim.HookPos
	access Access
}

// Name returns the name of the TLB.
func (c *Cache) Name() string {
	return c.name
}

// NumLines returns the number of lines.
func (c *Cache) NumLines() uint64 {
	return c.numLines
}

// LineOf returns the line that caches the given page. The pid rotates the
// line index so that small working sets of different processes spread out.
// Pages of one process whose numbers differ by a multiple of 32 share a line.
func (c *Cache) LineOf(pid vm.PID, pgn uint32) uint64 {
	return (uint64(pid)<<5 + uint64(pgn%32)) % c.numLines
}

// Read looks up the frame of a page. It returns ErrMiss if no valid way
// holds the page or if the cached entry is not present. Read never inserts.
func (c *Cache) Read(pid vm.PID, pgn uint32) (uint32, error) {
	if err := tagMustFit(pid, pgn); err != nil {
		return 0, err
	}

	c.lock.Lock()
	fpn, evt, err := c.read(pid, pgn)
	c.lock.Unlock()

	c.notify(evt)

	return fpn, err
}

func tagMustFit(pid vm.PID, pgn uint32) error {
	if pid > vm.MaxPID || pgn >= vm.MaxPageNumber {
		return fmt.Errorf("pid %d page %d: %w", pid, pgn, ErrTagRange)
	}

	return nil
}

func (c *Cache) read(pid vm.PID, pgn uint32) (uint32, hookEvent, error) {
	lineID := c.LineOf(pid, pgn)
	line := internal.NewLine(c.storage, lineID)
	tag := vm.NewTLBTag(pid, pgn)
	access := Access{PID: pid, Page: pgn, Line: lineID, Way: -1}

	for way := 0; way < internal.NumWays; way++ {
		h, err := line.Header(way)
		if err != nil {
			return 0, hookEvent{}, err
		}

		if !h.Valid() || h.Tag() != tag {
			continue
		}

		pte, err := line.PTE(way)
		if err != nil {
			return 0, hookEvent{}, err
		}

		if !pte.Present() {
			continue
		}

		if err := line.Touch(way); err != nil {
			return 0, hookEvent{}, err
		}

		access.Way = way
		access.Frame = pte.FrameNumber()

		return pte.FrameNumber(), hookEvent{HookPosHit, access}, nil
	}

	return 0, hookEvent{HookPosMiss, access}, ErrMiss
}

// Write caches the given PTE for a page and returns the frame number stored
// in it. A way that already holds the page is overwritten in place. Otherwise
// an invalid way is used first, then the way that was not used most recently.
// ErrNoVictim is returned if neither exists.
func (c *Cache) Write(pid vm.PID, pgn uint32, pte vm.PTE) (uint32, error) {
	if err := tagMustFit(pid, pgn); err != nil {
		return 0, err
	}

	c.lock.Lock()
	evts, err := c.write(pid, pgn, pte)
	c.lock.Unlock()

	for _, evt := range evts {
		c.notify(evt)
	}

	if err != nil {
		return 0, err
	}

	return pte.FrameNumber(), nil
}

func (c *Cache) write(
	pid vm.PID,
	pgn uint32,
	pte vm.PTE,
) ([]hookEvent, error) {
	lineID := c.LineOf(pid, pgn)
	line := internal.NewLine(c.storage, lineID)
	tag := vm.NewTLBTag(pid, pgn)

	var headers [internal.NumWays]internal.Header
	for way := range headers {
		h, err := line.Header(way)
		if err != nil {
			return nil, err
		}

		headers[way] = h
	}

	way := c.findWay(headers, tag)
	if way < 0 {
		return nil, ErrNoVictim
	}

	var evts []hookEvent

	victim := headers[way]
	if victim.Valid() && victim.Tag() != tag {
		evts = append(evts, hookEvent{HookPosEvict, Access{
			PID:  victim.Tag().PID(),
			Page: victim.Tag().PageNumber(),
			Line: lineID,
			Way:  way,
		}})
	}

	if err := line.SetHeader(way, internal.NewHeader(tag)); err != nil {
		return nil, err
	}

	if err := line.SetPTE(way, pte); err != nil {
		return nil, err
	}

	if err := line.Touch(way); err != nil {
		return nil, err
	}

	evts = append(evts, hookEvent{HookPosInsert, Access{
		PID:   pid,
		Page:  pgn,
		Frame: pte.FrameNumber(),
		Line:  lineID,
		Way:   way,
	}})

	return evts, nil
}

func (c *Cache) findWay(
	headers [internal.NumWays]internal.Header,
	tag vm.TLBTag,
) int {
	for way, h := range headers {
		if h.Valid() && h.Tag() == tag {
			return way
		}
	}

	for way, h := range headers {
		if !h.Valid() {
			return way
		}
	}

	for way, h := range headers {
		if !h.Recent() {
			return way
		}
	}

	return -1
}

// Invalidate drops the page from the TLB. Only the line of the page is
// scanned. Invalidating a page that is not cached does nothing.
func (c *Cache) Invalidate(pid vm.PID, pgn uint32) error {
	if err := tagMustFit(pid, pgn); err != nil {
		return err
	}

	c.lock.Lock()
	evt, found, err := c.invalidate(pid, pgn)
	c.lock.Unlock()

	if found {
		c.notify(evt)
	}

	return err
}

func (c *Cache) invalidate(
	pid vm.PID,
	pgn uint32,
) (evt hookEvent, found bool, err error) {
	lineID := c.LineOf(pid, pgn)
	line := internal.NewLine(c.storage, lineID)
	tag := vm.NewTLBTag(pid, pgn)

	for way := 0; way < internal.NumWays; way++ {
		h, err := line.Header(way)
		if err != nil {
			return hookEvent{}, false, err
		}

		if !h.Valid() || h.Tag() != tag {
			continue
		}

		if err := line.Clear(way); err != nil {
			return hookEvent{}, false, err
		}

		evt = hookEvent{HookPosInvalidate, Access{
			PID:  pid,
			Page: pgn,
			Line: lineID,
			Way:  way,
		}}

		return evt, true, nil
	}

	return hookEvent{}, false, nil
}

// InvalidateRange drops the pages first..last (inclusive) of a process.
func (c *Cache) InvalidateRange(pid vm.PID, first, last uint32) error {
	for pgn := first; pgn <= last; pgn++ {
		if err := c.Invalidate(pid, pgn); err != nil {
			return err
		}
	}

	return nil
}

// Entries lists the valid ways in line order.
func (c *Cache) Entries() ([]WayEntry, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	var entries []WayEntry

	for lineID := uint64(0); lineID < c.numLines; lineID++ {
		line := internal.NewLine(c.storage, lineID)

		for way := 0; way < internal.NumWays; way++ {
			h, err := line.Header(way)
			if err != nil {
				return nil, err
			}

			if !h.Valid() {
				continue
			}

			pte, err := line.PTE(way)
			if err != nil {
				return nil, err
			}

			entries = append(entries, WayEntry{
				Line:   lineID,
				Way:    way,
				PID:    h.Tag().PID(),
				Page:   h.Tag().PageNumber(),
				Recent: h.Recent(),
				PTE:    pte,
			})
		}
	}

	return entries, nil
}

// Dump lists the non-zero bytes of the TLB storage.
func (c *Cache) Dump(w io.Writer) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.storage.Dump(w, "PHYSICAL MEMORY (TLB CACHE)")
}

// BinDump lists the bit patterns of the TLB storage.
func (c *Cache) BinDump(w io.Writer) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.storage.BinDump(w, "PHYSICAL MEMORY (TLB CACHE)")
}

func (c *Cache) notify(evt hookEvent) {
	if evt.pos == nil || c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    evt.pos,
		Item:   evt.access,
	})
}
