package datarecording

import (
	"github.com/sarchlab/ossim/cpu"
	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/mem/vm"
	"github.com/sarchlab/ossim/mem/vm/tlb"
	"github.com/sarchlab/ossim/sim"
)

// Tables written by a HookRecorder.
const (
	TableTLBAccess  = "tlb_access"
	TableMemAccess  = "mem_access"
	TableSchedEvent = "sched_event"
)

// TLBAccessEntry is a row of the tlb_access table.
type TLBAccessEntry struct {
	ID     string
	Domain string
	Event  string
	PID    vm.PID
	Page   uint32
	Frame  uint32
	Line   uint64
	Way    int
}

// MemAccessEntry is a row of the mem_access table.
type MemAccessEntry struct {
	ID     string
	Domain string
	Op     string
	PID    vm.PID
	Region uint32
	Offset uint32
	Page   uint32
	Hit    bool
}

// SchedEventEntry is a row of the sched_event table.
type SchedEventEntry struct {
	ID       string
	Domain   string
	Event    string
	PID      vm.PID
	Priority int
}

// A HookRecorder turns the hook items of TLB caches, TLB front ends, and
// scheduler queues into rows.
type HookRecorder struct {
	recorder DataRecorder
	idGen    sim.IDGenerator
}

// NewHookRecorder creates the tables and returns a hook that fills them.
func NewHookRecorder(recorder DataRecorder) *HookRecorder {
	recorder.CreateTable(TableTLBAccess, TLBAccessEntry{})
	recorder.CreateTable(TableMemAccess, MemAccessEntry{})
	recorder.CreateTable(TableSchedEvent, SchedEventEntry{})

	return &HookRecorder{
		recorder: recorder,
		idGen:    sim.GetIDGenerator(),
	}
}

// Func records one hook context. Items of unknown types are ignored.
func (h *HookRecorder) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case tlb.Access:
		h.recorder.InsertData(TableTLBAccess, TLBAccessEntry{
			ID:     h.idGen.Generate(),
			Domain: ctx.Domain.Name(),
			Event:  ctx.Pos.Name,
			PID:    item.PID,
			Page:   item.Page,
			Frame:  item.Frame,
			Line:   item.Line,
			Way:    item.Way,
		})
	case cpu.MemAccess:
		h.recorder.InsertData(TableMemAccess, MemAccessEntry{
			ID:     h.idGen.Generate(),
			Domain: ctx.Domain.Name(),
			Op:     string(item.Op),
			PID:    item.PID,
			Region: item.Region,
			Offset: item.Offset,
			Page:   item.Page,
			Hit:    item.Hit,
		})
	case *kernel.Process:
		h.recorder.InsertData(TableSchedEvent, SchedEventEntry{
			ID:       h.idGen.Generate(),
			Domain:   ctx.Domain.Name(),
			Event:    ctx.Pos.Name,
			PID:      item.PID,
			Priority: item.Priority,
		})
	}
}
