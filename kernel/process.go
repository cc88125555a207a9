// Package kernel holds the process control block and the dispatch loop that
// drives processes through the scheduler.
package kernel

import (
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/ossim/mem/vm"
)

// A FrameDevice is a physical memory device that takes frames back.
type FrameDevice interface {
	FreeFrame(fpn uint32) error
}

// A TLB caches the page translations of every process that shares it.
type TLB interface {
	Read(pid vm.PID, pgn uint32) (uint32, error)
	Write(pid vm.PID, pgn uint32, pte vm.PTE) (uint32, error)
	InvalidateRange(pid vm.PID, first, last uint32) error
	BinDump(w io.Writer) error
}

// Stats counts the TLB hits and misses of a process.
type Stats struct {
	lock   sync.Mutex
	hits   uint64
	misses uint64
}

// Hit records a TLB hit.
func (s *Stats) Hit() {
	s.lock.Lock()
	s.hits++
	s.lock.Unlock()
}

// Miss records a TLB miss.
func (s *Stats) Miss() {
	s.lock.Lock()
	s.misses++
	s.lock.Unlock()
}

// Hits returns the number of hits so far.
func (s *Stats) Hits() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.hits
}

// Misses returns the number of misses so far.
func (s *Stats) Misses() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.misses
}

// A Process is the process control block.
type Process struct {
	PID      vm.PID
	Priority int
	Name     string

	Space *vm.AddressSpace
	TLB   TLB
	RAM   FrameDevice
	Swap  FrameDevice

	Code []Instruction
	PC   int
	Regs [NumRegs]uint32

	Stats Stats

	released atomic.Bool
}

// Done tells if every instruction has been executed.
func (p *Process) Done() bool {
	return p.PC >= len(p.Code)
}

// Released tells if the process has been torn down.
func (p *Process) Released() bool {
	return p.released.Load()
}

// Release drops the references the process holds. A process can only be
// released once.
func (p *Process) Release() {
	if !p.released.CompareAndSwap(false, true) {
		log.Panicf("process %d released twice", p.PID)
	}

	p.Space = nil
	p.TLB = nil
	p.RAM = nil
	p.Swap = nil
	p.Code = nil
}
