// Package sched provides the multi-level queue scheduler that hands processes
// to the CPUs.
package sched

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/mem/vm"
	"github.com/sarchlab/ossim/sim"
)

// ErrClosed is returned when a closed scheduler is asked to end a process.
var ErrClosed = errors.New("scheduler is closed")

// A TLBFlusher drops the cached translations of a process.
type TLBFlusher interface {
	FlushOf(p *kernel.Process) error
}

// A Level is a snapshot of one priority level.
type Level struct {
	Priority int
	Size     int
	Slot     int
}

// Scheduler keeps one queue per priority level. Lower levels are always
// served first. In single-queue mode every process goes to level 0.
type Scheduler struct {
	name    string
	lock    sync.Mutex
	queues  []*Queue
	mlq     bool
	flusher TLBFlusher
	logger  *log.Logger
	closed  bool
}

// Name returns the name of the scheduler.
func (s *Scheduler) Name() string {
	return s.name
}

// NumLevels returns the number of priority levels.
func (s *Scheduler) NumLevels() int {
	return len(s.queues)
}

// Queue returns the queue of a level.
func (s *Scheduler) Queue(level int) *Queue {
	return s.queues[level]
}

// AcceptQueueHook registers a hook to the queues of every level.
func (s *Scheduler) AcceptQueueHook(hook sim.Hook) {
	for _, q := range s.queues {
		q.AcceptHook(hook)
	}
}

// GetProc removes the earliest process of the highest non-empty level. It
// returns nil if every level is empty or the scheduler is closed.
func (s *Scheduler) GetProc() *kernel.Process {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return nil
	}

	for _, q := range s.queues {
		if q.Empty() {
			continue
		}

		q.slot--

		return q.Dequeue()
	}

	return nil
}

// PutProc queues a process at its own priority level. A closed scheduler
// drops the process.
func (s *Scheduler) PutProc(p *kernel.Process) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		s.logf("%s: closed, dropping process %d", s.name, p.PID)
		return
	}

	q := s.queues[s.levelOf(p)]
	if q.Enqueue(p) {
		q.slot++
	}
}

// AddProc queues a newly loaded process. It behaves the same as PutProc.
func (s *Scheduler) AddProc(p *kernel.Process) {
	s.PutProc(p)
}

// EndProc tears a finished process down. It flushes the translations of the
// first area, returns every mapped frame of that area to the RAM or the swap
// device, and releases the process. EndProc must be called exactly once per
// process.
func (s *Scheduler) EndProc(p *kernel.Process) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}

	if p.Released() {
		log.Panicf("process %d has already ended", p.PID)
	}

	s.queues[s.levelOf(p)].slot++

	var errs []error

	if s.flusher != nil {
		if err := s.flusher.FlushOf(p); err != nil {
			errs = append(errs, fmt.Errorf("flushing tlb: %w", err))
		}
	}

	errs = append(errs, s.reclaim(p)...)

	s.logf("%s: process %d ended", s.name, p.PID)
	p.Release()

	return errors.Join(errs...)
}

func (s *Scheduler) reclaim(p *kernel.Process) []error {
	var errs []error

	area := p.Space.Areas[0]
	p.Space.PageTable.Walk(0, area.LastPage(), func(pgn uint32, pte vm.PTE) {
		var err error

		switch {
		case pte.Present():
			err = p.RAM.FreeFrame(pte.FrameNumber())
		case pte.Swapped():
			err = p.Swap.FreeFrame(pte.SwapOffset())
		default:
			return
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("freeing page %d: %w", pgn, err))
		}
	})

	return errs
}

// QueueEmpty tells if every level is empty.
func (s *Scheduler) QueueEmpty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, q := range s.queues {
		if !q.Empty() {
			return false
		}
	}

	return true
}

// Levels returns a snapshot of the levels that hold processes.
func (s *Scheduler) Levels() []Level {
	s.lock.Lock()
	defer s.lock.Unlock()

	var levels []Level

	for prio, q := range s.queues {
		if q.Empty() && q.slot == 0 {
			continue
		}

		levels = append(levels, Level{
			Priority: prio,
			Size:     q.Size(),
			Slot:     q.slot,
		})
	}

	return levels
}

// Close drops every queued process. A closed scheduler hands out nothing.
func (s *Scheduler) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for i, q := range s.queues {
		if !q.Empty() {
			s.logf("%s: dropping %d processes of level %d", s.name, q.Size(), i)
		}

		q.procs = q.procs[:0]
		q.slot = 0
	}

	s.closed = true
}

func (s *Scheduler) levelOf(p *kernel.Process) int {
	if !s.mlq {
		return 0
	}

	if p.Priority < 0 || p.Priority >= len(s.queues) {
		log.Panicf("process %d has priority %d, must be in [0, %d)",
			p.PID, p.Priority, len(s.queues))
	}

	return p.Priority
}

func (s *Scheduler) logf(format string, args ...interface{}) {
	if s.logger == nil {
		return
	}

	s.logger.Printf(format, args...)
}
