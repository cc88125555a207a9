package sched

import (
	"log"

	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/sim"
)

// HookPosQueuePush marks when a process is enqueued.
var HookPosQueuePush = &sim.HookPos{Name: "Queue Push"}

// HookPosQueuePop marks when a process is dequeued.
var HookPosQueuePop = &sim.HookPos{Name: "Queue Pop"}

// HookPosQueueReject marks when a process is dropped because the queue is
// full.
var HookPosQueueReject = &sim.HookPos{Name: "Queue Reject"}

// A Queue is a fixed-capacity FIFO of processes. A Queue is not safe for
// concurrent use; the Scheduler guards its queues.
type Queue struct {
	sim.HookableBase

	name     string
	capacity int
	procs    []*kernel.Process
	slot     int
}

// NewQueue creates an empty queue.
func NewQueue(name string, capacity int) *Queue {
	if capacity <= 0 {
		log.Panicf("queue %s must have a positive capacity", name)
	}

	return &Queue{
		name:     name,
		capacity: capacity,
		procs:    make([]*kernel.Process, 0, capacity),
	}
}

// Name returns the name of the queue.
func (q *Queue) Name() string {
	return q.name
}

// Enqueue appends a process. If the queue is full, the process is not stored
// and false is returned.
func (q *Queue) Enqueue(p *kernel.Process) bool {
	if len(q.procs) >= q.capacity {
		log.Printf("%s is full, process %d is dropped", q.name, p.PID)
		q.notify(HookPosQueueReject, p)

		return false
	}

	q.procs = append(q.procs, p)
	q.notify(HookPosQueuePush, p)

	return true
}

// Dequeue removes and returns the earliest process. It returns nil if the
// queue is empty.
func (q *Queue) Dequeue() *kernel.Process {
	if q.Empty() {
		return nil
	}

	p := q.procs[0]
	copy(q.procs, q.procs[1:])
	q.procs[len(q.procs)-1] = nil
	q.procs = q.procs[:len(q.procs)-1]

	q.notify(HookPosQueuePop, p)

	return p
}

// Empty tells if the queue holds no process. A nil queue is empty.
func (q *Queue) Empty() bool {
	return q == nil || len(q.procs) == 0
}

// Size returns the number of queued processes.
func (q *Queue) Size() int {
	if q == nil {
		return 0
	}

	return len(q.procs)
}

// Capacity returns the maximum number of queued processes.
func (q *Queue) Capacity() int {
	return q.capacity
}

// Slot returns the dispatch quota of the queue.
func (q *Queue) Slot() int {
	return q.slot
}

func (q *Queue) notify(pos *sim.HookPos, p *kernel.Process) {
	if q.NumHooks() == 0 {
		return
	}

	q.InvokeHook(sim.HookCtx{
		Domain: q,
		Pos:    pos,
		Item:   p,
	})
}
