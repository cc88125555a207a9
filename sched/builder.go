package sched

import (
	"fmt"
	"log"
)

// Builder can build schedulers.
type Builder struct {
	maxPrio   int
	queueSize int
	mlq       bool
	flusher   TLBFlusher
	logger    *log.Logger
}

// MakeBuilder creates a builder with 140 priority levels of 10 processes
// each, in multi-level mode.
func MakeBuilder() Builder {
	return Builder{
		maxPrio:   140,
		queueSize: 10,
		mlq:       true,
	}
}

// WithMaxPrio sets the number of priority levels.
func (b Builder) WithMaxPrio(n int) Builder {
	b.maxPrio = n
	return b
}

// WithQueueSize sets the capacity of each level.
func (b Builder) WithQueueSize(n int) Builder {
	b.queueSize = n
	return b
}

// WithMLQ selects between multi-level mode and single-queue mode.
func (b Builder) WithMLQ(mlq bool) Builder {
	b.mlq = mlq
	return b
}

// WithTLBFlusher sets the component that flushes the TLB of ended processes.
func (b Builder) WithTLBFlusher(f TLBFlusher) Builder {
	b.flusher = f
	return b
}

// WithLogger sets the logger that reports process life cycle events.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// Build creates a scheduler.
func (b Builder) Build(name string) *Scheduler {
	if b.maxPrio <= 0 {
		log.Panicf("scheduler %s must have at least one level", name)
	}

	numLevels := b.maxPrio
	if !b.mlq {
		numLevels = 1
	}

	s := &Scheduler{
		name:    name,
		mlq:     b.mlq,
		flusher: b.flusher,
		logger:  b.logger,
	}

	for i := 0; i < numLevels; i++ {
		s.queues = append(s.queues,
			NewQueue(fmt.Sprintf("%s.Queue[%d]", name, i), b.queueSize))
	}

	return s
}
