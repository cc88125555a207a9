package kernel

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// A Scheduler hands out processes to the CPUs.
type Scheduler interface {
	GetProc() *Process
	PutProc(p *Process)
	EndProc(p *Process) error
	QueueEmpty() bool
}

// Memory executes the memory instructions of a process.
type Memory interface {
	Alloc(p *Process, size, regionID uint32) error
	Free(p *Process, regionID uint32) error
	Read(p *Process, source, offset uint32) (byte, error)
	Write(p *Process, data byte, destination, offset uint32) error
}

// A Dispatcher runs processes on a number of CPUs until the scheduler runs
// dry.
type Dispatcher struct {
	sched     Scheduler
	mem       Memory
	numCPU    int
	timeSlice int
	idleWait  time.Duration
	logger    *log.Logger

	busy atomic.Int32
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(
	sched Scheduler,
	mem Memory,
	numCPU, timeSlice int,
	logger *log.Logger,
) *Dispatcher {
	if numCPU <= 0 || timeSlice <= 0 {
		log.Panicf("invalid dispatcher setup: %d cpus, time slice %d",
			numCPU, timeSlice)
	}

	return &Dispatcher{
		sched:     sched,
		mem:       mem,
		numCPU:    numCPU,
		timeSlice: timeSlice,
		idleWait:  time.Millisecond,
		logger:    logger,
	}
}

// Run blocks until every process has ended.
func (d *Dispatcher) Run() error {
	var wg sync.WaitGroup

	errs := make([]error, d.numCPU)

	for i := 0; i < d.numCPU; i++ {
		wg.Add(1)

		go func(cpuID int) {
			defer wg.Done()
			errs[cpuID] = d.cpuLoop(cpuID)
		}(i)
	}

	wg.Wait()

	return errors.Join(errs...)
}

func (d *Dispatcher) cpuLoop(cpuID int) error {
	var errs []error

	for {
		d.busy.Add(1)

		p := d.sched.GetProc()
		if p == nil {
			d.busy.Add(-1)

			if d.sched.QueueEmpty() && d.busy.Load() == 0 {
				return errors.Join(errs...)
			}

			time.Sleep(d.idleWait)

			continue
		}

		d.logf("CPU %d: dispatched process %d", cpuID, p.PID)
		d.runSlice(cpuID, p)

		if p.Done() {
			d.logf("CPU %d: process %d has finished", cpuID, p.PID)

			if err := d.sched.EndProc(p); err != nil {
				errs = append(errs, fmt.Errorf("ending process %d: %w",
					p.PID, err))
			}
		} else {
			d.logf("CPU %d: put process %d to run queue", cpuID, p.PID)
			d.sched.PutProc(p)
		}

		d.busy.Add(-1)
	}
}

func (d *Dispatcher) runSlice(cpuID int, p *Process) {
	for i := 0; i < d.timeSlice && !p.Done(); i++ {
		inst := p.Code[p.PC]
		p.PC++

		if err := d.execute(p, inst); err != nil {
			d.logf("CPU %d: process %d failed %s: %v",
				cpuID, p.PID, inst, err)
		}
	}
}

func (d *Dispatcher) execute(p *Process, inst Instruction) error {
	if err := inst.Validate(); err != nil {
		return err
	}

	a := inst.Args

	switch inst.Op {
	case OpCalc:
		return nil
	case OpAlloc:
		return d.mem.Alloc(p, a[0], a[1])
	case OpFree:
		return d.mem.Free(p, a[0])
	case OpRead:
		if a[2] >= NumRegs {
			return fmt.Errorf("register %d does not exist", a[2])
		}

		data, err := d.mem.Read(p, a[0], a[1])
		if err != nil {
			return err
		}

		p.Regs[a[2]] = uint32(data)

		return nil
	case OpWrite:
		return d.mem.Write(p, byte(a[0]), a[1], a[2])
	}

	return nil
}

func (d *Dispatcher) logf(format string, args ...interface{}) {
	if d.logger == nil {
		return
	}

	d.logger.Printf(format, args...)
}
