package simulation

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/sarchlab/ossim/cpu"
	"github.com/sarchlab/ossim/datarecording"
	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/mem/memphy"
	"github.com/sarchlab/ossim/mem/mm"
	"github.com/sarchlab/ossim/mem/vm"
	"github.com/sarchlab/ossim/mem/vm/tlb"
	"github.com/sarchlab/ossim/monitoring"
	"github.com/sarchlab/ossim/sched"
	"github.com/sarchlab/ossim/sim"
)

// A Simulation owns every part of a simulated machine.
type Simulation struct {
	*sim.Simulation

	id     string
	logger *log.Logger

	ram   *memphy.Device
	swap  *memphy.Device
	mm    *mm.Manager
	cache *tlb.Cache
	front *cpu.TLB

	scheduler  *sched.Scheduler
	dispatcher *kernel.Dispatcher
	processes  []*kernel.Process
	finished   atomic.Int64

	recorder   datarecording.DataRecorder
	monitor    *monitoring.Monitor
	monitorURL string
	progress   *monitoring.ProgressBar
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// RAM returns the physical memory.
func (s *Simulation) RAM() *memphy.Device {
	return s.ram
}

// Swap returns the swap device.
func (s *Simulation) Swap() *memphy.Device {
	return s.swap
}

// TLB returns the TLB cache shared by all processes.
func (s *Simulation) TLB() *tlb.Cache {
	return s.cache
}

// Scheduler returns the scheduler.
func (s *Simulation) Scheduler() *sched.Scheduler {
	return s.scheduler
}

// Processes returns the processes in the order they were loaded.
func (s *Simulation) Processes() []*kernel.Process {
	return s.processes
}

// NumFinished returns the number of processes that have ended.
func (s *Simulation) NumFinished() int {
	return int(s.finished.Load())
}

// GetDataRecorder returns the data recorder, or nil if recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.recorder
}

// GetMonitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitor, or an empty string if
// monitoring is off.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Run blocks until every process has ended.
func (s *Simulation) Run() error {
	start := time.Now()
	err := s.dispatcher.Run()

	s.logf("%d processes finished in %v", s.NumFinished(), time.Since(start))

	if s.recorder != nil {
		s.recorder.Flush()
	}

	if s.progress != nil {
		s.monitor.CompleteProgressBar(s.progress)
	}

	return err
}

// Terminate stops the monitor and closes the data recorder.
func (s *Simulation) Terminate() error {
	s.scheduler.Close()

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := s.monitor.StopServer(ctx); err != nil {
			return err
		}
	}

	if s.recorder != nil {
		return s.recorder.Close()
	}

	return nil
}

// A ProcessReport holds the TLB statistics of a process.
type ProcessReport struct {
	PID    vm.PID
	Name   string
	Hits   uint64
	Misses uint64
}

// HitRate returns the share of accesses that hit the TLB.
func (r ProcessReport) HitRate() float64 {
	total := r.Hits + r.Misses
	if total == 0 {
		return 0
	}

	return float64(r.Hits) / float64(total)
}

// Report returns the statistics of every process.
func (s *Simulation) Report() []ProcessReport {
	reports := make([]ProcessReport, 0, len(s.processes))
	for _, p := range s.processes {
		reports = append(reports, ProcessReport{
			PID:    p.PID,
			Name:   p.Name,
			Hits:   p.Stats.Hits(),
			Misses: p.Stats.Misses(),
		})
	}

	return reports
}

// PrintReport writes the statistics of every process as a table.
func (s *Simulation) PrintReport(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "PID\tNAME\tHITS\tMISSES\tHIT RATE")

	for _, r := range s.Report() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.2f%%\n",
			r.PID, r.Name, r.Hits, r.Misses, 100*r.HitRate())
	}

	return tw.Flush()
}

func (s *Simulation) logf(format string, args ...interface{}) {
	if s.logger == nil {
		return
	}

	s.logger.Printf(format, args...)
}

// trackedScheduler counts the processes that end and moves the progress bar.
type trackedScheduler struct {
	*sched.Scheduler

	sim *Simulation
}

func (t *trackedScheduler) EndProc(p *kernel.Process) error {
	err := t.Scheduler.EndProc(p)

	t.sim.finished.Add(1)

	if t.sim.progress != nil {
		t.sim.progress.IncrementFinished(1)
	}

	return err
}
