// Package simulation assembles the memory devices, the TLB, the scheduler,
// and the CPUs from a configuration and runs a workload on them.
package simulation

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/ossim/config"
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

// Builder can be used to build a simulation.
type Builder struct {
	cfg         config.Config
	workload    config.Workload
	logger      *log.Logger
	dumpWriter  io.Writer
	hookTracing bool
	openURL     func(url string) error
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg:     config.Default(),
		openURL: browser.OpenURL,
	}
}

// WithConfig sets the configuration of the simulation.
func (b Builder) WithConfig(c config.Config) Builder {
	b.cfg = c
	return b
}

// WithWorkload sets the processes to run.
func (b Builder) WithWorkload(w config.Workload) Builder {
	b.workload = w
	return b
}

// WithLogger sets the logger that every part of the simulation writes to.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithDumpWriter makes the TLB front end report every access to w.
func (b Builder) WithDumpWriter(w io.Writer) Builder {
	b.dumpWriter = w
	return b
}

// WithHookTracing logs every hook invocation of the TLB, the front end, and
// the scheduler queues. It requires a logger.
func (b Builder) WithHookTracing() Builder {
	b.hookTracing = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.hookTracing && b.logger == nil {
		log.Panic("hook tracing requires a logger")
	}
}

// Build builds the simulation. The configuration and the workload are
// validated first.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	if err := b.workload.Validate(b.cfg); err != nil {
		return nil, err
	}

	s := &Simulation{
		Simulation: sim.NewSimulation(),
		id:         xid.New().String(),
		logger:     b.logger,
	}

	b.buildMemory(s)
	b.buildScheduler(s)
	b.attachHooks(s)
	b.loadProcesses(s)

	s.dispatcher = kernel.NewDispatcher(
		&trackedScheduler{Scheduler: s.scheduler, sim: s},
		s.front,
		b.cfg.NumCPU,
		b.cfg.TimeSlice,
		b.logger,
	)

	if b.cfg.MonitorPort > 0 {
		b.startMonitor(s)
	}

	return s, nil
}

func (b Builder) buildMemory(s *Simulation) {
	s.ram = memphy.MakeBuilder().WithCapacity(b.cfg.RAMSize).Build("RAM")
	s.swap = memphy.MakeBuilder().WithCapacity(b.cfg.SwapSize).Build("Swap")
	s.mm = mm.NewManager(s.ram, b.logger)
	s.cache = tlb.MakeBuilder().WithCapacity(b.cfg.TLBSize).Build("TLB")

	dumpWriter := b.dumpWriter
	if dumpWriter == nil && b.cfg.IODump {
		dumpWriter = os.Stdout
	}

	if dumpWriter != nil {
		dumpWriter = &lockedWriter{w: dumpWriter}
	}

	s.front = cpu.MakeBuilder().
		WithMemoryManager(s.mm).
		WithDumpWriter(dumpWriter).
		Build("CPU.TLB")

	if dumpWriter != nil {
		s.cache.AcceptHook(tlb.NewTracer(dumpWriter))
	}

	s.RegisterComponent(s.ram)
	s.RegisterComponent(s.swap)
	s.RegisterComponent(s.cache)
	s.RegisterComponent(s.front)
}

func (b Builder) buildScheduler(s *Simulation) {
	s.scheduler = sched.MakeBuilder().
		WithMaxPrio(b.cfg.MaxPrio).
		WithQueueSize(b.cfg.MaxQueueSize).
		WithMLQ(b.cfg.MLQ).
		WithTLBFlusher(s.front).
		WithLogger(b.logger).
		Build("Sched")

	s.RegisterComponent(s.scheduler)
}

func (b Builder) attachHooks(s *Simulation) {
	var hooks []sim.Hook

	if b.cfg.RecordDB != "" {
		s.recorder = datarecording.New(b.cfg.RecordDB)
		hooks = append(hooks, datarecording.NewHookRecorder(s.recorder))
	}

	if b.hookTracing {
		hooks = append(hooks, sim.NewHookLogger(b.logger))
	}

	for _, h := range hooks {
		s.cache.AcceptHook(h)
		s.front.AcceptHook(h)
		s.scheduler.AcceptQueueHook(h)
	}
}

func (b Builder) loadProcesses(s *Simulation) {
	for i, spec := range b.workload.Processes {
		p := s.mm.NewProcess(vm.PID(i+1), spec.Priority, s.swap)
		p.Name = spec.Name
		p.Code = spec.Instructions()
		p.TLB = s.cache

		s.processes = append(s.processes, p)
		s.scheduler.AddProc(p)

		s.logf("loaded process %d (%s), priority %d, %d instructions",
			p.PID, p.Name, p.Priority, len(p.Code))
	}
}

func (b Builder) startMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor().WithPortNumber(b.cfg.MonitorPort)

	s.monitor.RegisterTLB(s.cache)
	s.monitor.RegisterScheduler(s.scheduler)
	s.monitor.RegisterComponent(s.front)
	s.monitor.RegisterComponent(s.ram)
	s.monitor.RegisterComponent(s.swap)

	for _, p := range s.processes {
		s.monitor.RegisterProcess(p)
	}

	s.progress = s.monitor.CreateProgressBar(
		"Processes", uint64(len(s.processes)))
	s.monitorURL = s.monitor.StartServer()

	if b.cfg.OpenBrowser {
		if err := b.openURL(s.monitorURL); err != nil {
			s.logf("cannot open %s: %v", s.monitorURL, err)
		}
	}
}

// lockedWriter serializes the dumps of CPUs that run at the same time.
type lockedWriter struct {
	lock sync.Mutex
	w    io.Writer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.w.Write(p)
}
