// Package monitoring serves the state of a running simulation over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/mem/vm"
	"github.com/sarchlab/ossim/mem/vm/tlb"
	"github.com/sarchlab/ossim/monitoring/web"
	"github.com/sarchlab/ossim/sched"
	"github.com/sarchlab/ossim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor turns a simulation into a server that reports the processes, the
// scheduler, and the TLBs.
type Monitor struct {
	portNumber int
	server     *http.Server

	components *sim.Simulation

	lock      sync.Mutex
	caches    []*tlb.Cache
	scheduler *sched.Scheduler
	processes []*kernel.Process

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{components: sim.NewSimulation()}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterComponent registers a component whose fields can be inspected.
// Names must be unique.
func (m *Monitor) RegisterComponent(c sim.Named) {
	m.components.RegisterComponent(c)
}

// RegisterTLB registers a TLB cache. Its storage can be dumped.
func (m *Monitor) RegisterTLB(c *tlb.Cache) {
	m.RegisterComponent(c)

	m.lock.Lock()
	defer m.lock.Unlock()

	m.caches = append(m.caches, c)
}

// RegisterScheduler registers the scheduler.
func (m *Monitor) RegisterScheduler(s *sched.Scheduler) {
	m.RegisterComponent(s)

	m.lock.Lock()
	defer m.lock.Unlock()

	m.scheduler = s
}

// RegisterProcess registers a process whose statistics are reported.
func (m *Monitor) RegisterProcess(p *kernel.Process) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.processes = append(m.processes, p)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/stats", m.listStats)
	r.HandleFunc("/api/sched", m.listLevels)
	r.HandleFunc("/api/tlb/{name}", m.dumpTLB)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(web.Handler())

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != http.ErrServerClosed {
			dieOnErr(err)
		}
	}()

	return url
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	components := m.components.Components()

	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type processStats struct {
	PID      vm.PID `json:"pid"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Ended    bool   `json:"ended"`
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	procs := make([]*kernel.Process, len(m.processes))
	copy(procs, m.processes)
	m.lock.Unlock()

	stats := make([]processStats, 0, len(procs))
	for _, p := range procs {
		stats = append(stats, processStats{
			PID:      p.PID,
			Name:     p.Name,
			Priority: p.Priority,
			Hits:     p.Stats.Hits(),
			Misses:   p.Stats.Misses(),
			Ended:    p.Released(),
		})
	}

	writeJSON(w, stats)
}

type levelRsp struct {
	Priority int `json:"priority"`
	Size     int `json:"size"`
	Slot     int `json:"slot"`
}

func (m *Monitor) listLevels(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	s := m.scheduler
	m.lock.Unlock()

	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Scheduler not registered")

		return
	}

	levels := []levelRsp{}
	for _, l := range s.Levels() {
		levels = append(levels, levelRsp(l))
	}

	writeJSON(w, levels)
}

func (m *Monitor) dumpTLB(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var cache *tlb.Cache

	m.lock.Lock()
	for _, c := range m.caches {
		if c.Name() == name {
			cache = c
		}
	}
	m.lock.Unlock()

	if cache == nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "TLB not found")

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	err := cache.BinDump(w)
	dieOnErr(err)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Named {
	if c := m.components.GetComponentByName(name); c != nil {
		return c
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
