// Package config loads the settings of a simulation from the environment and
// the processes to run from a workload file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/ossim/mem/vm"
)

// ErrInvalid is returned for settings that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Environment variables read by Load.
const (
	EnvTLBSize      = "OSSIM_TLB_SIZE"
	EnvRAMSize      = "OSSIM_RAM_SIZE"
	EnvSwapSize     = "OSSIM_SWAP_SIZE"
	EnvMaxPrio      = "OSSIM_MAX_PRIO"
	EnvMaxQueueSize = "OSSIM_MAX_QUEUE_SIZE"
	EnvMLQ          = "OSSIM_MLQ"
	EnvNumCPU       = "OSSIM_NUM_CPU"
	EnvTimeSlice    = "OSSIM_TIME_SLICE"
	EnvRecordDB     = "OSSIM_RECORD_DB"
	EnvMonitorPort  = "OSSIM_MONITOR_PORT"
	EnvOpenBrowser  = "OSSIM_OPEN_BROWSER"
	EnvIODump       = "OSSIM_IODUMP"
)

// Config holds the settings of a simulation.
type Config struct {
	TLBSize      uint64
	RAMSize      uint64
	SwapSize     uint64
	MaxPrio      int
	MaxQueueSize int
	MLQ          bool
	NumCPU       int
	TimeSlice    int

	// RecordDB is the path of the SQLite database, without the extension.
	// Recording is off if empty.
	RecordDB string

	// MonitorPort enables the monitor if positive.
	MonitorPort int
	OpenBrowser bool
	IODump      bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		TLBSize:      1024,
		RAMSize:      1 << 20,
		SwapSize:     1 << 24,
		MaxPrio:      140,
		MaxQueueSize: 10,
		MLQ:          true,
		NumCPU:       1,
		TimeSlice:    2,
	}
}

// Load reads the OSSIM_* variables on top of the defaults. If envFile is not
// empty, its variables are loaded first. Variables that are already set in
// the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	c := Default()
	p := envParser{}

	p.parseUint64(EnvTLBSize, &c.TLBSize)
	p.parseUint64(EnvRAMSize, &c.RAMSize)
	p.parseUint64(EnvSwapSize, &c.SwapSize)
	p.parseInt(EnvMaxPrio, &c.MaxPrio)
	p.parseInt(EnvMaxQueueSize, &c.MaxQueueSize)
	p.parseBool(EnvMLQ, &c.MLQ)
	p.parseInt(EnvNumCPU, &c.NumCPU)
	p.parseInt(EnvTimeSlice, &c.TimeSlice)
	p.parseString(EnvRecordDB, &c.RecordDB)
	p.parseInt(EnvMonitorPort, &c.MonitorPort)
	p.parseBool(EnvOpenBrowser, &c.OpenBrowser)
	p.parseBool(EnvIODump, &c.IODump)

	if p.err != nil {
		return Config{}, p.err
	}

	return c, c.Validate()
}

// Validate checks that the settings can build a simulation.
func (c Config) Validate() error {
	switch {
	case c.TLBSize < 16:
		return fmt.Errorf("%w: tlb size %d cannot hold a line",
			ErrInvalid, c.TLBSize)
	case c.RAMSize < 256:
		return fmt.Errorf("%w: ram size %d cannot hold a frame",
			ErrInvalid, c.RAMSize)
	case c.RAMSize > vm.MaxFrames*vm.PageSize:
		return fmt.Errorf("%w: ram size %d exceeds the %d frames a pte can map",
			ErrInvalid, c.RAMSize, vm.MaxFrames)
	case c.SwapSize < 256:
		return fmt.Errorf("%w: swap size %d cannot hold a frame",
			ErrInvalid, c.SwapSize)
	case c.SwapSize > vm.MaxSwapSlots*vm.PageSize:
		return fmt.Errorf("%w: swap size %d exceeds the %d slots a pte can map",
			ErrInvalid, c.SwapSize, vm.MaxSwapSlots)
	case c.MaxPrio <= 0:
		return fmt.Errorf("%w: max prio %d", ErrInvalid, c.MaxPrio)
	case c.MaxQueueSize <= 0:
		return fmt.Errorf("%w: max queue size %d", ErrInvalid, c.MaxQueueSize)
	case c.NumCPU <= 0:
		return fmt.Errorf("%w: %d cpus", ErrInvalid, c.NumCPU)
	case c.TimeSlice <= 0:
		return fmt.Errorf("%w: time slice %d", ErrInvalid, c.TimeSlice)
	}

	return nil
}

type envParser struct {
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}

	value, ok := os.LookupEnv(key)

	return value, ok && value != ""
}

func (p *envParser) fail(key, value string, err error) {
	p.err = fmt.Errorf("%w: %s=%q: %w", ErrInvalid, key, value, err)
}

func (p *envParser) parseUint64(key string, dst *uint64) {
	value, ok := p.lookup(key)
	if !ok {
		return
	}

	v, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		p.fail(key, value, err)
		return
	}

	*dst = v
}

func (p *envParser) parseInt(key string, dst *int) {
	value, ok := p.lookup(key)
	if !ok {
		return
	}

	v, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return
	}

	*dst = v
}

func (p *envParser) parseBool(key string, dst *bool) {
	value, ok := p.lookup(key)
	if !ok {
		return
	}

	v, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
		return
	}

	*dst = v
}

func (p *envParser) parseString(key string, dst *string) {
	value, ok := p.lookup(key)
	if !ok {
		return
	}

	*dst = value
}
