package config

import (
	"fmt"
	"os"

	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/mem/vm"
	"gopkg.in/yaml.v3"
)

// A Workload lists the processes to run.
type Workload struct {
	Processes []ProcessSpec `yaml:"processes"`
}

// A ProcessSpec describes one process.
type ProcessSpec struct {
	Name     string            `yaml:"name"`
	Priority int               `yaml:"priority"`
	Code     []InstructionSpec `yaml:"code"`
}

// An InstructionSpec is an instruction as written in a workload file, for
// example `{op: write, args: [100, 1, 20]}`.
type InstructionSpec struct {
	Op   string   `yaml:"op"`
	Args []uint32 `yaml:"args,flow"`
}

// Instructions converts the code of the process.
func (p ProcessSpec) Instructions() []kernel.Instruction {
	code := make([]kernel.Instruction, 0, len(p.Code))
	for _, inst := range p.Code {
		code = append(code, kernel.Instruction{
			Op:   kernel.Opcode(inst.Op),
			Args: inst.Args,
		})
	}

	return code
}

// LoadWorkload reads a workload file.
func LoadWorkload(path string) (Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Workload{}, err
	}

	return ParseWorkload(data)
}

// ParseWorkload decodes a workload. Every instruction must be valid.
func ParseWorkload(data []byte) (Workload, error) {
	var w Workload

	if err := yaml.Unmarshal(data, &w); err != nil {
		return Workload{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	for i, p := range w.Processes {
		if p.Name == "" {
			w.Processes[i].Name = fmt.Sprintf("p%d", i)
		}

		for j, inst := range p.Instructions() {
			if err := inst.Validate(); err != nil {
				return Workload{}, fmt.Errorf(
					"%w: process %d, instruction %d: %w",
					ErrInvalid, i, j, err)
			}
		}
	}

	return w, nil
}

// Validate checks the workload against the settings.
func (w Workload) Validate(c Config) error {
	if len(w.Processes) == 0 {
		return fmt.Errorf("%w: workload has no process", ErrInvalid)
	}

	// Processes get pids 1, 2, ... and share one TLB, whose tags hold 5 bits
	// of pid.
	if len(w.Processes) > vm.MaxPID {
		return fmt.Errorf("%w: %d processes, at most %d can share the tlb",
			ErrInvalid, len(w.Processes), vm.MaxPID)
	}

	perLevel := make(map[int]int)

	for i, p := range w.Processes {
		if c.MLQ && (p.Priority < 0 || p.Priority >= c.MaxPrio) {
			return fmt.Errorf("%w: process %d has priority %d, must be in [0, %d)",
				ErrInvalid, i, p.Priority, c.MaxPrio)
		}

		level := 0
		if c.MLQ {
			level = p.Priority
		}

		perLevel[level]++
		if perLevel[level] > c.MaxQueueSize {
			return fmt.Errorf("%w: more than %d processes at level %d",
				ErrInvalid, c.MaxQueueSize, level)
		}
	}

	return nil
}
