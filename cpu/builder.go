package cpu

import (
	"io"
	"log"
	"os"
)

// A Builder can build TLB front ends.
type Builder struct {
	mm         MemoryManager
	dumpWriter io.Writer
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{}
}

// WithMemoryManager sets the layer that owns page tables and regions.
func (b Builder) WithMemoryManager(mm MemoryManager) Builder {
	b.mm = mm
	return b
}

// WithDumpWriter makes the TLB report hits and misses and dump the TLB
// storage to w. Builds with the iodump tag report to stdout by default.
func (b Builder) WithDumpWriter(w io.Writer) Builder {
	b.dumpWriter = w
	return b
}

// Build creates a new TLB front end.
func (b Builder) Build(name string) *TLB {
	if b.mm == nil {
		log.Panicf("tlb %s needs a memory manager", name)
	}

	t := &TLB{
		name:       name,
		mm:         b.mm,
		dumpWriter: b.dumpWriter,
	}

	if t.dumpWriter == nil && IODump {
		t.dumpWriter = os.Stdout
	}

	return t
}
