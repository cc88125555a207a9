package cpu

import (
	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/mem/vm"
)

// A MemoryManager owns the authoritative page tables and regions. It places
// regions, assigns frames, and handles page faults and swapping.
type MemoryManager interface {
	// Alloc reserves size bytes for a region in an area and returns the
	// start address.
	Alloc(p *kernel.Process, areaID int, regionID, size uint32) (uint32, error)

	// Free releases a region.
	Free(p *kernel.Process, areaID int, regionID uint32) error

	// Read returns the byte at offset in a region.
	Read(p *kernel.Process, areaID int, regionID, offset uint32) (byte, error)

	// Write stores value at offset in a region.
	Write(
		p *kernel.Process,
		areaID int,
		regionID, offset uint32,
		value byte,
	) error

	// Region returns the address range of a region.
	Region(p *kernel.Process, regionID uint32) (vm.Region, error)

	// Area returns a virtual memory area by index.
	Area(p *kernel.Process, areaID int) (vm.Area, error)
}
