// Package mm provides a reference memory manager that places the regions of
// a process in its first area and backs every page with a RAM frame.
package mm

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/mem/memphy"
	"github.com/sarchlab/ossim/mem/vm"
)

// MaxRegions is the number of symbol regions of a process.
const MaxRegions = 30

var (
	// ErrOutOfMemory is returned when the area or the RAM cannot grow.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrInvalidRegion is returned for a region id the process does not
	// have.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrInvalidArea is returned for an area id the process does not have.
	ErrInvalidArea = errors.New("invalid area")

	// ErrSegmentationFault is returned when an access falls outside of its
	// region.
	ErrSegmentationFault = errors.New("segmentation fault")

	// ErrPageNotPresent is returned when a page is not in RAM.
	ErrPageNotPresent = errors.New("page not present")
)

// Manager grows areas by whole pages and maps each new page to a free RAM
// frame. Freed regions are kept on the free list of their area and reused
// first fit; their frames stay mapped until the process ends.
type Manager struct {
	lock   sync.Mutex
	ram    *memphy.Device
	logger *log.Logger
}

// NewManager creates a manager that takes frames from ram.
func NewManager(ram *memphy.Device, logger *log.Logger) *Manager {
	return &Manager{
		ram:    ram,
		logger: logger,
	}
}

// NewProcess creates a process whose memory is managed by m.
func (m *Manager) NewProcess(
	pid vm.PID,
	priority int,
	swap kernel.FrameDevice,
) *kernel.Process {
	return &kernel.Process{
		PID:      pid,
		Priority: priority,
		Space:    vm.NewAddressSpace(MaxRegions),
		RAM:      m.ram,
		Swap:     swap,
	}
}

// Alloc reserves size bytes for a region and returns the start address. If
// the RAM runs out, nothing is changed.
func (m *Manager) Alloc(
	p *kernel.Process,
	areaID int,
	regionID, size uint32,
) (uint32, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	area, err := m.area(p, areaID)
	if err != nil {
		return 0, err
	}

	if _, err := m.region(p, regionID); err != nil {
		return 0, err
	}

	start, ok := m.takeFree(area, size)
	if !ok {
		start, err = m.grow(p, area, size)
		if err != nil {
			return 0, err
		}
	}

	p.Space.Regions[regionID] = vm.Region{Start: start, End: start + size}
	m.logf("process %d: region %d allocated at [%d, %d)",
		p.PID, regionID, start, start+size)

	return start, nil
}

func (m *Manager) takeFree(area *vm.Area, size uint32) (uint32, bool) {
	for i, r := range area.FreeList {
		if r.End-r.Start < size {
			continue
		}

		start := r.Start
		if r.End-r.Start == size {
			area.FreeList = append(area.FreeList[:i], area.FreeList[i+1:]...)
		} else {
			area.FreeList[i].Start += size
		}

		return start, true
	}

	return 0, false
}

func (m *Manager) grow(
	p *kernel.Process,
	area *vm.Area,
	size uint32,
) (uint32, error) {
	start := area.Break
	aligned := vm.PageAlignUp(size)

	if uint64(start)+aligned > uint64(vm.MaxPageNumber)*vm.PageSize {
		return 0, fmt.Errorf("growing area %d of process %d by %d: %w",
			area.ID, p.PID, aligned, ErrOutOfMemory)
	}

	newBreak := start + uint32(aligned)
	firstPage := start / vm.PageSize
	numPages := uint32(aligned / vm.PageSize)
	frames := make([]uint32, 0, numPages)

	for i := uint32(0); i < numPages; i++ {
		fpn, err := m.ram.GetFreeFrame()
		if err != nil {
			m.giveBack(frames)
			return 0, fmt.Errorf("mapping page %d of process %d: %w: %w",
				firstPage+i, p.PID, ErrOutOfMemory, err)
		}

		frames = append(frames, fpn)

		if fpn >= vm.MaxFrames {
			m.giveBack(frames)
			return 0, fmt.Errorf("mapping page %d of process %d to frame %d: %w",
				firstPage+i, p.PID, fpn, ErrOutOfMemory)
		}
	}

	for i, fpn := range frames {
		p.Space.PageTable.Set(firstPage+uint32(i), vm.PresentPTE(fpn))
	}

	area.Break = newBreak
	area.End = newBreak

	if aligned > uint64(size) {
		area.FreeList = append(area.FreeList,
			vm.Region{Start: start + size, End: newBreak})
	}

	return start, nil
}

func (m *Manager) giveBack(frames []uint32) {
	for _, fpn := range frames {
		if err := m.ram.FreeFrame(fpn); err != nil {
			log.Panicf("returning frame %d: %v", fpn, err)
		}
	}
}

// Free puts the range of a region on the free list of the area. Freeing an
// empty region does nothing.
func (m *Manager) Free(p *kernel.Process, areaID int, regionID uint32) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	area, err := m.area(p, areaID)
	if err != nil {
		return err
	}

	r, err := m.region(p, regionID)
	if err != nil {
		return err
	}

	if r.Empty() {
		return nil
	}

	area.FreeList = append(area.FreeList, r)
	p.Space.Regions[regionID] = vm.Region{}
	m.logf("process %d: region %d freed", p.PID, regionID)

	return nil
}

// Read returns the byte at offset in a region.
func (m *Manager) Read(
	p *kernel.Process,
	areaID int,
	regionID, offset uint32,
) (byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	addr, pte, err := m.translate(p, areaID, regionID, offset)
	if err != nil {
		return 0, err
	}

	return m.ram.Read(memphy.FrameAddr(pte.FrameNumber(), addr.Offset()))
}

// Write stores value at offset in a region and marks the page dirty.
func (m *Manager) Write(
	p *kernel.Process,
	areaID int,
	regionID, offset uint32,
	value byte,
) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	addr, pte, err := m.translate(p, areaID, regionID, offset)
	if err != nil {
		return err
	}

	err = m.ram.Write(memphy.FrameAddr(pte.FrameNumber(), addr.Offset()), value)
	if err != nil {
		return err
	}

	p.Space.PageTable.Set(addr.PageNumber(), pte.WithDirty(true))

	return nil
}

func (m *Manager) translate(
	p *kernel.Process,
	areaID int,
	regionID, offset uint32,
) (vm.VAddr, vm.PTE, error) {
	if _, err := m.area(p, areaID); err != nil {
		return 0, 0, err
	}

	r, err := m.region(p, regionID)
	if err != nil {
		return 0, 0, err
	}

	if offset >= r.End-r.Start || r.Empty() {
		return 0, 0, fmt.Errorf("offset %d of region %d of process %d: %w",
			offset, regionID, p.PID, ErrSegmentationFault)
	}

	addr := vm.VAddr(r.Start + offset)

	pte := p.Space.PageTable.Get(addr.PageNumber())
	if !pte.Present() {
		return 0, 0, fmt.Errorf("page %d of process %d: %w",
			addr.PageNumber(), p.PID, ErrPageNotPresent)
	}

	return addr, pte, nil
}

// Region returns the address range of a region.
func (m *Manager) Region(p *kernel.Process, regionID uint32) (vm.Region, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.region(p, regionID)
}

// Area returns a copy of an area.
func (m *Manager) Area(p *kernel.Process, areaID int) (vm.Area, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	area, err := m.area(p, areaID)
	if err != nil {
		return vm.Area{}, err
	}

	return *area, nil
}

func (m *Manager) region(p *kernel.Process, regionID uint32) (vm.Region, error) {
	if int(regionID) >= len(p.Space.Regions) {
		return vm.Region{}, fmt.Errorf("region %d of process %d: %w",
			regionID, p.PID, ErrInvalidRegion)
	}

	return p.Space.Regions[regionID], nil
}

func (m *Manager) area(p *kernel.Process, areaID int) (*vm.Area, error) {
	if areaID < 0 || areaID >= len(p.Space.Areas) {
		return nil, fmt.Errorf("area %d of process %d: %w",
			areaID, p.PID, ErrInvalidArea)
	}

	return &p.Space.Areas[areaID], nil
}

func (m *Manager) logf(format string, args ...interface{}) {
	if m.logger == nil {
		return
	}

	m.logger.Printf(format, args...)
}
