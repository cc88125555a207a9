// Package memphy provides the frame-granular physical devices, RAM and swap,
// that back the virtual memory of processes.
package memphy

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sarchlab/ossim/mem/storage"
	"github.com/sarchlab/ossim/mem/vm"
)

var (
	// ErrNoFreeFrame is returned when every frame is in use.
	ErrNoFreeFrame = errors.New("no free frame")

	// ErrFrameOutOfRange is returned for a frame the device does not have.
	ErrFrameOutOfRange = errors.New("frame out of range")

	// ErrFrameNotInUse is returned when freeing a frame that is free.
	ErrFrameNotInUse = errors.New("frame is not in use")
)

// A Device is a byte-addressable memory split into page-sized frames. It
// keeps track of the frames that are free.
type Device struct {
	name    string
	lock    sync.Mutex
	storage *storage.Storage
	free    []uint32
	inUse   []bool
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// NumFrames returns the number of frames of the device.
func (d *Device) NumFrames() int {
	return len(d.inUse)
}

// NumFree returns the number of frames that are free.
func (d *Device) NumFree() int {
	d.lock.Lock()
	defer d.lock.Unlock()

	return len(d.free)
}

// GetFreeFrame takes the frame at the head of the free list. Frames are
// handed out in ascending order first, then in the order they are freed.
func (d *Device) GetFreeFrame() (uint32, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if len(d.free) == 0 {
		return 0, fmt.Errorf("%s: %w", d.name, ErrNoFreeFrame)
	}

	fpn := d.free[0]
	d.free = d.free[1:]
	d.inUse[fpn] = true

	return fpn, nil
}

// FreeFrame gives a frame back to the device.
func (d *Device) FreeFrame(fpn uint32) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if int(fpn) >= len(d.inUse) {
		return fmt.Errorf("%s: frame %d: %w", d.name, fpn, ErrFrameOutOfRange)
	}

	if !d.inUse[fpn] {
		return fmt.Errorf("%s: frame %d: %w", d.name, fpn, ErrFrameNotInUse)
	}

	d.inUse[fpn] = false
	d.free = append(d.free, fpn)

	return nil
}

// Read returns the byte at a physical address.
func (d *Device) Read(addr uint64) (byte, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.storage.Read(addr)
}

// Write stores a byte at a physical address.
func (d *Device) Write(addr uint64, v byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.storage.Write(addr, v)
}

// FrameAddr returns the physical address of a byte in a frame.
func FrameAddr(fpn, offset uint32) uint64 {
	return uint64(fpn)*vm.PageSize + uint64(offset)
}

// Dump lists the non-zero bytes of the device.
func (d *Device) Dump(w io.Writer) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.storage.Dump(w, d.name)
}
