package memphy

import (
	"log"

	"github.com/sarchlab/ossim/mem/storage"
	"github.com/sarchlab/ossim/mem/vm"
)

// Builder can build devices.
type Builder struct {
	capacity uint64
}

// MakeBuilder creates a builder of 1 MiB devices.
func MakeBuilder() Builder {
	return Builder{
		capacity: 1 << 20,
	}
}

// WithCapacity sets the size of the device in bytes. It is rounded down to
// whole frames.
func (b Builder) WithCapacity(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// Build creates a device with every frame free.
func (b Builder) Build(name string) *Device {
	numFrames := b.capacity / vm.PageSize
	if numFrames == 0 {
		log.Panicf("device %s cannot hold a single frame", name)
	}

	d := &Device{
		name:    name,
		storage: storage.NewStorage(numFrames * vm.PageSize),
		free:    make([]uint32, numFrames),
		inUse:   make([]bool, numFrames),
	}

	for i := range d.free {
		d.free[i] = uint32(i)
	}

	return d
}
