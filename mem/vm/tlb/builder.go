package tlb

import (
	"log"

	"github.com/sarchlab/ossim/mem/storage"
	"github.com/sarchlab/ossim/mem/vm/tlb/internal"
)

// A Builder can build TLBs
type Builder struct {
	capacity uint64
	storage  *storage.Storage
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{
		capacity: 1024,
	}
}

// WithCapacity sets the number of bytes of the storage that backs the TLB.
// Every 16 bytes make one line.
func (b Builder) WithCapacity(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithStorage makes the TLB use an existing storage. The capacity of the
// storage overrides WithCapacity.
func (b Builder) WithStorage(s *storage.Storage) Builder {
	b.storage = s
	return b
}

// Build creates a new TLB
func (b Builder) Build(name string) *Cache {
	s := b.storage
	if s == nil {
		s = storage.NewStorage(b.capacity)
	}

	numLines := s.Capacity() / internal.LineSize
	if numLines == 0 {
		log.Panicf("tlb %s needs at least %d bytes, got %d",
			name, internal.LineSize, s.Capacity())
	}

	return &Cache{
		name:     name,
		storage:  s,
		numLines: numLines,
	}
}
