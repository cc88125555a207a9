// Package internal provides the layout of a TLB line inside the byte storage.
package internal

import (
	"github.com/sarchlab/ossim/mem/storage"
	"github.com/sarchlab/ossim/mem/vm"
)

// Layout of a line. A line holds NumWays ways. The first word of a way is the
// header and the second word is the shadow PTE.
const (
	NumWays  = 2
	WaySize  = 2 * storage.WordSize
	LineSize = NumWays * WaySize

	headerValidBit   = 31
	headerRecencyBit = 30
	headerTagMask    = 1<<vm.TagBits - 1
)

// A Header is the first word of a way.
type Header uint32

// NewHeader returns a valid header that holds tag.
func NewHeader(tag vm.TLBTag) Header {
	return Header(1<<headerValidBit | uint32(tag)&headerTagMask)
}

// Valid tells if the way holds a translation.
func (h Header) Valid() bool {
	return h&(1<<headerValidBit) != 0
}

// Recent tells if the way is the most recently used one of its line.
func (h Header) Recent() bool {
	return h&(1<<headerRecencyBit) != 0
}

// Tag returns the tag stored in the way.
func (h Header) Tag() vm.TLBTag {
	return vm.TLBTag(uint32(h) & headerTagMask)
}

// WithRecent sets or clears the recency bit.
func (h Header) WithRecent(recent bool) Header {
	if recent {
		return h | 1<<headerRecencyBit
	}

	return h &^ (1 << headerRecencyBit)
}

// A Line gives structured access to one line of the storage.
type Line struct {
	storage *storage.Storage
	base    uint64
}

// NewLine returns the line with the given index.
func NewLine(s *storage.Storage, index uint64) Line {
	return Line{storage: s, base: index * LineSize}
}

func (l Line) wayAddr(way int) uint64 {
	return l.base + uint64(way)*WaySize
}

// Header reads the header of a way.
func (l Line) Header(way int) (Header, error) {
	w, err := l.storage.ReadWord(l.wayAddr(way))
	return Header(w), err
}

// SetHeader writes the header of a way.
func (l Line) SetHeader(way int, h Header) error {
	return l.storage.WriteWord(l.wayAddr(way), uint32(h))
}

// PTE reads the shadow PTE of a way.
func (l Line) PTE(way int) (vm.PTE, error) {
	w, err := l.storage.ReadWord(l.wayAddr(way) + storage.WordSize)
	return vm.PTE(w), err
}

// SetPTE writes the shadow PTE of a way.
func (l Line) SetPTE(way int, pte vm.PTE) error {
	return l.storage.WriteWord(l.wayAddr(way)+storage.WordSize, uint32(pte))
}

// Clear zeros both words of a way.
func (l Line) Clear(way int) error {
	if err := l.SetHeader(way, 0); err != nil {
		return err
	}

	return l.SetPTE(way, 0)
}

// Touch makes way the most recently used way of the line.
func (l Line) Touch(way int) error {
	for w := 0; w < NumWays; w++ {
		h, err := l.Header(w)
		if err != nil {
			return err
		}

		if err := l.SetHeader(w, h.WithRecent(w == way)); err != nil {
			return err
		}
	}

	return nil
}
