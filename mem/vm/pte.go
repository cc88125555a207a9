package vm

import "fmt"

// A PTE is a page-table entry. It records whether a virtual page is resident
// in a RAM frame, parked on a swap device, or not mapped at all.
//
// When the page is present, the low bits hold the frame number. When the page
// is swapped out, the same low bits hold the swap type and the swap offset.
type PTE uint32

// NewPTE packs the given fields into a page-table entry. Values wider than
// their field are truncated.
func NewPTE(
	present bool,
	fpn uint32,
	dirty bool,
	swapped bool,
	swpType uint32,
	swpOff uint32,
) PTE {
	var v uint32

	v = setBit(v, ptePresentBit, present)
	v = setBit(v, pteDirtyBit, dirty)

	if present {
		v = setField(v, fpn, pteFrameHiBit, pteFrameLoBit)
		return PTE(v)
	}

	if swapped {
		v = setBit(v, pteSwappedBit, true)
		v = setField(v, swpType, pteSwapTypeHiBit, pteSwapTypeLoBit)
		v = setField(v, swpOff, pteSwapOffsetHiBit, pteSwapOffsetLoBit)
	}

	return PTE(v)
}

// PresentPTE returns an entry mapping a page to the given RAM frame.
func PresentPTE(fpn uint32) PTE {
	return NewPTE(true, fpn, false, false, 0, 0)
}

// SwappedPTE returns an entry for a page that lives in the given swap slot.
func SwappedPTE(swpType, swpOff uint32) PTE {
	return NewPTE(false, 0, false, true, swpType, swpOff)
}

// Present tells if the page is resident in RAM.
func (p PTE) Present() bool {
	return getBit(uint32(p), ptePresentBit)
}

// Swapped tells if the page has been moved to a swap device.
func (p PTE) Swapped() bool {
	return getBit(uint32(p), pteSwappedBit)
}

// Reserved returns the reserved bit.
func (p PTE) Reserved() bool {
	return getBit(uint32(p), pteReservedBit)
}

// Dirty tells if the page has been written since it was brought in.
func (p PTE) Dirty() bool {
	return getBit(uint32(p), pteDirtyBit)
}

// Mapped tells if the entry refers to any backing storage.
func (p PTE) Mapped() bool {
	return p.Present() || p.Swapped()
}

// UserRegion returns the user region id.
func (p PTE) UserRegion() uint32 {
	return getField(uint32(p), pteUserRegionHiBit, pteUserRegionLoBit)
}

// FrameNumber returns the RAM frame. Only meaningful when Present.
func (p PTE) FrameNumber() uint32 {
	return getField(uint32(p), pteFrameHiBit, pteFrameLoBit)
}

// SwapType returns the swap device type. Only meaningful when Swapped.
func (p PTE) SwapType() uint32 {
	return getField(uint32(p), pteSwapTypeHiBit, pteSwapTypeLoBit)
}

// SwapOffset returns the slot on the swap device. Only meaningful when
// Swapped.
func (p PTE) SwapOffset() uint32 {
	return getField(uint32(p), pteSwapOffsetHiBit, pteSwapOffsetLoBit)
}

// WithFrame marks the page present in the given frame and clears the swap
// state.
func (p PTE) WithFrame(fpn uint32) PTE {
	v := uint32(p)
	if p.Swapped() {
		v = setField(v, 0, pteSwapOffsetHiBit, pteSwapOffsetLoBit)
	}

	v = setBit(v, ptePresentBit, true)
	v = setBit(v, pteSwappedBit, false)
	v = setField(v, fpn, pteFrameHiBit, pteFrameLoBit)

	return PTE(v)
}

// WithSwap marks the page as swapped out to the given slot.
func (p PTE) WithSwap(swpType, swpOff uint32) PTE {
	v := uint32(p)
	v = setBit(v, ptePresentBit, false)
	v = setBit(v, pteSwappedBit, true)
	v = setField(v, 0, pteFrameHiBit, pteFrameLoBit)
	v = setField(v, swpType, pteSwapTypeHiBit, pteSwapTypeLoBit)
	v = setField(v, swpOff, pteSwapOffsetHiBit, pteSwapOffsetLoBit)

	return PTE(v)
}

// WithDirty sets or clears the dirty bit.
func (p PTE) WithDirty(dirty bool) PTE {
	return PTE(setBit(uint32(p), pteDirtyBit, dirty))
}

// WithUserRegion sets the user region id.
func (p PTE) WithUserRegion(id uint32) PTE {
	return PTE(setField(uint32(p), id, pteUserRegionHiBit, pteUserRegionLoBit))
}

func (p PTE) String() string {
	switch {
	case p.Present():
		return fmt.Sprintf("PTE{present fpn=%d dirty=%t}",
			p.FrameNumber(), p.Dirty())
	case p.Swapped():
		return fmt.Sprintf("PTE{swapped type=%d off=%d}",
			p.SwapType(), p.SwapOffset())
	default:
		return "PTE{unmapped}"
	}
}
