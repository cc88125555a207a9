package vm

// VAddr is a virtual address on the CPU bus.
type VAddr uint32

// Offset returns the byte offset within the page.
func (a VAddr) Offset() uint32 {
	return getField(uint32(a), addrOffsetHiBit, addrOffsetLoBit)
}

// PageNumber returns the virtual page number.
func (a VAddr) PageNumber() uint32 {
	return getField(uint32(a), addrPageHiBit, addrPageLoBit)
}

// PageAlignUp rounds size up to a whole number of pages. The result is wide
// enough for sizes close to the uint32 limit.
func PageAlignUp(size uint32) uint64 {
	return (uint64(size) + PageSize - 1) / PageSize * PageSize
}

// PageSpan returns the first and the last page number touched by the byte
// range [start, start+size). Size must be positive.
func PageSpan(start, size uint32) (first, last uint32) {
	first = VAddr(start).PageNumber()
	last = VAddr(start + size - 1).PageNumber()

	return first, last
}
