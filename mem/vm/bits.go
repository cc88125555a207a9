package vm

// Bit layout of a page-table entry.
const (
	ptePresentBit  = 31
	pteSwappedBit  = 30
	pteReservedBit = 29
	pteDirtyBit    = 28

	pteUserRegionLoBit = 15
	pteUserRegionHiBit = 27

	pteFrameLoBit = 0
	pteFrameHiBit = 12

	pteSwapTypeLoBit = 0
	pteSwapTypeHiBit = 4

	pteSwapOffsetLoBit = 5
	pteSwapOffsetHiBit = 25
)

// Bit layout of a virtual address on the 22-bit CPU bus.
const (
	// BusWidth is the number of address bits the CPU can drive.
	BusWidth = 22

	// Log2PageSize is the number of offset bits in a virtual address.
	Log2PageSize = 8

	// PageSize is the size of a page and of a physical frame in bytes.
	PageSize = 1 << Log2PageSize

	// MaxPageNumber is the number of virtual pages a process can address.
	MaxPageNumber = 1 << (BusWidth - Log2PageSize)

	addrOffsetLoBit = 0
	addrOffsetHiBit = Log2PageSize - 1
	addrPageLoBit   = Log2PageSize
	addrPageHiBit   = BusWidth - 1
)

// Bit layout of a TLB tag.
const (
	tagPageBits = 14
	tagPIDBits  = 5

	// TagBits is the width of a TLB tag.
	TagBits = 30
)

// Largest values of the numbered fields.
const (
	// MaxPID is the largest pid that a TLB tag can hold.
	MaxPID = 1<<tagPIDBits - 1

	// MaxFrames is the number of RAM frames that a PTE can address.
	MaxFrames = 1 << (pteFrameHiBit - pteFrameLoBit + 1)

	// MaxSwapSlots is the number of swap slots that a PTE can address.
	MaxSwapSlots = 1 << (pteSwapOffsetHiBit - pteSwapOffsetLoBit + 1)
)

// Bit layout of a compacted TLB summary word.
const (
	summaryValidBit   = 31
	summaryPIDLoBit   = 26
	summaryPIDHiBit   = 30
	summaryPageLoBit  = 12
	summaryPageHiBit  = 25
	summaryFrameLoBit = 0
	summaryFrameHiBit = 11
)

// genMask returns a mask with bits lo..hi (inclusive) set.
func genMask(hi, lo uint) uint32 {
	return (^uint32(0) >> (31 - hi)) &^ ((uint32(1) << lo) - 1)
}

func getField(v uint32, hi, lo uint) uint32 {
	return (v & genMask(hi, lo)) >> lo
}

func setField(v, value uint32, hi, lo uint) uint32 {
	mask := genMask(hi, lo)
	return (v &^ mask) | ((value << lo) & mask)
}

func getBit(v uint32, bit uint) bool {
	return v&(1<<bit) != 0
}

func setBit(v uint32, bit uint, on bool) uint32 {
	if on {
		return v | (1 << bit)
	}

	return v &^ (1 << bit)
}
