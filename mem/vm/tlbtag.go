package vm

import "log"

// PID stands for Process ID.
type PID uint32

// A TLBTag identifies one virtual page of one process across a whole TLB.
type TLBTag uint32

// NewTLBTag builds the tag of a process page. The pid is limited to 5 bits
// and the page number to 14 bits. Wider values panic, since a truncated tag
// would match the page of another process.
func NewTLBTag(pid PID, pgn uint32) TLBTag {
	if pid > MaxPID || pgn >= MaxPageNumber {
		log.Panicf("pid %d page %d does not fit a tlb tag", pid, pgn)
	}

	v := setField(0, uint32(pid), tagPageBits+tagPIDBits-1, tagPageBits)
	v = setField(v, pgn, tagPageBits-1, 0)

	return TLBTag(v)
}

// PID returns the owning process.
func (t TLBTag) PID() PID {
	return PID(getField(uint32(t), tagPageBits+tagPIDBits-1, tagPageBits))
}

// PageNumber returns the virtual page number.
func (t TLBTag) PageNumber() uint32 {
	return getField(uint32(t), tagPageBits-1, 0)
}

// A TLBSummary is the compacted one-word description of a translation:
// valid, pid, page number, and frame number. It is always a full 32-bit word.
type TLBSummary uint32

// NewTLBSummary packs a summary word.
func NewTLBSummary(valid bool, pid PID, pgn, fpn uint32) TLBSummary {
	var v uint32

	v = setBit(v, summaryValidBit, valid)
	v = setField(v, uint32(pid), summaryPIDHiBit, summaryPIDLoBit)
	v = setField(v, pgn, summaryPageHiBit, summaryPageLoBit)
	v = setField(v, fpn, summaryFrameHiBit, summaryFrameLoBit)

	return TLBSummary(v)
}

// Valid returns the valid bit.
func (s TLBSummary) Valid() bool {
	return getBit(uint32(s), summaryValidBit)
}

// PID returns the process id.
func (s TLBSummary) PID() PID {
	return PID(getField(uint32(s), summaryPIDHiBit, summaryPIDLoBit))
}

// PageNumber returns the page number.
func (s TLBSummary) PageNumber() uint32 {
	return getField(uint32(s), summaryPageHiBit, summaryPageLoBit)
}

// FrameNumber returns the frame number.
func (s TLBSummary) FrameNumber() uint32 {
	return getField(uint32(s), summaryFrameHiBit, summaryFrameLoBit)
}
