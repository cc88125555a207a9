package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TLBTag", func() {
	It("should concatenate pid and page number", func() {
		tag := NewTLBTag(3, 5)

		Expect(uint32(tag)).To(Equal(uint32(3<<14 | 5)))
		Expect(tag.PID()).To(Equal(PID(3)))
		Expect(tag.PageNumber()).To(Equal(uint32(5)))
	})

	It("should be injective over the pid and page space", func() {
		seen := make(map[TLBTag]bool, 32*MaxPageNumber)

		for pid := PID(0); pid < 32; pid++ {
			for pgn := uint32(0); pgn < MaxPageNumber; pgn++ {
				seen[NewTLBTag(pid, pgn)] = true
			}
		}

		Expect(seen).To(HaveLen(32 * MaxPageNumber))
	})

	It("should fit in 30 bits", func() {
		tag := NewTLBTag(MaxPID, MaxPageNumber-1)

		Expect(uint32(tag) >> TagBits).To(BeZero())
	})

	It("should refuse a pid wider than 5 bits", func() {
		Expect(func() { NewTLBTag(MaxPID+1, 5) }).To(Panic())
		Expect(func() { NewTLBTag(33, 5) }).To(Panic())
	})

	It("should refuse a page number wider than 14 bits", func() {
		Expect(func() { NewTLBTag(1, MaxPageNumber) }).To(Panic())
	})
})

var _ = Describe("TLBSummary", func() {
	It("should decode a full word", func() {
		word := TLBSummary(1<<31 | 21<<26 | 0x2345<<12 | 0xabc)

		Expect(word.Valid()).To(BeTrue())
		Expect(word.PID()).To(Equal(PID(21)))
		Expect(word.PageNumber()).To(Equal(uint32(0x2345)))
		Expect(word.FrameNumber()).To(Equal(uint32(0xabc)))
	})

	It("should round trip", func() {
		s := NewTLBSummary(true, 7, 1000, 4000)

		Expect(s.Valid()).To(BeTrue())
		Expect(s.PID()).To(Equal(PID(7)))
		Expect(s.PageNumber()).To(Equal(uint32(1000)))
		Expect(s.FrameNumber()).To(Equal(uint32(4000)))
	})
})
