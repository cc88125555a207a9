package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PTE", func() {
	It("should place the flag bits", func() {
		pte := NewPTE(true, 0, true, false, 0, 0)

		Expect(uint32(pte)).To(Equal(uint32(1<<31 | 1<<28)))
	})

	It("should round trip present entries", func() {
		for _, fpn := range []uint32{0, 1, 42, 1 << 12, 1<<13 - 1} {
			for _, dirty := range []bool{false, true} {
				pte := NewPTE(true, fpn, dirty, false, 0, 0)

				Expect(pte.Present()).To(BeTrue())
				Expect(pte.Swapped()).To(BeFalse())
				Expect(pte.FrameNumber()).To(Equal(fpn))
				Expect(pte.Dirty()).To(Equal(dirty))
			}
		}
	})

	It("should round trip swapped entries", func() {
		for _, swpType := range []uint32{0, 3, 31} {
			for _, swpOff := range []uint32{0, 3, 1000, 1<<21 - 1} {
				pte := NewPTE(false, 0, false, true, swpType, swpOff)

				Expect(pte.Present()).To(BeFalse())
				Expect(pte.Swapped()).To(BeTrue())
				Expect(pte.SwapType()).To(Equal(swpType))
				Expect(pte.SwapOffset()).To(Equal(swpOff))
			}
		}
	})

	It("should truncate values wider than the field", func() {
		pte := NewPTE(true, 1<<13|5, false, false, 0, 0)

		Expect(pte.FrameNumber()).To(Equal(uint32(5)))
		Expect(pte.Dirty()).To(BeFalse())
	})

	It("should never be present and swapped at the same time", func() {
		pte := NewPTE(true, 7, false, true, 1, 2)

		Expect(pte.Present()).To(BeTrue())
		Expect(pte.Swapped()).To(BeFalse())
	})

	It("should move between present and swapped", func() {
		pte := PresentPTE(9).WithDirty(true)

		swapped := pte.WithSwap(0, 3)
		Expect(swapped.Present()).To(BeFalse())
		Expect(swapped.Swapped()).To(BeTrue())
		Expect(swapped.SwapOffset()).To(Equal(uint32(3)))
		Expect(swapped.Dirty()).To(BeTrue())

		back := swapped.WithFrame(11)
		Expect(back.Present()).To(BeTrue())
		Expect(back.Swapped()).To(BeFalse())
		Expect(back.FrameNumber()).To(Equal(uint32(11)))
		Expect(back.SwapOffset()).To(Equal(uint32(0)))
	})

	It("should keep the user region", func() {
		pte := PresentPTE(3).WithUserRegion(0x1abc)

		Expect(pte.UserRegion()).To(Equal(uint32(0x1abc)))
		Expect(pte.FrameNumber()).To(Equal(uint32(3)))
		Expect(pte.Present()).To(BeTrue())
	})

	It("should tell mapped entries", func() {
		Expect(PTE(0).Mapped()).To(BeFalse())
		Expect(PresentPTE(0).Mapped()).To(BeTrue())
		Expect(SwappedPTE(0, 0).Mapped()).To(BeTrue())
	})
})

var _ = Describe("VAddr", func() {
	It("should split offset and page number", func() {
		addr := VAddr(5<<8 | 0x2a)

		Expect(addr.Offset()).To(Equal(uint32(0x2a)))
		Expect(addr.PageNumber()).To(Equal(uint32(5)))
	})

	It("should ignore bits above the bus", func() {
		addr := VAddr(1<<22 | 3<<8)

		Expect(addr.PageNumber()).To(Equal(uint32(3)))
	})

	It("should align sizes to pages", func() {
		Expect(PageAlignUp(0)).To(Equal(uint64(0)))
		Expect(PageAlignUp(1)).To(Equal(uint64(256)))
		Expect(PageAlignUp(256)).To(Equal(uint64(256)))
		Expect(PageAlignUp(300)).To(Equal(uint64(512)))
		Expect(PageAlignUp(0xFFFFFFFF)).To(Equal(uint64(1) << 32))
	})

	It("should compute page spans", func() {
		first, last := PageSpan(250, 10)

		Expect(first).To(Equal(uint32(0)))
		Expect(last).To(Equal(uint32(1)))
	})
})
