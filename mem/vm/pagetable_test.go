package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PageTable", func() {
	var pt *PageTable

	BeforeEach(func() {
		pt = NewPageTable(16)
	})

	It("should start unmapped", func() {
		Expect(pt.Len()).To(Equal(16))
		Expect(pt.Get(3).Mapped()).To(BeFalse())
	})

	It("should set and get", func() {
		pt.Set(3, PresentPTE(42))

		Expect(pt.Get(3).FrameNumber()).To(Equal(uint32(42)))
	})

	It("should panic when the page is out of range", func() {
		Expect(func() { pt.Get(16) }).To(Panic())
	})

	It("should walk a page range", func() {
		pt.Set(1, PresentPTE(7))
		pt.Set(2, SwappedPTE(0, 3))

		visited := []uint32{}
		pt.Walk(1, 20, func(pgn uint32, pte PTE) {
			if pte.Mapped() {
				visited = append(visited, pgn)
			}
		})

		Expect(visited).To(Equal([]uint32{1, 2}))
	})
})

var _ = Describe("Area", func() {
	It("should compute the last page", func() {
		Expect(Area{End: 0}.LastPage()).To(Equal(uint32(0)))
		Expect(Area{End: 256}.LastPage()).To(Equal(uint32(0)))
		Expect(Area{End: 257}.LastPage()).To(Equal(uint32(1)))
	})

	It("should create an address space with one area", func() {
		as := NewAddressSpace(10)

		Expect(as.Areas).To(HaveLen(1))
		Expect(as.Regions).To(HaveLen(10))
		Expect(as.PageTable.Len()).To(Equal(MaxPageNumber))
	})
})
