package memphy_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ossim/mem/memphy"
	"github.com/sarchlab/ossim/mem/storage"
)

var _ = Describe("Device", func() {
	var d *memphy.Device

	BeforeEach(func() {
		d = memphy.MakeBuilder().WithCapacity(4*256 + 10).Build("RAM")
	})

	It("should split the capacity into frames", func() {
		Expect(d.Name()).To(Equal("RAM"))
		Expect(d.NumFrames()).To(Equal(4))
		Expect(d.NumFree()).To(Equal(4))
	})

	It("should panic if no frame fits", func() {
		Expect(func() {
			memphy.MakeBuilder().WithCapacity(255).Build("RAM")
		}).To(Panic())
	})

	It("should hand out frames in order", func() {
		for i := uint32(0); i < 4; i++ {
			fpn, err := d.GetFreeFrame()
			Expect(err).NotTo(HaveOccurred())
			Expect(fpn).To(Equal(i))
		}

		_, err := d.GetFreeFrame()
		Expect(err).To(MatchError(memphy.ErrNoFreeFrame))
	})

	It("should reuse freed frames", func() {
		for i := 0; i < 4; i++ {
			_, _ = d.GetFreeFrame()
		}

		Expect(d.FreeFrame(2)).To(Succeed())
		Expect(d.NumFree()).To(Equal(1))

		fpn, err := d.GetFreeFrame()
		Expect(err).NotTo(HaveOccurred())
		Expect(fpn).To(Equal(uint32(2)))
	})

	It("should reject bad frees", func() {
		Expect(d.FreeFrame(9)).To(MatchError(memphy.ErrFrameOutOfRange))
		Expect(d.FreeFrame(1)).To(MatchError(memphy.ErrFrameNotInUse))
	})

	It("should read and write bytes", func() {
		addr := memphy.FrameAddr(3, 7)
		Expect(addr).To(Equal(uint64(3*256 + 7)))

		Expect(d.Write(addr, 42)).To(Succeed())

		v, err := d.Read(addr)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(byte(42)))

		_, err = d.Read(memphy.FrameAddr(4, 0))
		Expect(err).To(MatchError(storage.ErrAddressOutOfRange))
	})

	It("should dump", func() {
		_ = d.Write(5, 1)
		buf := new(bytes.Buffer)

		Expect(d.Dump(buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("BYTE 00000005: 1"))
	})
})
