package storage_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ossim/mem/storage"
)

var _ = Describe("Storage", func() {
	var s *storage.Storage

	BeforeEach(func() {
		s = storage.NewStorage(64)
	})

	It("should be zero filled", func() {
		for addr := uint64(0); addr < 64; addr++ {
			b, err := s.Read(addr)
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeZero())
		}
	})

	It("should read and write bytes", func() {
		Expect(s.Write(10, 0xab)).To(Succeed())

		b, err := s.Read(10)
		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(Equal(byte(0xab)))
	})

	It("should return error if accessing over the capacity", func() {
		err := s.Write(64, 1)
		Expect(err).To(MatchError(storage.ErrAddressOutOfRange))

		_, err = s.Read(64)
		Expect(err).To(MatchError(storage.ErrAddressOutOfRange))
	})

	It("should return error on nil storage", func() {
		var nilStorage *storage.Storage

		_, err := nilStorage.Read(0)
		Expect(err).To(MatchError(storage.ErrNilStorage))
		Expect(nilStorage.Write(0, 1)).To(MatchError(storage.ErrNilStorage))
		Expect(nilStorage.Capacity()).To(BeZero())
	})

	It("should store words big-endian", func() {
		Expect(s.WriteWord(8, 0x11223344)).To(Succeed())

		for i, expected := range []byte{0x11, 0x22, 0x33, 0x44} {
			b, _ := s.Read(8 + uint64(i))
			Expect(b).To(Equal(expected))
		}

		word, err := s.ReadWord(8)
		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint32(0x11223344)))
	})

	It("should fail a word that crosses the end", func() {
		err := s.WriteWord(62, 0xffffffff)
		Expect(err).To(MatchError(storage.ErrWordAccess))
		Expect(err).To(MatchError(storage.ErrAddressOutOfRange))

		b, _ := s.Read(62)
		Expect(b).To(BeZero())

		_, err = s.ReadWord(62)
		Expect(err).To(MatchError(storage.ErrWordAccess))
	})

	It("should dump non-zero bytes", func() {
		_ = s.Write(3, 7)
		buf := new(bytes.Buffer)

		Expect(s.Dump(buf, "TLB")).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("BYTE 00000003: 7"))
		Expect(buf.String()).NotTo(ContainSubstring("BYTE 00000004"))
	})

	It("should dump bit patterns of words", func() {
		_ = s.WriteWord(4, 0x80000001)
		buf := new(bytes.Buffer)

		Expect(s.BinDump(buf, "TLB")).To(Succeed())

		Expect(buf.String()).To(
			ContainSubstring("10000000000000000000000000000001"))
	})
})
