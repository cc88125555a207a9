package sched

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/mem/vm"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Scheduler", func() {
	var (
		mockCtrl *gomock.Controller
		flusher  *MockTLBFlusher
		ram      *MockFrameDevice
		swap     *MockFrameDevice
		s        *Scheduler
	)

	newProc := func(pid vm.PID, prio int) *kernel.Process {
		return &kernel.Process{
			PID:      pid,
			Priority: prio,
			Space:    vm.NewAddressSpace(4),
			RAM:      ram,
			Swap:     swap,
		}
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		flusher = NewMockTLBFlusher(mockCtrl)
		ram = NewMockFrameDevice(mockCtrl)
		swap = NewMockFrameDevice(mockCtrl)

		s = MakeBuilder().
			WithMaxPrio(4).
			WithQueueSize(2).
			WithTLBFlusher(flusher).
			Build("Sched")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should build one queue per level", func() {
		Expect(s.NumLevels()).To(Equal(4))
		Expect(s.Queue(3).Name()).To(Equal("Sched.Queue[3]"))
		Expect(s.QueueEmpty()).To(BeTrue())
		Expect(s.GetProc()).To(BeNil())
	})

	It("should serve lower levels first", func() {
		p2 := newProc(1, 2)
		p0 := newProc(2, 0)
		p1 := newProc(3, 1)

		s.AddProc(p2)
		s.AddProc(p0)
		s.AddProc(p1)

		Expect(s.GetProc()).To(BeIdenticalTo(p0))
		Expect(s.GetProc()).To(BeIdenticalTo(p1))
		Expect(s.GetProc()).To(BeIdenticalTo(p2))
		Expect(s.GetProc()).To(BeNil())
	})

	It("should keep the FIFO order within a level", func() {
		a := newProc(1, 1)
		b := newProc(2, 1)

		s.PutProc(a)
		s.PutProc(b)

		Expect(s.GetProc()).To(BeIdenticalTo(a))
		Expect(s.GetProc()).To(BeIdenticalTo(b))
	})

	It("should track the slots", func() {
		a := newProc(1, 1)

		s.PutProc(a)
		Expect(s.Queue(1).Slot()).To(Equal(1))
		Expect(s.Levels()).To(Equal([]Level{{Priority: 1, Size: 1, Slot: 1}}))

		s.GetProc()
		Expect(s.Queue(1).Slot()).To(Equal(0))
	})

	It("should not count rejected processes", func() {
		for pid := vm.PID(1); pid <= 3; pid++ {
			s.PutProc(newProc(pid, 0))
		}

		Expect(s.Queue(0).Size()).To(Equal(2))
		Expect(s.Queue(0).Slot()).To(Equal(2))
	})

	It("should report non-empty when any level holds a process", func() {
		s.PutProc(newProc(1, 3))

		Expect(s.QueueEmpty()).To(BeFalse())

		s.GetProc()

		Expect(s.QueueEmpty()).To(BeTrue())
	})

	It("should panic on a priority out of range", func() {
		Expect(func() { s.PutProc(newProc(1, 4)) }).To(Panic())
	})

	Context("when ending a process", func() {
		var p *kernel.Process

		BeforeEach(func() {
			p = newProc(1, 2)
			p.Space.Areas[0].End = 4 * vm.PageSize
			p.Space.PageTable.Set(0, vm.PresentPTE(7))
			p.Space.PageTable.Set(2, vm.SwappedPTE(0, 3))
			p.Space.PageTable.Set(5, vm.PresentPTE(9))
		})

		It("should return the frames of the first area", func() {
			flusher.EXPECT().FlushOf(p).Return(nil)
			ram.EXPECT().FreeFrame(uint32(7)).Return(nil)
			swap.EXPECT().FreeFrame(uint32(3)).Return(nil)

			Expect(s.EndProc(p)).To(Succeed())

			Expect(p.Released()).To(BeTrue())
			Expect(p.Space).To(BeNil())
			Expect(s.Queue(2).Slot()).To(Equal(1))
		})

		It("should flush before returning the frames", func() {
			gomock.InOrder(
				flusher.EXPECT().FlushOf(p).Return(nil),
				ram.EXPECT().FreeFrame(uint32(7)).Return(nil),
			)
			swap.EXPECT().FreeFrame(uint32(3)).Return(nil)

			Expect(s.EndProc(p)).To(Succeed())
		})

		It("should report failures and still release the process", func() {
			freeErr := errors.New("frame is already free")
			flusher.EXPECT().FlushOf(p).Return(nil)
			ram.EXPECT().FreeFrame(uint32(7)).Return(freeErr)
			swap.EXPECT().FreeFrame(uint32(3)).Return(nil)

			err := s.EndProc(p)

			Expect(err).To(MatchError(freeErr))
			Expect(p.Released()).To(BeTrue())
		})

		It("should panic when called twice", func() {
			flusher.EXPECT().FlushOf(p).Return(nil)
			ram.EXPECT().FreeFrame(uint32(7)).Return(nil)
			swap.EXPECT().FreeFrame(uint32(3)).Return(nil)

			Expect(s.EndProc(p)).To(Succeed())
			Expect(func() { _ = s.EndProc(p) }).To(Panic())
		})

		It("should refuse once closed", func() {
			s.Close()

			Expect(s.EndProc(p)).To(MatchError(ErrClosed))
			Expect(p.Released()).To(BeFalse())
		})
	})

	Context("in single-queue mode", func() {
		BeforeEach(func() {
			s = MakeBuilder().
				WithMaxPrio(4).
				WithQueueSize(4).
				WithMLQ(false).
				Build("Sched")
		})

		It("should ignore priorities", func() {
			a := newProc(1, 3)
			b := newProc(2, 0)

			s.PutProc(a)
			s.PutProc(b)

			Expect(s.NumLevels()).To(Equal(1))
			Expect(s.GetProc()).To(BeIdenticalTo(a))
			Expect(s.GetProc()).To(BeIdenticalTo(b))
		})
	})

	It("should drop every process on close", func() {
		s.PutProc(newProc(1, 0))
		s.PutProc(newProc(2, 3))

		s.Close()

		Expect(s.QueueEmpty()).To(BeTrue())
		Expect(s.GetProc()).To(BeNil())
	})

	It("should not queue processes once closed", func() {
		s.Close()

		s.PutProc(newProc(1, 0))
		s.AddProc(newProc(2, 3))

		Expect(s.QueueEmpty()).To(BeTrue())
		Expect(s.Queue(0).Size()).To(BeZero())
		Expect(s.GetProc()).To(BeNil())
	})
})
