package sched

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ossim/kernel"
	"github.com/sarchlab/ossim/sim"
)

var _ = Describe("Queue", func() {
	var (
		q         *Queue
		positions []*sim.HookPos
	)

	BeforeEach(func() {
		q = NewQueue("Queue", 3)

		positions = nil
		q.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			positions = append(positions, ctx.Pos)
		}))
	})

	It("should treat a nil queue as empty", func() {
		var nilQueue *Queue

		Expect(nilQueue.Empty()).To(BeTrue())
		Expect(nilQueue.Size()).To(BeZero())
	})

	It("should return nil when empty", func() {
		Expect(q.Dequeue()).To(BeNil())
		Expect(positions).To(BeEmpty())
	})

	It("should keep the FIFO order", func() {
		a := &kernel.Process{PID: 1}
		b := &kernel.Process{PID: 2}

		Expect(q.Enqueue(a)).To(BeTrue())
		Expect(q.Enqueue(b)).To(BeTrue())

		Expect(q.Dequeue()).To(BeIdenticalTo(a))
		Expect(q.Dequeue()).To(BeIdenticalTo(b))
		Expect(q.Empty()).To(BeTrue())
		Expect(positions).To(Equal([]*sim.HookPos{
			HookPosQueuePush, HookPosQueuePush,
			HookPosQueuePop, HookPosQueuePop,
		}))
	})

	It("should reject processes when full", func() {
		procs := []*kernel.Process{{PID: 1}, {PID: 2}, {PID: 3}, {PID: 4}}
		for _, p := range procs[:3] {
			Expect(q.Enqueue(p)).To(BeTrue())
		}

		Expect(q.Enqueue(procs[3])).To(BeFalse())

		Expect(q.Size()).To(Equal(q.Capacity()))
		Expect(positions[3]).To(BeIdenticalTo(HookPosQueueReject))
		for _, p := range procs[:3] {
			Expect(q.Dequeue()).To(BeIdenticalTo(p))
		}
		Expect(q.Dequeue()).To(BeNil())
	})

	It("should panic with no capacity", func() {
		Expect(func() { NewQueue("Queue", 0) }).To(Panic())
	})
})
