package tlb

import (
	"fmt"
	"io"

	"github.com/sarchlab/ossim/sim"
)

// A Tracer writes one line for every TLB operation that it observes.
type Tracer struct {
	writer io.Writer
}

// NewTracer creates a Tracer that writes to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{writer: w}
}

// Func writes one line for an Access. Other items are ignored.
func (t *Tracer) Func(ctx sim.HookCtx) {
	access, ok := ctx.Item.(Access)
	if !ok {
		return
	}

	_, err := fmt.Fprintf(t.writer,
		"%s,%s,pid=%d,page=%d,frame=%d,line=%d,way=%d\n",
		ctx.Domain.Name(),
		ctx.Pos.Name,
		access.PID, access.Page, access.Frame, access.Line, access.Way)
	if err != nil {
		panic(err)
	}
}
