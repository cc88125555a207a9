package sim

import (
	"fmt"
	"log"
)

// A LogHook is a hook that writes what it sees to a logger.
type LogHook interface {
	Hook
}

// LogHookBase holds the logger of a LogHook.
type LogHookBase struct {
	*log.Logger
}

// HookLogger prints every hook invocation it receives. Positions can be
// filtered so that only a subset is printed.
type HookLogger struct {
	LogHookBase

	positions map[*HookPos]bool
}

// NewHookLogger returns a new HookLogger which will write in to the logger.
// If no position is given, all positions are logged.
func NewHookLogger(logger *log.Logger, positions ...*HookPos) *HookLogger {
	h := new(HookLogger)
	h.Logger = logger
	h.positions = make(map[*HookPos]bool)

	for _, p := range positions {
		h.positions[p] = true
	}

	return h
}

// Func writes the hook information into the logger
func (h *HookLogger) Func(ctx HookCtx) {
	if len(h.positions) > 0 && !h.positions[ctx.Pos] {
		return
	}

	domain := ""
	if ctx.Domain != nil {
		domain = ctx.Domain.Name()
	}

	msg := fmt.Sprintf("%s, %s, %v", domain, ctx.Pos.Name, ctx.Item)
	if ctx.Detail != nil {
		msg += fmt.Sprintf(", %v", ctx.Detail)
	}

	h.Logger.Print(msg)
}
