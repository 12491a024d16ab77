package tracing

import (
	"log"
	"reflect"

	"github.com/sarchlab/dmaemul/sim"
)

// CollectTrace attaches a tracer to a domain. Attaching the same tracer twice
// panics, since every task would be counted twice.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, h := range domain.Hooks() {
		if th, ok := h.(*traceHook); ok && th.tracer == tracer {
			log.Panicf("domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer))
		}
	}

	domain.AcceptHook(&traceHook{tracer: tracer})
}

// traceHook forwards the task hook positions to a tracer.
type traceHook struct {
	tracer Tracer
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	task, ok := ctx.Item.(Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		h.tracer.StartTask(task)
	case HookPosTaskStep:
		h.tracer.StepTask(task)
	case HookPosTaskEnd:
		h.tracer.EndTask(task)
	}
}
