package dma

import (
	"log"

	"github.com/sarchlab/dmaemul/sim"
)

// Hook positions invoked by the worker. Hooks run on the worker goroutine,
// outside the controller lock, so they may call Stop or Configure.
var (
	// HookPosBurstCopied fires after every burst. Item is a BurstInfo.
	HookPosBurstCopied = &sim.HookPos{Name: "DMABurstCopied"}

	// HookPosBlockDone fires after the last burst of a block. Item is a
	// BlockInfo.
	HookPosBlockDone = &sim.HookPos{Name: "DMABlockDone"}

	// HookPosChannelDone fires when a channel's transfer ends. Item is a
	// ChannelInfo.
	HookPosChannelDone = &sim.HookPos{Name: "DMAChannelDone"}
)

// BurstInfo describes a copied burst.
type BurstInfo struct {
	Channel       uint32
	Block         int
	SourceAddress uint64
	DestAddress   uint64
	Bytes         uint32
	Remaining     uint32
}

// BlockInfo describes a completed block.
type BlockInfo struct {
	Channel uint32
	Block   int
}

// ChannelInfo describes how a channel's transfer ended.
type ChannelInfo struct {
	Channel uint32
	Status  Status
}

// LogHook prints the progress of transfers.
type LogHook struct {
	sim.LogHookBase

	// Bursts enables one line per burst.
	Bursts bool
}

// NewLogHook creates a LogHook that writes to logger, or to the standard
// logger if logger is nil.
func NewLogHook(logger *log.Logger) *LogHook {
	return &LogHook{LogHookBase: sim.NewLogHookBase(logger)}
}

// Func prints the event.
func (h *LogHook) Func(ctx sim.HookCtx) {
	name := ""
	if named, ok := ctx.Domain.(sim.Named); ok {
		name = named.Name()
	}

	switch ctx.Pos {
	case HookPosBurstCopied:
		if !h.Bursts {
			return
		}

		b := ctx.Item.(BurstInfo)
		h.Printf("%s: ch%d block %d burst 0x%x -> 0x%x, %d bytes, %d left",
			name, b.Channel, b.Block, b.SourceAddress, b.DestAddress,
			b.Bytes, b.Remaining)
	case HookPosBlockDone:
		b := ctx.Item.(BlockInfo)
		h.Printf("%s: ch%d block %d done", name, b.Channel, b.Block)
	case HookPosChannelDone:
		info := ctx.Item.(ChannelInfo)
		h.Printf("%s: ch%d %s", name, info.Channel, info.Status)
	}
}
