package dma

import (
	"fmt"
	"log"

	"github.com/sarchlab/dmaemul/sim"
	"github.com/sarchlab/dmaemul/tracing"
)

type transferState int

const (
	transferCopyingBlock transferState = iota
	transferAdvancingBlock
	transferAdvancingChannel
	transferDone
	transferCanceled
	transferFaulted
)

// A transfer is one job of the worker. It walks the blocks of a channel burst
// by burst and follows the chain of linked channels. The controller lock is
// only held while reading or writing channel storage, never across a copy or
// a callback.
type transfer struct {
	comp   *Comp
	taskID string
	state  transferState
	err    error

	channel    uint32
	config     TransferConfig
	blocks     []BlockConfig
	blockIndex int
	block      BlockConfig
}

func (c *Comp) runTransfer(ch uint32) error {
	t := &transfer{
		comp:   c,
		taskID: c.idGenerator.Generate(),
	}

	tracing.StartTask(t.taskID, "", c, "dma_transfer",
		fmt.Sprintf("ch%d", ch), nil)
	defer tracing.EndTask(t.taskID, c)

	t.enterChannel(ch)

	return t.run()
}

func (t *transfer) run() error {
	for {
		switch t.state {
		case transferCopyingBlock:
			t.copyBurst()
		case transferAdvancingBlock:
			t.advanceBlock()
		case transferAdvancingChannel:
			t.advanceChannel()
		case transferCanceled:
			t.finishChannel(StatusCanceled)
			return nil
		case transferFaulted:
			t.comp.setChannelState(t.channel, StateStopped)
			t.finishChannel(StatusMemoryError)
			return nil
		case transferDone:
			return nil
		}

		if t.err != nil {
			return t.err
		}
	}
}

// enterChannel snapshots the configuration and all blocks of a channel in one
// critical section.
func (t *transfer) enterChannel(ch uint32) {
	t.comp.lock.Lock()
	t.config, t.blocks = t.comp.snapshotLocked(ch)
	t.comp.lock.Unlock()

	t.channel = ch
	t.blockIndex = -1
	t.state = transferAdvancingBlock
}

func (t *transfer) copyBurst() {
	if t.block.BlockSize == 0 {
		t.state = transferAdvancingBlock
		return
	}

	bytes := min(t.block.BlockSize, t.config.DestBurstLength)

	switch state := t.comp.channelState(t.channel); state {
	case StateStopped:
		t.state = transferCanceled
		return
	case StateStarted:
	default:
		t.err = &InvariantViolation{
			Channel: t.channel,
			Reason:  fmt.Sprintf("channel is %s during a burst", state),
		}
		return
	}

	if err := t.copy(uint64(bytes)); err != nil {
		log.Printf("%s: ch%d: %v", t.comp.Name(), t.channel, err)
		t.state = transferFaulted
		return
	}

	t.block.BlockSize -= bytes
	t.block.SourceAddress += uint64(bytes)
	t.block.DestAddress += uint64(bytes)

	t.comp.InvokeHook(sim.HookCtx{
		Domain: t.comp,
		Pos:    HookPosBurstCopied,
		Item: BurstInfo{
			Channel:       t.channel,
			Block:         t.blockIndex,
			SourceAddress: t.block.SourceAddress - uint64(bytes),
			DestAddress:   t.block.DestAddress - uint64(bytes),
			Bytes:         bytes,
			Remaining:     t.block.BlockSize,
		},
	})
	tracing.AddTaskStep(t.taskID, t.comp, "burst")
}

// copy moves one burst. This is where a real transport would plug in.
func (t *transfer) copy(bytes uint64) error {
	data, err := t.comp.memory.Read(t.block.SourceAddress, bytes)
	if err != nil {
		return fmt.Errorf("reading 0x%x: %w", t.block.SourceAddress, err)
	}

	err = t.comp.memory.Write(t.block.DestAddress, data)
	if err != nil {
		return fmt.Errorf("writing 0x%x: %w", t.block.DestAddress, err)
	}

	return nil
}

func (t *transfer) advanceBlock() {
	if t.blockIndex >= 0 {
		t.comp.InvokeHook(sim.HookCtx{
			Domain: t.comp,
			Pos:    HookPosBlockDone,
			Item:   BlockInfo{Channel: t.channel, Block: t.blockIndex},
		})
		tracing.AddTaskStep(t.taskID, t.comp, "block_done")
	}

	t.blockIndex++

	if t.blockIndex < len(t.blocks) {
		if t.blockIndex > 0 && t.config.CompleteCallbackEn {
			t.callback(StatusBlock)
		}

		t.block = t.blocks[t.blockIndex]
		t.state = transferCopyingBlock

		return
	}

	t.comp.setChannelState(t.channel, StateStopped)
	t.finishChannel(StatusComplete)
	t.state = transferAdvancingChannel
}

func (t *transfer) advanceChannel() {
	if !t.config.chainingEnabled() {
		t.state = transferDone
		return
	}

	next := t.config.LinkedChannel
	if next == t.channel {
		t.err = &InvariantViolation{
			Channel: t.channel,
			Reason:  "channel is linked to itself",
		}
		return
	}

	tracing.AddTaskStep(t.taskID, t.comp, "chain")
	t.enterChannel(next)
}

// finishChannel reports the end of the current channel's transfer. Abnormal
// ends are not reported to the callback if the error callback is disabled.
func (t *transfer) finishChannel(status Status) {
	t.comp.InvokeHook(sim.HookCtx{
		Domain: t.comp,
		Pos:    HookPosChannelDone,
		Item:   ChannelInfo{Channel: t.channel, Status: status},
	})

	if status < 0 && t.config.ErrorCallbackDis {
		return
	}

	t.callback(status)
}

func (t *transfer) callback(status Status) {
	if t.config.Callback == nil {
		return
	}

	t.config.Callback(t.comp, t.config.UserData, t.channel, status)
}
