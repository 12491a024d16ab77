package dma

import (
	"sync"

	"github.com/sarchlab/dmaemul/sim"
)

// Comp is an emulated DMA controller.
//
// All channel state, stored configurations, and stored blocks are guarded by a
// single lock shared by every channel of the controller. Transfers run on one
// worker goroutine owned by the controller.
type Comp struct {
	sim.NamedBase
	*sim.HookableBase

	memory      Memory
	numChannels uint32
	numRequests uint32
	alignment   Alignment

	lock     sync.Mutex
	channels []channel
	blocks   []BlockConfig
	pending  uint64 // channels covered by a queued or running job

	queue            *workQueue
	workerDone       chan struct{}
	closeOnce        sync.Once
	idGenerator      sim.IDGenerator
	invariantHandler func(err error)
}

// NumChannels returns the number of channels.
func (c *Comp) NumChannels() uint32 {
	return c.numChannels
}

// NumRequests returns the number of request slots per channel.
func (c *Comp) NumRequests() uint32 {
	return c.numRequests
}

// Alignment returns the alignment requirements of the controller.
func (c *Comp) Alignment() Alignment {
	return c.alignment
}

// Configure stores the transfer configuration of a channel. The configuration
// and its block chain are copied, so the caller may reuse them after Configure
// returns. Only unused or stopped channels can be configured.
func (c *Comp) Configure(ch uint32, cfg *TransferConfig) error {
	if err := c.validate(ch, cfg); err != nil {
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	switch c.channels[ch].state {
	case StateUnused, StateStopped:
		c.storeLocked(ch, cfg)
		c.channels[ch].state = StateLoaded

		return nil
	default:
		return ErrBusy
	}
}

// Start starts the transfer of a channel. The channel and every channel it
// chains into are marked started before the transfer is handed to the
// worker. Starting a started channel does nothing. Start fails with ErrBusy
// while a job that covers any channel of the chain is queued or running, for
// example right after Stop, before the worker has observed the stop.
func (c *Comp) Start(ch uint32) error {
	if ch >= c.numChannels {
		return invalidArgument("channel %d out of range [0, %d)",
			ch, c.numChannels)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	switch c.channels[ch].state {
	case StateStarted:
		return nil
	case StateLoaded, StateStopped:
		chain := c.chainLocked(ch)
		if c.pending&chain != 0 {
			return ErrBusy
		}

		// The worker cannot observe the chain before the lock is released.
		if !c.queue.submit(job{channel: ch, chain: chain}) {
			return ErrIO
		}

		c.pending |= chain
		c.markChainStartedLocked(chain)

		return nil
	default:
		return ErrIO
	}
}

// chainLocked returns the set of ch and the channels it chains into. The
// walk stops at the first channel it has already visited.
func (c *Comp) chainLocked(ch uint32) uint64 {
	var visited uint64

	for {
		visited |= 1 << ch

		cfg := &c.channels[ch].config
		if !cfg.chainingEnabled() {
			return visited
		}

		next := cfg.LinkedChannel
		if next >= c.numChannels || visited&(1<<next) != 0 {
			return visited
		}

		ch = next
	}
}

func (c *Comp) markChainStartedLocked(chain uint64) {
	for ch := range c.channels {
		if chain&(1<<ch) != 0 {
			c.channels[ch].state = StateStarted
		}
	}
}

// Stop stops a channel regardless of its state. A transfer in flight observes
// the stop before its next burst.
func (c *Comp) Stop(ch uint32) error {
	if ch >= c.numChannels {
		return invalidArgument("channel %d out of range [0, %d)",
			ch, c.numChannels)
	}

	c.lock.Lock()
	c.channels[ch].state = StateStopped
	c.lock.Unlock()

	return nil
}

// Suspend is not supported by the emulator.
func (c *Comp) Suspend(ch uint32) error {
	return ErrNotSupported
}

// Resume is not supported by the emulator.
func (c *Comp) Resume(ch uint32) error {
	return ErrNotSupported
}

// Reload is not supported by the emulator.
func (c *Comp) Reload(ch uint32, src, dst uint64, size uint32) error {
	return ErrNotSupported
}

// GetStatus is not supported by the emulator.
func (c *Comp) GetStatus(ch uint32) (ChannelStatus, error) {
	return ChannelStatus{}, ErrNotSupported
}

// GetAttribute is not supported by the emulator. Use Alignment instead.
func (c *Comp) GetAttribute(attr AttributeType) (uint32, error) {
	return 0, ErrNotSupported
}

// ChannelFilter reports whether a channel is free for allocation.
func (c *Comp) ChannelFilter(ch int, filterParam any) bool {
	if ch < 0 || uint32(ch) >= c.numChannels {
		return false
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	return c.channels[ch].state == StateUnused
}

// ChannelState returns the current state of a channel.
func (c *Comp) ChannelState(ch uint32) (ChannelState, error) {
	if ch >= c.numChannels {
		return StateUnused, invalidArgument("channel %d out of range [0, %d)",
			ch, c.numChannels)
	}

	return c.channelState(ch), nil
}

func (c *Comp) channelState(ch uint32) ChannelState {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.channels[ch].state
}

func (c *Comp) setChannelState(ch uint32, state ChannelState) {
	c.lock.Lock()
	c.channels[ch].state = state
	c.lock.Unlock()
}

// Wait blocks until the worker has no queued or running transfer. It must not
// be called from a callback or a hook.
func (c *Comp) Wait() {
	c.queue.waitIdle()
}

// Idle reports whether the worker has no queued or running transfer.
func (c *Comp) Idle() bool {
	return c.queue.idle()
}

// Close lets the worker finish the queued transfers and stops it. Start fails
// with ErrIO after Close.
func (c *Comp) Close() {
	c.closeOnce.Do(func() {
		c.queue.close()
		<-c.workerDone
	})
}

func (c *Comp) work() {
	defer close(c.workerDone)

	for {
		j, ok := c.queue.next()
		if !ok {
			return
		}

		err := c.runTransfer(j.channel)

		c.lock.Lock()
		c.pending &^= j.chain
		c.lock.Unlock()

		if err != nil {
			c.invariantHandler(err)
		}

		c.queue.done()
	}
}
