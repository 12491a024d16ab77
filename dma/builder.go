package dma

import (
	"log"

	"github.com/sarchlab/dmaemul/sim"
)

// MaxChannels is the largest number of channels a controller can have.
const MaxChannels = 32

// Builder can build emulated DMA controllers.
type Builder struct {
	numChannels      uint32
	numRequests      uint32
	addrAlign        uint32
	sizeAlign        uint32
	copyAlign        uint32
	memory           Memory
	idGenerator      sim.IDGenerator
	invariantHandler func(err error)
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numChannels: 4,
		numRequests: 1,
		addrAlign:   1,
		sizeAlign:   1,
		copyAlign:   1,
	}
}

// WithNumChannels sets the number of channels.
func (b Builder) WithNumChannels(n uint32) Builder {
	b.numChannels = n
	return b
}

// WithNumRequests sets the number of request slots per channel.
func (b Builder) WithNumRequests(n uint32) Builder {
	b.numRequests = n
	return b
}

// WithAddressAlignment sets the required buffer address alignment.
func (b Builder) WithAddressAlignment(align uint32) Builder {
	b.addrAlign = align
	return b
}

// WithSizeAlignment sets the required buffer size alignment.
func (b Builder) WithSizeAlignment(align uint32) Builder {
	b.sizeAlign = align
	return b
}

// WithCopyAlignment sets the required copy alignment.
func (b Builder) WithCopyAlignment(align uint32) Builder {
	b.copyAlign = align
	return b
}

// WithMemory sets the address space the controller copies within.
func (b Builder) WithMemory(memory Memory) Builder {
	b.memory = memory
	return b
}

// WithIDGenerator sets the generator of transfer task IDs. The global
// generator is used by default.
func (b Builder) WithIDGenerator(g sim.IDGenerator) Builder {
	b.idGenerator = g
	return b
}

// WithInvariantViolationHandler sets the function that receives invariant
// violations detected by the worker. By default the worker panics.
func (b Builder) WithInvariantViolationHandler(h func(err error)) Builder {
	b.invariantHandler = h
	return b
}

// Build creates the controller and starts its worker.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		NamedBase:    sim.MakeNamedBase(name),
		HookableBase: sim.NewHookableBase(),
		memory:       b.memory,
		numChannels:  b.numChannels,
		numRequests:  b.numRequests,
		alignment: Alignment{
			Address: b.addrAlign,
			Size:    b.sizeAlign,
			Copy:    b.copyAlign,
		},
		channels:         make([]channel, b.numChannels),
		blocks:           make([]BlockConfig, b.numChannels*b.numRequests),
		queue:            newWorkQueue(),
		workerDone:       make(chan struct{}),
		idGenerator:      b.idGenerator,
		invariantHandler: b.invariantHandler,
	}

	if c.idGenerator == nil {
		c.idGenerator = sim.GetIDGenerator()
	}

	if c.invariantHandler == nil {
		c.invariantHandler = func(err error) { log.Panic(err) }
	}

	go c.work()

	return c
}

func (b Builder) parametersMustBeValid() {
	if b.numChannels == 0 || b.numChannels > MaxChannels {
		log.Panicf("number of channels must be in [1, %d], got %d",
			MaxChannels, b.numChannels)
	}

	if b.numRequests == 0 {
		log.Panic("number of requests must be positive")
	}

	if b.memory == nil {
		log.Panic("memory must be set")
	}

	if b.addrAlign == 0 || b.sizeAlign == 0 || b.copyAlign == 0 {
		log.Panic("alignments must be positive")
	}
}
