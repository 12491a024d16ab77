// Package dma emulates a multi-channel DMA controller in software.
//
// A client configures a channel with a TransferConfig and a chain of
// BlockConfigs, then starts it. A dedicated worker goroutine copies the bytes
// burst by burst through a Memory, polling the channel state between bursts so
// that Stop can cancel the transfer. Channels may chain into a linked channel,
// in which case the linked transfer runs in the same job.
package dma

// Memory is the address space the controller copies bytes within.
type Memory interface {
	Read(address, length uint64) ([]byte, error)
	Write(address uint64, data []byte) error
}

// ChannelState is the lifecycle state of a channel.
type ChannelState int

// Channel states.
const (
	StateUnused ChannelState = iota
	StateLoaded
	StateStarted
	StateStopped
)

func (s ChannelState) String() string {
	switch s {
	case StateUnused:
		return "unused"
	case StateLoaded:
		return "loaded"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return "invalid"
	}
}

// Direction is the direction of a transfer. The emulator copies memory to
// memory regardless of the direction.
type Direction int

// Transfer directions.
const (
	MemoryToMemory Direction = iota
	MemoryToPeripheral
	PeripheralToMemory
	PeripheralToPeripheral
	HostToMemory
	MemoryToHost
)

// AddrAdj is the address adjustment mode of a block.
type AddrAdj int

// Address adjustment modes.
const (
	AddrAdjIncrement AddrAdj = iota
	AddrAdjDecrement
	AddrAdjNoChange
)

// A BlockConfig describes one contiguous segment of a transfer. Blocks of a
// transfer are chained through NextBlock.
//
// Only the addresses, the size and NextBlock are interpreted by the emulator.
// The remaining fields keep the shape of a hardware block descriptor.
type BlockConfig struct {
	SourceAddress uint64
	DestAddress   uint64
	BlockSize     uint32
	NextBlock     *BlockConfig

	SourceGatherInterval uint32
	DestScatterInterval  uint32
	DestScatterCount     uint16
	SourceGatherCount    uint16
	FIFOModeControl      uint16
	SourceAddrAdj        AddrAdj
	DestAddrAdj          AddrAdj
	SourceGatherEn       bool
	DestScatterEn        bool
	SourceReloadEn       bool
	DestReloadEn         bool
	FlowControlMode      bool
}

// CallbackFunc is invoked from the worker goroutine when a transfer completes,
// a block completes, or a transfer is canceled. It must not call Wait or
// Close on the controller.
type CallbackFunc func(c *Comp, userData any, channel uint32, status Status)

// A TransferConfig describes the transfer of one channel.
type TransferConfig struct {
	// Slot is the request slot the block chain is stored from.
	Slot uint32

	Direction Direction

	// CompleteCallbackEn requests a StatusBlock callback after every block
	// but the last. The StatusComplete callback is always delivered.
	CompleteCallbackEn bool

	// ErrorCallbackDis suppresses the callback on cancellation and faults.
	ErrorCallbackDis bool

	SourceHandshake bool
	DestHandshake   bool
	ChannelPriority uint32

	SourceChainingEn bool
	DestChainingEn   bool
	LinkedChannel    uint32

	Cyclic bool

	SourceDataSize    uint32
	DestDataSize      uint32
	SourceBurstLength uint32
	DestBurstLength   uint32

	BlockCount uint32
	HeadBlock  *BlockConfig

	UserData any
	Callback CallbackFunc
}

func (cfg *TransferConfig) chainingEnabled() bool {
	return cfg.SourceChainingEn || cfg.DestChainingEn
}

// Status is the status code delivered to a CallbackFunc.
type Status int

// Callback status codes. Non-negative codes report progress; negative codes
// report an abnormal end of the transfer.
const (
	StatusComplete    Status = 0
	StatusBlock       Status = 1
	StatusMemoryError Status = -5
	StatusCanceled    Status = -125
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusBlock:
		return "block"
	case StatusMemoryError:
		return "memory_error"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Err converts the status into the matching error, or nil for progress codes.
func (s Status) Err() error {
	switch s {
	case StatusComplete, StatusBlock:
		return nil
	case StatusCanceled:
		return ErrCanceled
	default:
		return ErrIO
	}
}

// ChannelStatus is the shape of a channel status query.
type ChannelStatus struct {
	Busy          bool
	Direction     Direction
	PendingLength uint32
	TotalCopied   uint64
}

// AttributeType selects the attribute queried with GetAttribute.
type AttributeType uint32

// Attribute types.
const (
	AttrBufferAddressAlignment AttributeType = iota
	AttrBufferSizeAlignment
	AttrCopyAlignment
	AttrMaxBlockCount
)

// Alignment holds the alignment requirements of a controller, in bytes.
type Alignment struct {
	Address uint32 `json:"address"`
	Size    uint32 `json:"size"`
	Copy    uint32 `json:"copy"`
}
