package dma

// A channel holds the state and the stored configuration of one channel. The
// stored configuration never references caller memory: HeadBlock is nil and
// the blocks live in the controller's block arena.
type channel struct {
	state  ChannelState
	config TransferConfig
}

// validate checks a proposed configuration without touching any state.
func (c *Comp) validate(ch uint32, cfg *TransferConfig) error {
	if cfg == nil {
		return invalidArgument("nil transfer config")
	}

	if cfg.Slot >= c.numRequests {
		return invalidArgument("slot %d out of range [0, %d)",
			cfg.Slot, c.numRequests)
	}

	if ch >= c.numChannels {
		return invalidArgument("channel %d out of range [0, %d)",
			ch, c.numChannels)
	}

	if cfg.SourceBurstLength != cfg.DestBurstLength {
		return invalidArgument("burst lengths differ: source %d, dest %d",
			cfg.SourceBurstLength, cfg.DestBurstLength)
	}

	if cfg.BlockCount > c.numRequests-cfg.Slot {
		return invalidArgument("%d blocks from slot %d exceed %d request slots",
			cfg.BlockCount, cfg.Slot, c.numRequests)
	}

	block := cfg.HeadBlock
	for i := uint32(0); i < cfg.BlockCount; i++ {
		if block == nil {
			return invalidArgument("block chain ends after %d of %d blocks",
				i, cfg.BlockCount)
		}

		if block.BlockSize > 0 && cfg.DestBurstLength == 0 {
			return invalidArgument("zero burst length with %d-byte block %d",
				block.BlockSize, i)
		}

		block = block.NextBlock
	}

	if cfg.chainingEnabled() && cfg.LinkedChannel >= c.numChannels {
		return invalidArgument("linked channel %d out of range [0, %d)",
			cfg.LinkedChannel, c.numChannels)
	}

	return nil
}

func (c *Comp) blockBase(ch uint32, slot uint32) uint32 {
	return ch*c.numRequests + slot
}

// storeLocked copies the configuration and its block chain into channel
// storage. The caller must hold the lock and must have validated cfg.
func (c *Comp) storeLocked(ch uint32, cfg *TransferConfig) {
	stored := *cfg
	stored.HeadBlock = nil
	c.channels[ch].config = stored

	base := c.blockBase(ch, cfg.Slot)
	block := cfg.HeadBlock

	for i := uint32(0); i < cfg.BlockCount; i++ {
		copied := *block
		copied.NextBlock = nil
		c.blocks[base+i] = copied

		block = block.NextBlock
	}
}

// snapshotLocked returns copies of the configuration and blocks of a channel.
// The caller must hold the lock.
func (c *Comp) snapshotLocked(ch uint32) (TransferConfig, []BlockConfig) {
	cfg := c.channels[ch].config
	base := c.blockBase(ch, cfg.Slot)

	blocks := make([]BlockConfig, cfg.BlockCount)
	copy(blocks, c.blocks[base:base+cfg.BlockCount])

	return cfg, blocks
}

// ChannelSnapshot is a read-only view of a channel.
type ChannelSnapshot struct {
	Channel       uint32 `json:"channel"`
	State         string `json:"state"`
	Slot          uint32 `json:"slot"`
	BlockCount    uint32 `json:"block_count"`
	BurstLength   uint32 `json:"burst_length"`
	TotalBytes    uint64 `json:"total_bytes"`
	Chained       bool   `json:"chained"`
	LinkedChannel uint32 `json:"linked_channel"`
}

// Snapshot returns a view of every channel.
func (c *Comp) Snapshot() []ChannelSnapshot {
	c.lock.Lock()
	defer c.lock.Unlock()

	snapshots := make([]ChannelSnapshot, 0, c.numChannels)
	for ch := uint32(0); ch < c.numChannels; ch++ {
		cfg, blocks := c.snapshotLocked(ch)

		total := uint64(0)
		for _, b := range blocks {
			total += uint64(b.BlockSize)
		}

		snapshots = append(snapshots, ChannelSnapshot{
			Channel:       ch,
			State:         c.channels[ch].state.String(),
			Slot:          cfg.Slot,
			BlockCount:    cfg.BlockCount,
			BurstLength:   cfg.DestBurstLength,
			TotalBytes:    total,
			Chained:       cfg.chainingEnabled(),
			LinkedChannel: cfg.LinkedChannel,
		})
	}

	return snapshots
}
