package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sarchlab/dmaemul/dma"
	"github.com/sarchlab/dmaemul/memory"
)

// copyOptions describes a memory-to-memory copy run by the CLI.
type copyOptions struct {
	Channel uint32
	Source  uint64
	Dest    uint64
	Size    uint64
	Burst   uint32
	Blocks  uint32

	// ChainTo is the channel that copies the destination once more, to
	// Dest+Size. A negative value disables chaining.
	ChainTo int

	BlockCallbacks bool
}

type statusRecord struct {
	Channel uint32
	Status  dma.Status
}

type copyResult struct {
	Statuses []statusRecord
	Verified bool
	Elapsed  time.Duration
}

// Complete reports whether every channel of the copy ended successfully.
func (r copyResult) Complete(opts copyOptions) bool {
	want := map[uint32]bool{opts.Channel: false}
	if opts.ChainTo >= 0 {
		want[uint32(opts.ChainTo)] = false
	}

	for _, s := range r.Statuses {
		if s.Status.Err() != nil {
			return false
		}

		if s.Status == dma.StatusComplete {
			want[s.Channel] = true
		}
	}

	for _, done := range want {
		if !done {
			return false
		}
	}

	return true
}

type statusLog struct {
	lock    sync.Mutex
	records []statusRecord
}

func (l *statusLog) callback(_ *dma.Comp, _ any, ch uint32, status dma.Status) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.records = append(l.records, statusRecord{Channel: ch, Status: status})
}

func (l *statusLog) snapshot() []statusRecord {
	l.lock.Lock()
	defer l.lock.Unlock()

	return append([]statusRecord(nil), l.records...)
}

// buildTransfer splits a copy into equally sized blocks. The last block
// takes the remainder.
func buildTransfer(
	src, dst, size uint64,
	burst, blocks uint32,
	cb dma.CallbackFunc,
) (*dma.TransferConfig, error) {
	if blocks == 0 {
		return nil, errors.New("at least one block is required")
	}

	blockSize := size / uint64(blocks)
	last := blockSize + size%uint64(blocks)
	if last > uint64(^uint32(0)) {
		return nil, fmt.Errorf("block size %d does not fit in 32 bits", last)
	}

	cfg := &dma.TransferConfig{
		Direction:         dma.MemoryToMemory,
		SourceDataSize:    1,
		DestDataSize:      1,
		SourceBurstLength: burst,
		DestBurstLength:   burst,
		BlockCount:        blocks,
		Callback:          cb,
	}

	var prev *dma.BlockConfig
	for i := uint32(0); i < blocks; i++ {
		n := blockSize
		if i == blocks-1 {
			n = last
		}

		offset := uint64(i) * blockSize
		b := &dma.BlockConfig{
			SourceAddress: src + offset,
			DestAddress:   dst + offset,
			BlockSize:     uint32(n),
		}

		if prev == nil {
			cfg.HeadBlock = b
		} else {
			prev.NextBlock = b
		}

		prev = b
	}

	return cfg, nil
}

func fillPattern(mem dma.Memory, addr, size uint64) ([]byte, error) {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}

	return data, mem.Write(addr, data)
}

// runCopy configures and starts the copy, waits for the worker, and checks
// the destination.
func runCopy(
	comp *dma.Comp,
	mem dma.Memory,
	opts copyOptions,
) (copyResult, error) {
	statuses := &statusLog{}

	want, err := fillPattern(mem, opts.Source, opts.Size)
	if err != nil {
		return copyResult{}, err
	}

	cfg, err := buildTransfer(opts.Source, opts.Dest, opts.Size,
		opts.Burst, opts.Blocks, statuses.callback)
	if err != nil {
		return copyResult{}, err
	}

	cfg.CompleteCallbackEn = opts.BlockCallbacks

	if opts.ChainTo >= 0 {
		chained, err := buildTransfer(opts.Dest, opts.Dest+opts.Size,
			opts.Size, opts.Burst, 1, statuses.callback)
		if err != nil {
			return copyResult{}, err
		}

		err = comp.Configure(uint32(opts.ChainTo), chained)
		if err != nil {
			return copyResult{}, fmt.Errorf("configuring ch%d: %w",
				opts.ChainTo, err)
		}

		cfg.SourceChainingEn = true
		cfg.LinkedChannel = uint32(opts.ChainTo)
	}

	err = comp.Configure(opts.Channel, cfg)
	if err != nil {
		return copyResult{}, fmt.Errorf("configuring ch%d: %w",
			opts.Channel, err)
	}

	start := time.Now()

	err = comp.Start(opts.Channel)
	if err != nil {
		return copyResult{}, fmt.Errorf("starting ch%d: %w", opts.Channel, err)
	}

	comp.Wait()

	result := copyResult{
		Statuses: statuses.snapshot(),
		Elapsed:  time.Since(start),
	}

	result.Verified, err = verify(mem, opts, want)
	if err != nil {
		return result, err
	}

	return result, nil
}

func verify(mem dma.Memory, opts copyOptions, want []byte) (bool, error) {
	targets := []uint64{opts.Dest}
	if opts.ChainTo >= 0 {
		targets = append(targets, opts.Dest+opts.Size)
	}

	for _, addr := range targets {
		got, err := mem.Read(addr, opts.Size)
		if err != nil {
			return false, err
		}

		if !bytes.Equal(got, want) {
			return false, nil
		}
	}

	return true, nil
}

// defaultDest places the destination in the upper half of the memory.
func defaultDest(mem *memory.Storage) uint64 {
	return mem.Capacity() / 2
}
