package dma

import (
	"bytes"
	"errors"
	"log"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dmaemul/memory"
	"github.com/sarchlab/dmaemul/sim"
	"github.com/sarchlab/dmaemul/tracing"
	"go.uber.org/mock/gomock"
)

const (
	srcAddr uint64 = 0x1000
	dstAddr uint64 = 0x2000
)

var _ = Describe("Comp", func() {
	var (
		storage  *memory.Storage
		comp     *Comp
		recorder *callbackRecorder
		src      []byte
	)

	BeforeEach(func() {
		storage = memory.NewStorage(1 * memory.MB)
		comp = MakeBuilder().
			WithNumChannels(2).
			WithNumRequests(1).
			WithMemory(storage).
			WithIDGenerator(sim.NewIDGenerator(false)).
			Build("DMA")
		recorder = &callbackRecorder{}

		src = pattern(16, 0xa0)
		Expect(storage.Write(srcAddr, src)).To(Succeed())
	})

	AfterEach(func() {
		comp.Close()
	})

	readDst := func(n uint64) []byte {
		data, err := storage.Read(dstAddr, n)
		Expect(err).NotTo(HaveOccurred())

		return data
	}

	It("should copy a single block and report completion", func() {
		cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
		cfg.UserData = "user"

		Expect(comp.Configure(0, cfg)).To(Succeed())
		Expect(comp.Start(0)).To(Succeed())
		comp.Wait()

		Expect(readDst(16)).To(Equal(src))
		Expect(recorder.statuses()).To(Equal([]Status{StatusComplete}))
		Expect(recorder.records[0].userData).To(Equal("user"))
		Expect(recorder.records[0].channel).To(Equal(uint32(0)))
		Expect(comp.ChannelFilter(0, nil)).To(BeFalse())

		state, err := comp.ChannelState(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(Equal(StateStopped))
	})

	It("should copy in bursts of the burst length", func() {
		var sizes []uint32
		comp.AcceptHook(burstHook(func(info BurstInfo) {
			sizes = append(sizes, info.Bytes)
		}))

		cfg := singleBlockConfig(srcAddr, dstAddr, 10, 4, recorder.callback)
		Expect(comp.Configure(0, cfg)).To(Succeed())
		Expect(comp.Start(0)).To(Succeed())
		comp.Wait()

		Expect(sizes).To(Equal([]uint32{4, 4, 2}))
		Expect(readDst(10)).To(Equal(src[:10]))
	})

	Context("configure", func() {
		It("should only configure unused or stopped channels", func() {
			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, nil)
			Expect(comp.ChannelFilter(0, nil)).To(BeTrue())
			Expect(comp.Configure(0, cfg)).To(Succeed())

			other := singleBlockConfig(srcAddr, dstAddr, 8, 2, nil)
			Expect(comp.Configure(0, other)).To(MatchError(ErrBusy))
			Expect(comp.Snapshot()[0].TotalBytes).To(Equal(uint64(16)))
			Expect(comp.Snapshot()[0].State).To(Equal("loaded"))

			Expect(comp.Stop(0)).To(Succeed())
			Expect(comp.Configure(0, other)).To(Succeed())
			Expect(comp.Snapshot()[0].TotalBytes).To(Equal(uint64(8)))
		})

		It("should refuse to configure a started channel", func() {
			reached := make(chan struct{})
			release := make(chan struct{})
			comp.AcceptHook(gateHook(reached, release))

			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			Expect(comp.Configure(0, cfg)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			Eventually(reached).Should(Receive())

			Expect(comp.Configure(0, cfg)).To(MatchError(ErrBusy))

			close(release)
			comp.Wait()
			Expect(recorder.statuses()).To(Equal([]Status{StatusComplete}))
		})

		It("should reject mismatched burst lengths", func() {
			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, nil)
			cfg.SourceBurstLength = 8

			err := comp.Configure(0, cfg)

			Expect(errors.Is(err, ErrInvalidArgument)).To(BeTrue())
			Expect(comp.ChannelFilter(0, nil)).To(BeTrue())
		})

		It("should reject a block chain shorter than the block count", func() {
			comp.Close()
			comp = MakeBuilder().
				WithNumChannels(2).
				WithNumRequests(2).
				WithMemory(storage).
				Build("DMA")

			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, nil)
			cfg.BlockCount = 2

			Expect(comp.Configure(0, cfg)).To(MatchError(ErrInvalidArgument))
			Expect(comp.ChannelFilter(0, nil)).To(BeTrue())
		})

		It("should reject out of range slots and channels", func() {
			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, nil)
			Expect(comp.Configure(2, cfg)).To(MatchError(ErrInvalidArgument))

			cfg.Slot = 1
			Expect(comp.Configure(0, cfg)).To(MatchError(ErrInvalidArgument))
		})

		It("should reject a nil config", func() {
			Expect(comp.Configure(0, nil)).To(MatchError(ErrInvalidArgument))
		})

		It("should decouple the stored config from the caller", func() {
			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			Expect(comp.Configure(0, cfg)).To(Succeed())

			cfg.HeadBlock.SourceAddress = 0x8000
			cfg.HeadBlock.BlockSize = 2
			cfg.HeadBlock = nil
			cfg.DestBurstLength = 1
			cfg.BlockCount = 0

			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			Expect(readDst(16)).To(Equal(src))
			Expect(recorder.statuses()).To(Equal([]Status{StatusComplete}))
		})
	})

	Context("start", func() {
		It("should reject out of range channels", func() {
			Expect(comp.Start(2)).To(MatchError(ErrInvalidArgument))
			Expect(comp.Stop(2)).To(MatchError(ErrInvalidArgument))
			_, err := comp.ChannelState(2)
			Expect(err).To(MatchError(ErrInvalidArgument))
			Expect(comp.ChannelFilter(2, nil)).To(BeFalse())
			Expect(comp.ChannelFilter(-1, nil)).To(BeFalse())
		})

		It("should fail on an unused channel", func() {
			Expect(comp.Start(0)).To(MatchError(ErrIO))
		})

		It("should do the work once when started twice", func() {
			reached := make(chan struct{})
			release := make(chan struct{})
			comp.AcceptHook(gateHook(reached, release))

			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			Expect(comp.Configure(0, cfg)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			Eventually(reached).Should(Receive())

			Expect(comp.Start(0)).To(Succeed())

			close(release)
			comp.Wait()

			Expect(recorder.statuses()).To(Equal([]Status{StatusComplete}))
			Expect(readDst(16)).To(Equal(src))
		})

		It("should restart a stopped channel", func() {
			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			Expect(comp.Configure(0, cfg)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			Expect(recorder.statuses()).To(Equal(
				[]Status{StatusComplete, StatusComplete}))
		})

		It("should not restart a channel before its transfer ends", func() {
			reached := make(chan struct{})
			release := make(chan struct{})
			comp.AcceptHook(gateHook(reached, release))

			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			Expect(comp.Configure(0, cfg)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			Eventually(reached).Should(Receive())

			Expect(comp.Stop(0)).To(Succeed())
			Expect(comp.Start(0)).To(MatchError(ErrBusy))

			close(release)
			comp.Wait()

			Expect(recorder.statuses()).To(Equal([]Status{StatusCanceled}))

			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			Expect(recorder.statuses()).To(Equal(
				[]Status{StatusCanceled, StatusComplete}))
			Expect(readDst(16)).To(Equal(src))
		})

		It("should not start a channel a running chain will reach", func() {
			reached := make(chan struct{})
			release := make(chan struct{})
			comp.AcceptHook(gateHook(reached, release))

			cfg0 := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			cfg0.SourceChainingEn = true
			cfg0.LinkedChannel = 1
			cfg1 := singleBlockConfig(srcAddr, dstAddr+0x100, 8, 8,
				recorder.callback)

			Expect(comp.Configure(0, cfg0)).To(Succeed())
			Expect(comp.Configure(1, cfg1)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			Eventually(reached).Should(Receive())

			Expect(comp.Stop(1)).To(Succeed())
			Expect(comp.Start(1)).To(MatchError(ErrBusy))

			close(release)
			comp.Wait()

			Expect(recorder.channels()).To(Equal([]uint32{0, 1}))
			Expect(recorder.statuses()).To(Equal(
				[]Status{StatusComplete, StatusCanceled}))
		})

		It("should fail after the controller is closed", func() {
			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, nil)
			Expect(comp.Configure(0, cfg)).To(Succeed())

			comp.Close()

			Expect(comp.Start(0)).To(MatchError(ErrIO))
			state, _ := comp.ChannelState(0)
			Expect(state).To(Equal(StateLoaded))
		})

		It("should complete a transfer without blocks", func() {
			cfg := &TransferConfig{Callback: recorder.callback}
			Expect(comp.Configure(0, cfg)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			Expect(recorder.statuses()).To(Equal([]Status{StatusComplete}))
		})
	})

	Context("stop", func() {
		var stopAfterFirstBurst sim.Hook

		BeforeEach(func() {
			var once sync.Once
			stopAfterFirstBurst = burstHook(func(info BurstInfo) {
				once.Do(func() {
					_ = comp.Stop(info.Channel)
				})
			})
		})

		It("should cancel the transfer between bursts", func() {
			comp.AcceptHook(stopAfterFirstBurst)

			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			Expect(comp.Configure(0, cfg)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			dst := readDst(16)
			Expect(dst[:4]).To(Equal(src[:4]))
			Expect(dst[4:]).To(Equal(make([]byte, 12)))
			Expect(recorder.statuses()).To(Equal([]Status{StatusCanceled}))
			Expect(StatusCanceled.Err()).To(MatchError(ErrCanceled))

			state, _ := comp.ChannelState(0)
			Expect(state).To(Equal(StateStopped))
		})

		It("should not call back on cancel if error callbacks are disabled", func() {
			comp.AcceptHook(stopAfterFirstBurst)

			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			cfg.ErrorCallbackDis = true
			Expect(comp.Configure(0, cfg)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			Expect(readDst(16)[4:]).To(Equal(make([]byte, 12)))
			Expect(recorder.statuses()).To(BeEmpty())
		})

		It("should not run chained channels after a cancel", func() {
			comp.AcceptHook(stopAfterFirstBurst)

			cfg0 := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			cfg0.DestChainingEn = true
			cfg0.LinkedChannel = 1
			cfg1 := singleBlockConfig(srcAddr, dstAddr+0x100, 16, 4,
				recorder.callback)

			Expect(comp.Configure(0, cfg0)).To(Succeed())
			Expect(comp.Configure(1, cfg1)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			Expect(recorder.channels()).To(Equal([]uint32{0}))
			data, _ := storage.Read(dstAddr+0x100, 16)
			Expect(data).To(Equal(make([]byte, 16)))
		})
	})

	Context("chaining", func() {
		It("should run the linked channel in the same job", func() {
			tracer := tracing.NewTotalTimeTracer(sim.NewWallClock(),
				tracing.KindIs("dma_transfer"))
			steps := tracing.NewStepCountTracer(tracing.AcceptAll)
			tracing.CollectTrace(comp, tracer)
			tracing.CollectTrace(comp, steps)

			reached := make(chan struct{})
			release := make(chan struct{})
			comp.AcceptHook(gateHook(reached, release))

			cfg0 := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)
			cfg0.SourceChainingEn = true
			cfg0.LinkedChannel = 1
			cfg1 := singleBlockConfig(srcAddr, dstAddr+0x100, 8, 8,
				recorder.callback)

			Expect(comp.Configure(0, cfg0)).To(Succeed())
			Expect(comp.Configure(1, cfg1)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			Eventually(reached).Should(Receive())

			state1, _ := comp.ChannelState(1)
			Expect(state1).To(Equal(StateStarted))

			close(release)
			comp.Wait()

			Expect(recorder.channels()).To(Equal([]uint32{0, 1}))
			Expect(recorder.statuses()).To(Equal(
				[]Status{StatusComplete, StatusComplete}))
			Expect(readDst(16)).To(Equal(src))
			data, _ := storage.Read(dstAddr+0x100, 8)
			Expect(data).To(Equal(src[:8]))

			state1, _ = comp.ChannelState(1)
			Expect(state1).To(Equal(StateStopped))

			Expect(tracer.TaskCount()).To(Equal(uint64(1)))
			Expect(steps.GetStepCount("burst")).To(Equal(uint64(5)))
			Expect(steps.GetStepCount("chain")).To(Equal(uint64(1)))
		})

		It("should reject links to channels out of range", func() {
			cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, nil)
			cfg.DestChainingEn = true
			cfg.LinkedChannel = 5

			Expect(comp.Configure(0, cfg)).To(MatchError(ErrInvalidArgument))
		})
	})

	Context("multiple blocks", func() {
		var blocks *BlockConfig

		BeforeEach(func() {
			comp.Close()
			comp = MakeBuilder().
				WithNumChannels(2).
				WithNumRequests(3).
				WithMemory(storage).
				Build("DMA")

			blocks = &BlockConfig{
				SourceAddress: srcAddr,
				DestAddress:   dstAddr,
				BlockSize:     8,
				NextBlock: &BlockConfig{
					SourceAddress: srcAddr + 8,
					DestAddress:   dstAddr + 8,
					BlockSize:     8,
				},
			}
		})

		It("should copy every block", func() {
			cfg := singleBlockConfig(0, 0, 0, 4, recorder.callback)
			cfg.HeadBlock = blocks
			cfg.BlockCount = 2

			Expect(comp.Configure(0, cfg)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			Expect(readDst(16)).To(Equal(src))
			Expect(recorder.statuses()).To(Equal([]Status{StatusComplete}))
		})

		It("should report each block if requested", func() {
			cfg := singleBlockConfig(0, 0, 0, 4, recorder.callback)
			cfg.HeadBlock = blocks
			cfg.BlockCount = 2
			cfg.CompleteCallbackEn = true

			Expect(comp.Configure(0, cfg)).To(Succeed())
			Expect(comp.Start(0)).To(Succeed())
			comp.Wait()

			Expect(recorder.statuses()).To(Equal(
				[]Status{StatusBlock, StatusComplete}))
		})

		It("should store blocks from the requested slot", func() {
			cfg := singleBlockConfig(0, 0, 0, 4, recorder.callback)
			cfg.HeadBlock = blocks
			cfg.BlockCount = 2
			cfg.Slot = 1

			Expect(comp.Configure(1, cfg)).To(Succeed())
			Expect(comp.Start(1)).To(Succeed())
			comp.Wait()

			Expect(readDst(16)).To(Equal(src))
		})

		It("should reject chains that do not fit after the slot", func() {
			cfg := singleBlockConfig(0, 0, 0, 4, nil)
			cfg.HeadBlock = blocks
			cfg.BlockCount = 2
			cfg.Slot = 2

			Expect(comp.Configure(0, cfg)).To(MatchError(ErrInvalidArgument))
		})
	})

	Context("unsupported operations", func() {
		It("should report not supported", func() {
			Expect(comp.Suspend(0)).To(MatchError(ErrNotSupported))
			Expect(comp.Resume(0)).To(MatchError(ErrNotSupported))
			Expect(comp.Reload(0, 0, 0, 0)).To(MatchError(ErrNotSupported))

			_, err := comp.GetStatus(0)
			Expect(err).To(MatchError(ErrNotSupported))

			_, err = comp.GetAttribute(AttrCopyAlignment)
			Expect(err).To(MatchError(ErrNotSupported))
		})
	})

	It("should log transfers with the log hook", func() {
		buf := new(bytes.Buffer)
		var lock sync.Mutex
		hook := NewLogHook(log.New(&lockedWriter{w: buf, lock: &lock}, "", 0))
		hook.Bursts = true
		comp.AcceptHook(hook)

		cfg := singleBlockConfig(srcAddr, dstAddr, 8, 4, nil)
		Expect(comp.Configure(0, cfg)).To(Succeed())
		Expect(comp.Start(0)).To(Succeed())
		comp.Wait()

		lock.Lock()
		defer lock.Unlock()
		Expect(buf.String()).To(ContainSubstring("DMA: ch0 block 0 burst"))
		Expect(buf.String()).To(ContainSubstring("DMA: ch0 complete"))
	})
})

var _ = Describe("Comp with mocked dependencies", func() {
	var (
		mockCtrl *gomock.Controller
		mem      *MockMemory
		hook     *MockHook
		comp     *Comp
		recorder *callbackRecorder
		lock     sync.Mutex
		ctxs     []sim.HookCtx
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mem = NewMockMemory(mockCtrl)
		hook = NewMockHook(mockCtrl)
		recorder = &callbackRecorder{}
		ctxs = nil

		hook.EXPECT().Func(gomock.Any()).Do(func(ctx sim.HookCtx) {
			lock.Lock()
			defer lock.Unlock()

			ctxs = append(ctxs, ctx)
		}).AnyTimes()

		comp = MakeBuilder().
			WithNumChannels(1).
			WithMemory(mem).
			Build("DMA")
		comp.AcceptHook(hook)
	})

	AfterEach(func() {
		comp.Close()
		mockCtrl.Finish()
	})

	positions := func() []*sim.HookPos {
		lock.Lock()
		defer lock.Unlock()

		var poses []*sim.HookPos
		for _, ctx := range ctxs {
			poses = append(poses, ctx.Pos)
		}

		return poses
	}

	It("should read the source and write the destination per burst", func() {
		first := mem.EXPECT().Read(srcAddr, uint64(4)).Return([]byte{1, 2, 3, 4}, nil)
		second := mem.EXPECT().Write(dstAddr, []byte{1, 2, 3, 4}).Return(nil).After(first)
		third := mem.EXPECT().Read(srcAddr+4, uint64(2)).Return([]byte{5, 6}, nil).After(second)
		mem.EXPECT().Write(dstAddr+4, []byte{5, 6}).Return(nil).After(third)

		cfg := singleBlockConfig(srcAddr, dstAddr, 6, 4, recorder.callback)
		Expect(comp.Configure(0, cfg)).To(Succeed())
		Expect(comp.Start(0)).To(Succeed())
		comp.Wait()

		Expect(recorder.statuses()).To(Equal([]Status{StatusComplete}))
		Expect(positions()).To(Equal([]*sim.HookPos{
			tracing.HookPosTaskStart,
			HookPosBurstCopied,
			tracing.HookPosTaskStep,
			HookPosBurstCopied,
			tracing.HookPosTaskStep,
			HookPosBlockDone,
			tracing.HookPosTaskStep,
			HookPosChannelDone,
			tracing.HookPosTaskEnd,
		}))
	})

	It("should stop the channel on a memory fault", func() {
		mem.EXPECT().Read(srcAddr, uint64(4)).Return(nil, memory.ErrOutOfRange)

		cfg := singleBlockConfig(srcAddr, dstAddr, 8, 4, recorder.callback)
		Expect(comp.Configure(0, cfg)).To(Succeed())
		Expect(comp.Start(0)).To(Succeed())
		comp.Wait()

		Expect(recorder.statuses()).To(Equal([]Status{StatusMemoryError}))
		Expect(StatusMemoryError.Err()).To(MatchError(ErrIO))

		state, _ := comp.ChannelState(0)
		Expect(state).To(Equal(StateStopped))
	})
})

var _ = Describe("Invariant violations", func() {
	var (
		storage    *memory.Storage
		comp       *Comp
		violations chan error
		recorder   *callbackRecorder
	)

	BeforeEach(func() {
		storage = memory.NewStorage(1 * memory.MB)
		violations = make(chan error, 4)
		recorder = &callbackRecorder{}
		comp = MakeBuilder().
			WithNumChannels(2).
			WithMemory(storage).
			WithInvariantViolationHandler(func(err error) {
				violations <- err
			}).
			Build("DMA")
	})

	AfterEach(func() {
		comp.Close()
	})

	It("should report a channel linked to itself", func() {
		cfg := singleBlockConfig(srcAddr, dstAddr, 8, 4, recorder.callback)
		cfg.SourceChainingEn = true
		cfg.LinkedChannel = 0

		Expect(comp.Configure(0, cfg)).To(Succeed())
		Expect(comp.Start(0)).To(Succeed())
		comp.Wait()

		var err error
		Eventually(violations).Should(Receive(&err))
		Expect(err).To(MatchError(ErrInvariantViolated))

		var violation *InvariantViolation
		Expect(errors.As(err, &violation)).To(BeTrue())
		Expect(violation.Channel).To(Equal(uint32(0)))
		Expect(recorder.statuses()).To(Equal([]Status{StatusComplete}))
	})

	It("should report a channel reconfigured during a transfer", func() {
		cfg := singleBlockConfig(srcAddr, dstAddr, 16, 4, recorder.callback)

		var once sync.Once
		comp.AcceptHook(burstHook(func(info BurstInfo) {
			once.Do(func() {
				_ = comp.Stop(0)
				_ = comp.Configure(0, cfg)
			})
		}))

		Expect(comp.Configure(0, cfg)).To(Succeed())
		Expect(comp.Start(0)).To(Succeed())
		comp.Wait()

		var err error
		Eventually(violations).Should(Receive(&err))
		Expect(err).To(MatchError(ErrInvariantViolated))
		Expect(err.Error()).To(ContainSubstring("loaded"))
	})
})

var _ = Describe("Builder", func() {
	It("should panic on invalid parameters", func() {
		storage := memory.NewStorage(1 * memory.KB)

		Expect(func() {
			MakeBuilder().WithNumChannels(0).WithMemory(storage).Build("DMA")
		}).To(Panic())
		Expect(func() {
			MakeBuilder().WithNumChannels(33).WithMemory(storage).Build("DMA")
		}).To(Panic())
		Expect(func() {
			MakeBuilder().WithNumRequests(0).WithMemory(storage).Build("DMA")
		}).To(Panic())
		Expect(func() {
			MakeBuilder().Build("DMA")
		}).To(Panic())
	})

	It("should expose the construction parameters", func() {
		comp := MakeBuilder().
			WithNumChannels(8).
			WithNumRequests(2).
			WithAddressAlignment(4).
			WithSizeAlignment(8).
			WithCopyAlignment(16).
			WithMemory(memory.NewStorage(1 * memory.KB)).
			Build("DMA")
		defer comp.Close()

		Expect(comp.NumChannels()).To(Equal(uint32(8)))
		Expect(comp.NumRequests()).To(Equal(uint32(2)))
		Expect(comp.Alignment()).To(Equal(Alignment{Address: 4, Size: 8, Copy: 16}))
		Expect(comp.Snapshot()).To(HaveLen(8))
		Expect(comp.Idle()).To(BeTrue())
	})
})
