package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/dmaemul/dma"
	"github.com/sarchlab/dmaemul/sim"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string
	Name       string
	StartTime  time.Time
	Total      uint64
	Finished   uint64
	InProgress uint64
}

type progressBarView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (b *ProgressBar) view() progressBarView {
	b.Lock()
	defer b.Unlock()

	return progressBarView{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// ProgressHook counts the bytes copied by a controller into a progress bar.
// The remaining bytes of the current block are reported as in progress.
type ProgressHook struct {
	bar *ProgressBar
}

// NewProgressHook creates a hook that updates bar.
func NewProgressHook(bar *ProgressBar) *ProgressHook {
	return &ProgressHook{bar: bar}
}

// Func updates the progress bar on every copied burst.
func (h *ProgressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != dma.HookPosBurstCopied {
		return
	}

	burst := ctx.Item.(dma.BurstInfo)

	h.bar.Lock()
	defer h.bar.Unlock()

	h.bar.Finished += uint64(burst.Bytes)
	h.bar.InProgress = uint64(burst.Remaining)
}
