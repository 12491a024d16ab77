package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/dmaemul/config"
	"github.com/sarchlab/dmaemul/datarecording"
	"github.com/sarchlab/dmaemul/dma"
	"github.com/sarchlab/dmaemul/sim"
	"github.com/sarchlab/dmaemul/tracing"
	"github.com/spf13/cobra"
)

var errCopyFailed = errors.New("copy failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Copy a block of memory with the emulated controller.",
	Long: "`run` fills a source region with a pattern, copies it with one " +
		"channel of the controller, and checks the destination.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts, err := copyOptionsFromFlags(cmd, cfg)
		if err != nil {
			return err
		}

		return runWithConfig(cmd, cfg, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.Uint32("channel", 0, "The channel that performs the copy.")
	f.Uint64("src", 0, "The source address.")
	f.Int64("dst", -1,
		"The destination address. Defaults to the middle of the memory.")
	f.String("size", "4KB", "The number of bytes to copy.")
	f.Uint32("burst", 64, "The burst length in bytes.")
	f.Uint32("blocks", 1, "The number of blocks the copy is split into.")
	f.Int("chain-to", -1,
		"Chain into this channel, which copies the destination once more.")
	f.Bool("block-callbacks", false, "Report the completion of every block.")
	f.String("trace", "",
		"Record the transfers into this SQLite file (without extension).")
	f.BoolP("verbose", "v", false, "Log blocks and channels.")
	f.Bool("bursts", false, "Log every burst. Implies --verbose.")
}

func copyOptionsFromFlags(
	cmd *cobra.Command,
	cfg config.Config,
) (copyOptions, error) {
	f := cmd.Flags()
	opts := copyOptions{}

	opts.Channel, _ = f.GetUint32("channel")
	opts.Source, _ = f.GetUint64("src")
	opts.Burst, _ = f.GetUint32("burst")
	opts.Blocks, _ = f.GetUint32("blocks")
	opts.ChainTo, _ = f.GetInt("chain-to")
	opts.BlockCallbacks, _ = f.GetBool("block-callbacks")

	sizeStr, _ := f.GetString("size")
	size, err := config.ParseSize(sizeStr)
	if err != nil {
		return opts, fmt.Errorf("invalid size %q: %w", sizeStr, err)
	}

	opts.Size = size

	dst, _ := f.GetInt64("dst")
	if dst < 0 {
		opts.Dest = cfg.MemorySize / 2
	} else {
		opts.Dest = uint64(dst)
	}

	return opts, nil
}

func runWithConfig(
	cmd *cobra.Command,
	cfg config.Config,
	opts copyOptions,
	out io.Writer,
) error {
	comp, mem := buildController(cfg)
	defer comp.Close()

	verbose, _ := cmd.Flags().GetBool("verbose")
	bursts, _ := cmd.Flags().GetBool("bursts")
	if verbose || bursts {
		h := dma.NewLogHook(log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
		h.Bursts = bursts
		comp.AcceptHook(h)
	}

	clock := sim.NewWallClock()
	transferTime := tracing.NewTotalTimeTracer(clock,
		tracing.KindIs("dma_transfer"))
	busyTime := tracing.NewBusyTimeTracer(clock, nil)
	steps := tracing.NewStepCountTracer(tracing.AcceptAll)
	tracing.CollectTrace(comp, transferTime)
	tracing.CollectTrace(comp, busyTime)
	tracing.CollectTrace(comp, steps)

	traceFile, _ := cmd.Flags().GetString("trace")
	if traceFile == "" {
		traceFile = cfg.TraceFile
	}

	if traceFile != "" {
		recorder := datarecording.New(traceFile)
		defer recorder.Close()

		tracer := tracing.NewDBTracer(clock, recorder)
		defer tracer.Terminate()

		tracing.CollectTrace(comp, tracer)
	}

	result, err := runCopy(comp, mem, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "controller: %s, %d channels, %d requests\n",
		comp.Name(), comp.NumChannels(), comp.NumRequests())
	for _, s := range result.Statuses {
		fmt.Fprintf(out, "ch%d: %s\n", s.Channel, s.Status)
	}

	fmt.Fprintf(out, "copied %d bytes in %d bursts, %d transfers, %.6fs\n",
		opts.Size, steps.GetStepCount("burst"), transferTime.TaskCount(),
		float64(transferTime.TotalTime()))
	fmt.Fprintf(out, "worker busy %.6fs of %.6fs\n",
		float64(busyTime.BusyTime()), float64(clock.CurrentTime()))
	fmt.Fprintf(out, "verified: %t\n", result.Verified)

	if !result.Verified || !result.Complete(opts) {
		return errCopyFailed
	}

	return nil
}
