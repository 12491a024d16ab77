package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/sarchlab/dmaemul/dma"
	"github.com/sarchlab/dmaemul/memory"
	"github.com/sarchlab/dmaemul/monitoring"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the monitoring page of an emulated controller.",
	Long: "`serve` builds a controller and exposes its channels through the " +
		"monitoring server until interrupted. With --demo, channel 0 " +
		"repeats a copy so that the page shows activity.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.MonitorPort
		}

		open, _ := cmd.Flags().GetBool("open")
		demo, _ := cmd.Flags().GetDuration("demo")

		comp, mem := buildController(cfg)
		defer comp.Close()

		m := monitoring.NewMonitor().WithPortNumber(port)
		m.RegisterComponent(comp)
		actualPort := m.StartServer()

		if open {
			url := fmt.Sprintf("http://localhost:%d", actualPort)
			if err := browser.OpenURL(url); err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open %s: %v\n", url, err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		if demo > 0 {
			go runDemo(ctx, m, comp, mem, demo)
		}

		<-ctx.Done()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.Int("port", 0, "The port of the monitoring server.")
	f.Bool("open", false, "Open the monitoring page in a browser.")
	f.Duration("demo", 0, "Repeat a copy on channel 0 with this period.")
}

func runDemo(
	ctx context.Context,
	m *monitoring.Monitor,
	comp *dma.Comp,
	mem *memory.Storage,
	period time.Duration,
) {
	opts := copyOptions{
		Size:    16 * memory.KB,
		Burst:   64,
		Blocks:  comp.NumRequests(),
		ChainTo: -1,
		Dest:    defaultDest(mem),
	}

	bar := m.CreateProgressBar(comp.Name()+" ch0", 0)
	comp.AcceptHook(monitoring.NewProgressHook(bar))

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bar.Lock()
			bar.Total += opts.Size
			bar.Unlock()

			_, err := runCopy(comp, mem, opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Demo copy failed: %v\n", err)
			}
		}
	}
}
