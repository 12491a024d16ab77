// Package cmd provides the command-line interface of the DMA emulator.
package cmd

import (
	"github.com/sarchlab/dmaemul/config"
	"github.com/sarchlab/dmaemul/dma"
	"github.com/sarchlab/dmaemul/memory"
	"github.com/sarchlab/dmaemul/sim"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dmaemul",
	Short: "dmaemul runs and monitors an emulated DMA controller.",
	Long: `dmaemul runs and monitors an emulated DMA controller. The ` +
		`controller is configured from DMAEMUL_* environment variables and ` +
		`an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env", nil,
		"Read controller parameters from these .env files.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	files, err := cmd.Flags().GetStringSlice("env")
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}

	if cfg.ParallelIDs {
		sim.UseParallelIDGenerator()
	}

	return cfg, nil
}

func buildController(cfg config.Config) (*dma.Comp, *memory.Storage) {
	mem := cfg.NewMemory()
	comp := cfg.Apply(dma.MakeBuilder()).
		WithMemory(mem).
		Build(cfg.Name)

	return comp, mem
}
