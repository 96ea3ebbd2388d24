package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/config"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "viewguard",
	Short: "Content-warning fusion engine",
	Long:  "Fuses noisy multi-modal content detections into calibrated, deduplicated warnings.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.Validate(c); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
		cfg = c

		if _, err := config.InitLogger(cfg.Logging); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "viewguard.yaml", "path to config file")
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(weightsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
