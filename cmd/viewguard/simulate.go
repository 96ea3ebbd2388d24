package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/replay"
)

var (
	simSeconds float64
	simSeed    int64
	simOutput  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a synthetic JSONL event stream for replay",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := os.Stdout
		if simOutput != "" && simOutput != "-" {
			f, err := os.Create(simOutput)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}
		n, err := replay.Simulate(out, simSeconds, simSeed)
		if err != nil {
			return err
		}
		zap.L().Info("simulated stream written", zap.Int("events", n))
		return nil
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simSeconds, "seconds", 600, "length of the simulated session")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 1, "random seed; same seed yields the same stream")
	simulateCmd.Flags().StringVarP(&simOutput, "output", "o", "-", "output file ('-' for stdout)")
}
