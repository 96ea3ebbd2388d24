package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/attention"
	"github.com/viewguard/viewguard/internal/category"
)

var weightsSnapshot string

var weightsCmd = &cobra.Command{
	Use:   "weights [category...]",
	Short: "Print per-modality attention weights",
	Long:  "Prints the current attention weight for each category and modality. With no arguments all known categories are listed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		attn := attention.New(cfg.AttentionConfig(), zap.L())
		if weightsSnapshot != "" {
			if err := restoreSnapshot(attn, weightsSnapshot); err != nil {
				return err
			}
		}

		cats := category.All()
		if len(args) > 0 {
			cats = cats[:0]
			for _, a := range args {
				c := category.Category(a)
				if !category.Known(c) {
					return fmt.Errorf("unknown category %q", a)
				}
				cats = append(cats, c)
			}
		}

		out := make(map[category.Category]map[category.Modality]float64, len(cats))
		for _, c := range cats {
			out[c] = attn.Weights(c)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	weightsCmd.Flags().StringVar(&weightsSnapshot, "snapshot", "", "attention snapshot to load before printing")
}
