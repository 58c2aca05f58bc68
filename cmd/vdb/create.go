package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vdb"
	"github.com/hupe1980/vdb/engine"
	"github.com/hupe1980/vdb/model"
)

var (
	createDim    uint32
	createMetric string
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, err := model.ParseMetric(createMetric)
		if err != nil {
			return err
		}

		col, err := vdb.Create(dataDir, args[0], createDim, metric,
			engine.WithLogger(newLogger().Logger))
		if err != nil {
			return err
		}
		defer col.Close()

		fmt.Printf("Created collection %q (dimension=%d, metric=%s)\n", args[0], createDim, metric)

		return nil
	},
}

func init() {
	createCmd.Flags().Uint32Var(&createDim, "dim", 0, "embedding dimension (required)")
	createCmd.Flags().StringVar(&createMetric, "metric", "cosine", "distance metric (cosine or euclidean)")
	_ = createCmd.MarkFlagRequired("dim")
}
