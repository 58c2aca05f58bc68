package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vdb"
	"github.com/hupe1980/vdb/engine"
)

var (
	appendID     string
	appendVector string
	appendMeta   string
)

var appendCmd = &cobra.Command{
	Use:   "append <name>",
	Short: "Append one vector to a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vector, err := parseVector(appendVector)
		if err != nil {
			return err
		}

		var metadata []byte
		if appendMeta != "" {
			metadata = []byte(appendMeta)
		}

		col, err := vdb.Open(dataDir, args[0],
			engine.WithLogger(newLogger().Logger))
		if err != nil {
			return err
		}
		defer col.Close()

		if err := col.Append(appendID, vector, metadata); err != nil {
			return err
		}

		fmt.Printf("Appended %q (count=%d)\n", appendID, col.Info().NumVectors)

		return nil
	},
}

func init() {
	appendCmd.Flags().StringVar(&appendID, "id", "", "item identifier (required)")
	appendCmd.Flags().StringVar(&appendVector, "vector", "", "comma-separated float values (required)")
	appendCmd.Flags().StringVar(&appendMeta, "meta", "", "opaque metadata payload")
	_ = appendCmd.MarkFlagRequired("id")
	_ = appendCmd.MarkFlagRequired("vector")
}

func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")

	vector := make([]float32, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parse vector component %q: %w", p, err)
		}
		vector = append(vector, float32(f))
	}

	return vector, nil
}
