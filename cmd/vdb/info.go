package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vdb"
	"github.com/hupe1980/vdb/engine"
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show collection shape and vector count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := vdb.Open(dataDir, args[0],
			engine.WithLogger(newLogger().Logger))
		if err != nil {
			return err
		}
		defer col.Close()

		info := col.Info()
		fmt.Printf("Name:      %s\n", info.Name)
		fmt.Printf("Dimension: %d\n", info.Dimension)
		fmt.Printf("Metric:    %s\n", info.Metric)
		fmt.Printf("Vectors:   %d\n", info.NumVectors)

		return nil
	},
}
