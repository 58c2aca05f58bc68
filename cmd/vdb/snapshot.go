package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vdb"
	"github.com/hupe1980/vdb/engine"
)

var (
	snapshotOut string
	restoreIn   string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <name>",
	Short: "Write a compressed snapshot of a collection to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := vdb.Open(dataDir, args[0],
			engine.WithLogger(newLogger().Logger))
		if err != nil {
			return err
		}
		defer col.Close()

		f, err := os.Create(snapshotOut)
		if err != nil {
			return err
		}

		if err := col.Snapshot(f); err != nil {
			f.Close()
			os.Remove(snapshotOut)

			return err
		}

		if err := f.Close(); err != nil {
			return err
		}

		fmt.Printf("Snapshot of %q written to %s\n", args[0], snapshotOut)

		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Recreate a collection from a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(restoreIn)
		if err != nil {
			return err
		}
		defer f.Close()

		col, err := vdb.Restore(dataDir, args[0], f,
			engine.WithLogger(newLogger().Logger))
		if err != nil {
			return err
		}
		defer col.Close()

		fmt.Printf("Restored %q (count=%d)\n", args[0], col.Info().NumVectors)

		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "output file (required)")
	_ = snapshotCmd.MarkFlagRequired("out")

	restoreCmd.Flags().StringVarP(&restoreIn, "in", "i", "", "snapshot file to read (required)")
	_ = restoreCmd.MarkFlagRequired("in")
}
