package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vdb"
	"github.com/hupe1980/vdb/engine"
	"github.com/hupe1980/vdb/model"
)

var dumpLimit uint64

var dumpCmd = &cobra.Command{
	Use:   "dump <name>",
	Short: "Print stored items in insertion order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := vdb.Open(dataDir, args[0],
			engine.WithLogger(newLogger().Logger))
		if err != nil {
			return err
		}
		defer col.Close()

		var printed uint64
		err = col.Iterate(func(item *model.Item) bool {
			if dumpLimit > 0 && printed >= dumpLimit {
				return false
			}
			printed++

			fmt.Printf("%s\t%v", item.ID, item.Vector.Data())
			if len(item.Metadata) > 0 {
				fmt.Printf("\t%s", item.Metadata)
			}
			fmt.Println()

			return true
		})
		if err != nil {
			return err
		}

		fmt.Printf("%d item(s)\n", printed)

		return nil
	},
}

func init() {
	dumpCmd.Flags().Uint64Var(&dumpLimit, "limit", 0, "stop after this many items (0 = all)")
}
