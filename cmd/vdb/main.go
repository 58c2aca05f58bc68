// Command vdb is the command-line front end for the vdb collection store.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vdb"
)

const version = "0.1.0"

var (
	dataDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vdb",
	Short: "vdb - append-only vector collection store",
	Long: `vdb manages named collections of embedding vectors with a fixed
dimension and distance metric. Items are stored durably through a
write-ahead log and read back in insertion order.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "./data", "base directory for collections")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(appendCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(restoreCmd)
}

func newLogger() *vdb.Logger {
	if verbose {
		return vdb.NewTextLogger(slog.LevelDebug)
	}
	return vdb.NoopLogger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (%s)\n", err, vdb.StatusOf(err))
		os.Exit(1)
	}
}
