package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "vcache",
		Short: "Observable keyed cache inspector",
		Long: `vcache runs an observable keyed cache behind an HTTP inspector.

Components bound to the cache re-render whenever a value changes
identity. The inspector lets you read and write keys, watch
invalidations over WebSocket, and save or restore snapshots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to vcache.json (default: ./vcache.json if present)")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		snapshotCmd(&configPath),
		versionCmd(),
	)

	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
