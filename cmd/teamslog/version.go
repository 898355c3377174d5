package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Set via ldflags at build time
	version = "dev"
	commit  = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("teamslog version %s\n", version)
			fmt.Printf("  commit:     %s\n", commit)
			fmt.Printf("  go version: %s\n", runtime.Version())
		},
	}
}
