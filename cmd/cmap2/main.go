// Package main provides the cmap2 CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cmap2",
		Short: "cmap2 - concurrent 2D combinatorial map engine",
		Long: `cmap2 is a Go library and CLI for building and overlaying 2D
combinatorial maps: regular grids, VTK unstructured meshes, and the
grisubal polyline-overlay kernel that embeds a boundary into a grid-map
and optionally clips one side of it away.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cmap2 v%s (%s)\n", version, commit)
		},
	})

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newGrisubalCmd())
	rootCmd.AddCommand(newStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
