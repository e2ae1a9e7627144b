// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "corpuswatch",
		Short: "Analyze corpus collection pipeline telemetry",
		Long: `corpuswatch analyzes run reports emitted by corpus collection pipelines.
It reconciles the different report schemas the pipelines produce and
computes per-source quality, rejection and volume analytics.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newReportCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
