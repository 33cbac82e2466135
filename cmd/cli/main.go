package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rngbench",
		Short: "rngbench CLI for generating bit streams and testing their randomness",
		Long: `Generate bit streams from pseudo-random generators, score them with the
statistical battery, time generators against each other and build
generator x test comparison matrices.

Configuration is read from the environment (and .env). With DATABASE_URL set
results are stored in PostgreSQL; otherwise they live for the process only.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newGenerateCmd(),
		newTestCmd(),
		newBatteryCmd(),
		newBenchCmd(),
		newCompareCmd(),
		newListCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
