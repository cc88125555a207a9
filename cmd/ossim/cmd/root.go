// Package cmd provides the command-line interface for ossim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ossim",
		Short: "ossim simulates the TLB, the memory, and the scheduler of an OS.",
		Long: `ossim loads a workload of processes, schedules them with a ` +
			`multi-level queue, and runs their memory instructions through ` +
			`a TLB backed by a byte store.`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())

	return root
}

// Execute runs the root command and exits through atexit so that the
// registered exit handlers run.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
