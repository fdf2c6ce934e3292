package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Deterministic exit codes for CI gating.
const (
	ExitSuccess      = 0
	ExitNonCompliant = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "arbiter",
	Short: "Compliance audit engine for marketing and advertising content",
	Long: "Arbiter audits submitted content against compliance rule packs using " +
		"generative models, validates every finding against output policy, and " +
		"emits stable, deduplicated results with deterministic exit codes.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(packsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print arbiter version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "arbiter version %s\n", version)
	},
}
