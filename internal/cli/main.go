// Package cli is the onboarding command line: the HTTP API server and the
// offline tools that share its wiring.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Main runs the root command and exits non-zero on error.
func Main() {
	_ = godotenv.Load()

	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "onboarding",
		Short:         "Turn screen recordings into step-by-step onboarding guides",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.AddCommand(
		newServeCommand(),
		newProcessCommand(),
		newPhrasesCommand(),
		newEvictFramesCommand(),
	)
	return root
}
