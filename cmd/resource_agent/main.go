// Package main provides the entry point for the learning resource curator CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "resource_agent",
		Short:         "Learning Resource Curator",
		Long:          "Resource Curator turns onboarding answers into a categorized bundle of learning resources found through web search.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a JSON or YAML config file (environment variables override file values)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print profile, queries and bundle for each run")

	cmd.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newShowCmd(opts),
		newImportAnswersCmd(opts),
	)
	return cmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
