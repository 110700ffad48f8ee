// Package cmd implements the CLI commands for tmplscan using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tmplscan",
	Short: "tmplscan — discover visually-distinct document templates in an S3 bucket",
	Long: `tmplscan streams PDF candidates from an S3 bucket, fingerprints the first
page of each, and keeps a bounded local set of visually-distinct templates.
Runs are resumable: the templates directory itself is the saved state.

Usage:
  tmplscan discover [flags]
  tmplscan status [flags]`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Credentials and bucket overrides may live in a .env file.
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
