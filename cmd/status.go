// Package cmd — status command.
// Local-only view of the working set: reconstructs it from the templates
// directory the same way a resumed discover run would, and reports how
// close the collection is to the target. Makes no remote calls.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/tmplscan/core/config"
	"github.com/gaurav-prasanna/tmplscan/core/output"
	"github.com/gaurav-prasanna/tmplscan/core/phash"
	"github.com/gaurav-prasanna/tmplscan/core/render"
	"github.com/gaurav-prasanna/tmplscan/templateset"
)

var (
	statusConfig string
	statusDir    string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the state of the local template collection",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusConfig, "config", "tmplscan.yaml", "Config file path")
	statusCmd.Flags().StringVar(&statusDir, "dir", "", "Templates directory (overrides config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(statusConfig)
	if err != nil {
		return err
	}
	if statusDir != "" {
		cfg.TemplatesDir = statusDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	writer, err := output.New(cfg.TemplatesDir)
	if err != nil {
		return err
	}
	files, err := writer.ListBacking()
	if err != nil {
		return err
	}

	extractor := phash.New(render.New())
	oracle := templateset.Oracle{Threshold: cfg.HashThreshold}

	set, report, err := templateset.Bootstrap(files, extractor, oracle, cfg.TargetLimit)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Fprintf(os.Stdout, "Templates directory: %s\n", cfg.TemplatesDir)
	fmt.Fprintf(os.Stdout, "Backing files:       %d\n", len(files))
	fmt.Fprintf(os.Stdout, "Unique templates:    %d / %d\n", set.Size(), cfg.TargetLimit)
	fmt.Fprintf(os.Stdout, "Remaining:           %d\n", remaining(set.Size(), cfg.TargetLimit))
	if report.Duplicates > 0 {
		fmt.Fprintf(os.Stdout, "Local near-dups:     %d (excluded from the set)\n", report.Duplicates)
	}
	if len(report.Failed) > 0 {
		fmt.Fprintf(os.Stdout, "Unreadable files:    %d\n", len(report.Failed))
		for _, f := range report.Failed {
			fmt.Fprintf(os.Stderr, "  ✗ %s\n", f)
		}
	}

	if d, ok := minPairwiseDistance(set); ok {
		fmt.Fprintf(os.Stdout, "Closest pair:        %d bits apart (threshold %d)\n", d, cfg.HashThreshold)
	}
	return nil
}

func remaining(size, limit int) int {
	if size >= limit {
		return 0
	}
	return limit - size
}

// minPairwiseDistance scans all entry pairs; fine for a capped set.
func minPairwiseDistance(set *templateset.Set) (int, bool) {
	entries := set.Entries()
	if len(entries) < 2 {
		return 0, false
	}
	min := entries[0].Fingerprint.Distance(entries[1].Fingerprint)
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if d := entries[i].Fingerprint.Distance(entries[j].Fingerprint); d < min {
				min = d
			}
		}
	}
	return min, true
}
