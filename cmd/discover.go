// Package cmd — discover command.
// This is the main command that orchestrates the engine:
// bootstrap → scan → per-object evaluation → summary.
//
// It handles config/flag merging, component wiring, and graceful
// interruption (Ctrl-C finishes the current candidate, prints the
// summary, and leaves the directory ready for resume).
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/tmplscan/core"
	"github.com/gaurav-prasanna/tmplscan/core/config"
	"github.com/gaurav-prasanna/tmplscan/core/output"
	"github.com/gaurav-prasanna/tmplscan/core/phash"
	"github.com/gaurav-prasanna/tmplscan/core/render"
	"github.com/gaurav-prasanna/tmplscan/core/store"
	"github.com/gaurav-prasanna/tmplscan/scan"
	"github.com/gaurav-prasanna/tmplscan/templateset"
)

// Flag variables.
var (
	flagConfig    string
	flagBucket    string
	flagPrefix    string
	flagLimit     int
	flagThreshold int
	flagDir       string
	flagVerbose   bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan the bucket and accumulate unique templates",
	Long: `Discover bootstraps the working set from the local templates directory,
then scans the bucket. Each new PDF is fingerprinted and compared against
every accepted template; only visually-distinct documents are kept.

Examples:
  tmplscan discover
  tmplscan discover --bucket fink-hotel-invoice-scraped --limit 500
  tmplscan discover --threshold 10 --dir ./templates`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&flagConfig, "config", "tmplscan.yaml", "Config file path")
	discoverCmd.Flags().StringVar(&flagBucket, "bucket", "", "Bucket name (overrides config)")
	discoverCmd.Flags().StringVar(&flagPrefix, "prefix", "", "Key prefix to scan (overrides config)")
	discoverCmd.Flags().IntVar(&flagLimit, "limit", 0, "Target template count (overrides config)")
	discoverCmd.Flags().IntVar(&flagThreshold, "threshold", -1, "Hamming distance at or below which two pages are duplicates")
	discoverCmd.Flags().StringVar(&flagDir, "dir", "", "Templates directory (overrides config)")
	discoverCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Report every evaluated candidate, not just acceptances")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateRemote(); err != nil {
		return err
	}

	accessKey, secretKey, err := cfg.Credentials()
	if err != nil {
		return err
	}

	// Interruption is cooperative: observed between candidates.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s3store, err := store.New(ctx, store.Options{
		Bucket:    cfg.Bucket,
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	})
	if err != nil {
		return fmt.Errorf("initializing object store: %w", err)
	}

	writer, err := output.New(cfg.TemplatesDir)
	if err != nil {
		return err
	}

	extractor := phash.New(render.New())
	oracle := templateset.Oracle{Threshold: cfg.HashThreshold}

	set, err := bootstrap(writer, extractor, oracle, cfg.TargetLimit)
	if err != nil {
		return err
	}

	if set.IsFull() {
		fmt.Fprintf(os.Stdout, "Target limit of %d already reached. Nothing to do.\n", cfg.TargetLimit)
		return nil
	}

	fmt.Fprintf(os.Stdout, "Scanning s3://%s/%s (threshold %d, target %d)...\n",
		cfg.Bucket, cfg.Prefix, cfg.HashThreshold, cfg.TargetLimit)

	driver := scan.New(s3store, extractor, oracle, set, writer, cfg.Prefix)
	driver.Progress = reportProgress(set)

	summary, err := driver.Run(ctx)
	printSummary(summary, cfg.TemplatesDir)

	if summary.Reason == scan.ReasonFatalError {
		return fmt.Errorf("scan aborted: %w", err)
	}
	return nil
}

// loadConfig merges the config file with command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagBucket != "" {
		cfg.Bucket = flagBucket
	}
	if flagPrefix != "" {
		cfg.Prefix = flagPrefix
	}
	if flagLimit > 0 {
		cfg.TargetLimit = flagLimit
	}
	if flagThreshold >= 0 {
		cfg.HashThreshold = flagThreshold
	}
	if flagDir != "" {
		cfg.TemplatesDir = flagDir
	}
	return cfg, nil
}

// bootstrap reconstructs the working set from the backing directory.
func bootstrap(writer *output.Writer, extractor core.Extractor, oracle templateset.Oracle, capacity int) (*templateset.Set, error) {
	files, err := writer.ListBacking()
	if err != nil {
		return nil, err
	}

	if len(files) > 0 {
		fmt.Fprintf(os.Stdout, "Found %d existing templates locally. Hashing to resume...\n", len(files))
	}

	set, report, err := templateset.Bootstrap(files, extractor, oracle, capacity)
	if err != nil {
		return nil, err
	}

	for _, f := range report.Failed {
		fmt.Fprintf(os.Stderr, "  ✗ Could not fingerprint %s, skipping\n", f)
	}
	if report.Duplicates > 0 {
		fmt.Fprintf(os.Stderr, "  ✗ %d local files are near-duplicates and were excluded from the set\n", report.Duplicates)
	}
	fmt.Fprintf(os.Stdout, "Ready. Starting scan with %d unique templates in memory.\n", set.Size())
	return set, nil
}

// reportProgress prints per-candidate lines in the chosen verbosity.
func reportProgress(set *templateset.Set) func(scan.Result) {
	return func(r scan.Result) {
		switch r.Outcome {
		case scan.OutcomeAccepted:
			fmt.Fprintf(os.Stdout, "  ✓ [%d/%d] %s\n", set.Size(), set.Capacity(), r.Key)
		case scan.OutcomeSkippedRetrieval, scan.OutcomeSkippedUnrenderable, scan.OutcomeSkippedPersist:
			fmt.Fprintf(os.Stderr, "  ✗ %s: %s (%v)\n", r.Key, r.Outcome, r.Err)
		default:
			if flagVerbose {
				fmt.Fprintf(os.Stdout, "  - %s: %s\n", r.Key, r.Outcome)
			}
		}
	}
}

// printSummary reports the terminal state and per-outcome counters.
func printSummary(s scan.Summary, dir string) {
	bold := color.New(color.Bold)
	fmt.Fprintln(os.Stdout)

	switch s.Reason {
	case scan.ReasonTargetReached:
		bold.Fprintf(os.Stdout, "Target of %d templates reached. Discovery complete.\n", s.Capacity)
	case scan.ReasonSourceExhausted:
		bold.Fprintln(os.Stdout, "Bucket fully scanned.")
	case scan.ReasonInterrupted:
		bold.Fprintln(os.Stdout, "Interrupted. Progress is saved; run again to resume.")
	case scan.ReasonFatalError:
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "Scan failed; partial progress is saved.")
	}

	fmt.Fprintf(os.Stdout, "Objects evaluated:  %d\n", s.Listed)
	fmt.Fprintf(os.Stdout, "Accepted this run:  %d\n", s.Accepted())
	fmt.Fprintf(os.Stdout, "Near-duplicates:    %d\n", s.Counts[scan.OutcomeDuplicate])
	fmt.Fprintf(os.Stdout, "Already on disk:    %d\n", s.Counts[scan.OutcomeSkippedExists])
	skipped := s.Counts[scan.OutcomeSkippedNotPDF] +
		s.Counts[scan.OutcomeSkippedRetrieval] +
		s.Counts[scan.OutcomeSkippedUnrenderable] +
		s.Counts[scan.OutcomeSkippedPersist]
	fmt.Fprintf(os.Stdout, "Skipped:            %d\n", skipped)
	fmt.Fprintf(os.Stdout, "Unique templates in %s: %d\n", dir, s.SetSize)
}
