package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bibtools/bibfix/internal/bibtex"
	"github.com/bibtools/bibfix/internal/config"
	"github.com/bibtools/bibfix/internal/crossref"
	"github.com/bibtools/bibfix/internal/match"
	"github.com/bibtools/bibfix/internal/reconcile"
)

var (
	fixRemove    []string
	fixThreshold float64
	fixRows      int
	fixDryRun    bool
)

func init() {
	fixCmd.Flags().StringSliceVar(&fixRemove, "remove", reconcile.DefaultRemoveFields,
		"Fields to remove from every entry")
	fixCmd.Flags().Float64Var(&fixThreshold, "threshold", match.DefaultThreshold,
		"Similarity threshold for accepting matches (0.0-1.0)")
	fixCmd.Flags().IntVar(&fixRows, "rows", crossref.DefaultRows,
		"Maximum candidates requested per entry")
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false,
		"Report what would change without writing output files")
	rootCmd.AddCommand(fixCmd)
}

var fixCmd = &cobra.Command{
	Use:   "fix <input.bib> <output.bib>",
	Short: "Add DOIs and standardize fields from the registry",
	Long: `Reconcile every entry of the input bibliography against the Crossref
works API and write the updated set to the output file.

Entries that end the run with no field changes are written to
potential_issues.bib next to the output file for manual review.`,
	Args: cobra.ExactArgs(2),
	RunE: runFix,
}

// FixResult is the response for the fix command.
type FixResult struct {
	Processed  int                 `json:"processed"`
	Updated    int                 `json:"updated"`
	Unchanged  int                 `json:"unchanged"`
	Output     string              `json:"output,omitempty"`
	IssuesFile string              `json:"issues_file,omitempty"`
	DryRun     bool                `json:"dry_run,omitempty"`
	Entries    []reconcile.Outcome `json:"entries"`
}

func runFix(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	entries, err := bibtex.ParseFile(inputPath)
	if err != nil {
		exitWithError(ExitDataError, "reading bibliography: %v", err)
	}

	var clientOpts []crossref.ClientOption
	if cfg.Mailto != "" {
		clientOpts = append(clientOpts, crossref.WithMailto(cfg.Mailto))
	}
	if cfg.APIURL != "" {
		clientOpts = append(clientOpts, crossref.WithBaseURL(cfg.APIURL))
	}
	if cfg.RateLimit > 0 {
		clientOpts = append(clientOpts, crossref.WithRateLimit(cfg.RateLimit))
	}
	client := crossref.NewClient(clientOpts...)

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	result, err := reconcile.Run(cmd.Context(), client, entries, reconcile.Options{
		Threshold:    fixThreshold,
		RemoveFields: fixRemove,
		Rows:         fixRows,
		Logger:       logger,
	})
	if err != nil {
		exitWithError(ExitError, "reconciling: %v", err)
	}

	issuesPath := ""
	if len(result.Issues) > 0 {
		issuesPath = filepath.Join(filepath.Dir(outputPath), reconcile.IssuesFile)
	}

	if !fixDryRun {
		if err := bibtex.WriteFile(outputPath, result.Entries); err != nil {
			exitWithError(ExitError, "writing output: %v", err)
		}
		if issuesPath != "" {
			if err := bibtex.WriteFile(issuesPath, result.Issues); err != nil {
				exitWithError(ExitError, "writing issues file: %v", err)
			}
		}
	}

	if humanOutput {
		if fixDryRun {
			outputHuman("Dry run - no files written.\n")
		}
		outputHuman("Processed %d entries: %d updated, %d unchanged.\n",
			len(result.Entries), result.Updated, len(result.Issues))
		if !fixDryRun {
			outputHuman("Output written to %s\n", outputPath)
			if issuesPath != "" {
				outputHuman("%d entries flagged for review in %s\n", len(result.Issues), issuesPath)
			}
		}
		return nil
	}

	return outputJSON(FixResult{
		Processed:  len(result.Entries),
		Updated:    result.Updated,
		Unchanged:  len(result.Issues),
		Output:     outputPath,
		IssuesFile: issuesPath,
		DryRun:     fixDryRun,
		Entries:    result.Outcomes,
	})
}
