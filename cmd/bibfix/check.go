package main

import (
	"github.com/spf13/cobra"

	"github.com/bibtools/bibfix/internal/bibtex"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <input.bib>",
	Short: "Scan a bibliography for missing or duplicate identifiers",
	Long:  `Scan a bibliography for duplicate DOIs, entries without a DOI, and entries without a title, without touching the registry.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status  string       `json:"status"`
	Entries int          `json:"entries"`
	Issues  []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type string   `json:"type"`
	Key  string   `json:"key,omitempty"`
	Keys []string `json:"keys,omitempty"`
	DOI  string   `json:"doi,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	entries, err := bibtex.ParseFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading bibliography: %v", err)
	}

	issues := findCheckIssues(entries)

	status := "ok"
	if len(issues) > 0 {
		status = "issues"
	}

	if humanOutput {
		if len(issues) == 0 {
			outputHuman("OK: %d entries, no issues found.\n", len(entries))
			return nil
		}
		outputHuman("%d entries, %d issues:\n", len(entries), len(issues))
		for _, issue := range issues {
			switch issue.Type {
			case "duplicate_doi":
				outputHuman("  duplicate DOI %s: %v\n", issue.DOI, issue.Keys)
			case "missing_doi":
				outputHuman("  missing DOI: %s\n", issue.Key)
			case "missing_title":
				outputHuman("  missing title: %s\n", issue.Key)
			}
		}
		return nil
	}

	return outputJSON(CheckResult{
		Status:  status,
		Entries: len(entries),
		Issues:  issues,
	})
}

// findCheckIssues scans entries for duplicate DOIs and missing fields.
func findCheckIssues(entries []*bibtex.Entry) []CheckIssue {
	issues := []CheckIssue{}

	// Duplicate DOIs, compared after normalization.
	doiKeys := make(map[string][]string)
	var doiOrder []string
	for _, e := range entries {
		doi := bibtex.NormalizeDOI(e.Get("doi"))
		if doi == "" {
			continue
		}
		if _, seen := doiKeys[doi]; !seen {
			doiOrder = append(doiOrder, doi)
		}
		doiKeys[doi] = append(doiKeys[doi], e.Key)
	}
	for _, doi := range doiOrder {
		if keys := doiKeys[doi]; len(keys) > 1 {
			issues = append(issues, CheckIssue{
				Type: "duplicate_doi",
				Keys: keys,
				DOI:  doi,
			})
		}
	}

	for _, e := range entries {
		if !e.Has("doi") {
			issues = append(issues, CheckIssue{Type: "missing_doi", Key: e.Key})
		}
		if e.Normalized("title") == "" {
			issues = append(issues, CheckIssue{Type: "missing_title", Key: e.Key})
		}
	}

	return issues
}
