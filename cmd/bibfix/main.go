// Package main provides the bibfix CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibfix",
	Short: "Reconcile BibTeX bibliographies against the Crossref registry",
	Long: `bibfix reconciles a BibTeX bibliography against the Crossref works API.

For each entry it issues one bibliographic query, fuzzy-matches the
candidates against the local title and authors, and on a confident match
merges the canonical DOI and normalized fields into the entry. Entries
that end a run with no changes are written to a side file for manual
review. All commands output JSON by default for easy scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
