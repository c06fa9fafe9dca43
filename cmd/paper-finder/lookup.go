// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-finder/internal/lookup"
	"github.com/pdiddy/paper-finder/internal/search"
	"github.com/pdiddy/paper-finder/internal/token"
	"github.com/pdiddy/paper-finder/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve a paper to its best open-access match once",
	Long: `Lookup runs the resolution pipeline a single time from the terminal:
query Crossref and Europe PMC, pick the best match, and enrich it with
open-access URLs via Unpaywall. No download token is minted.

The query comes from --title and --author, or from a previously saved
--query-file. Pass --out to save the query and outcome as YAML.`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().String("title", "", "paper title")
	lookupCmd.Flags().String("author", "", "first author's last name")
	lookupCmd.Flags().String("query-file", "", "load the query from a saved lookup YAML file")
	lookupCmd.Flags().String("out", "", "save the query and outcome to a YAML file")
	lookupCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	queryFile, _ := cmd.Flags().GetString("query-file")
	outFile, _ := cmd.Flags().GetString("out")
	asJSON, _ := cmd.Flags().GetBool("json")

	q := types.Query{Title: title, FirstAuthorLastName: author}
	if queryFile != "" {
		lf, err := search.ReadLookupFile(queryFile)
		if err != nil {
			return err
		}
		q = lf.Query
	}
	if err := lookup.Validate(q); err != nil {
		return fmt.Errorf("%w (use --title and --author, or --query-file)", err)
	}

	cfg := appConfig()
	svc := lookup.New(cfg, token.NewStore(cfg.Token))

	m, warnings, err := svc.Resolve(context.Background(), q)
	if err != nil {
		return err
	}

	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	if outFile != "" {
		if err := search.WriteLookupFile(outFile, q.Trimmed(), m, warnings); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved lookup to", outFile)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}

	printMatch(m)
	return nil
}

func printMatch(m *types.ResolvedMatch) {
	if m == nil {
		fmt.Println("No likely match found in the configured legal-access sources.")
		return
	}

	fmt.Printf("Title:   %s\n", m.Metadata.Title)
	if len(m.Metadata.Authors) > 0 {
		fmt.Printf("Authors: %s\n", strings.Join(m.Metadata.Authors, "; "))
	}
	if m.Metadata.Year > 0 {
		fmt.Printf("Year:    %d\n", m.Metadata.Year)
	}
	if m.DOI != "" {
		fmt.Printf("DOI:     %s\n", m.DOI)
	}
	fmt.Printf("Source:  %s\n", m.Metadata.Source)

	if len(m.CandidateURLs) == 0 {
		fmt.Println("\nMetadata only: no open-access full text located.")
		return
	}
	fmt.Println("\nCandidate full-text URLs:")
	for i, u := range m.CandidateURLs {
		fmt.Printf("  %d. %s\n", i+1, u)
	}
}
