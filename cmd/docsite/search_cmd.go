package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/docsite/internal/cli"
	"github.com/sgx-labs/docsite/internal/search"
)

func searchCmd() *cobra.Command {
	var (
		topK     int
		jsonOut  bool
		fuzzy    bool
		headings bool
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search documents, components and resources",
		Long: `Search titles and descriptions of every indexed entry. Matching is
case-insensitive and literal; --fuzzy ranks by subsequence instead.
With --headings, search section headings inside documents.

Examples:
  docsite search button
  docsite search --fuzzy "dtpckr"
  docsite search --headings "install"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				return userError("Empty search query", "Provide a search term: docsite search \"your query\"")
			}
			s, _, err := loadSite()
			if err != nil {
				return err
			}
			idx, err := s.Index(context.Background())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if headings {
				return printHeadingResults(w, search.ScoreHeadings(idx.Headings, query), topK, jsonOut)
			}
			return printResults(w, idx.Search(query, fuzzy), query, topK, jsonOut)
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 10, "Number of results")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "Rank by fuzzy subsequence match")
	cmd.Flags().BoolVar(&headings, "headings", false, "Search headings inside documents")
	return cmd
}

func printResults(w io.Writer, results []search.Result, query string, topK int, jsonOut bool) error {
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	if jsonOut {
		if results == nil {
			results = []search.Result{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}
	for i, r := range results {
		title := search.Highlight(r.Item.Title, query, cli.TermMarker)
		fmt.Fprintf(w, "\n  %d. %s %s[%s]%s\n", i+1, title, cli.Dim, r.Item.Kind, cli.Reset)
		if r.Item.Description != "" {
			fmt.Fprintf(w, "     %s\n", cli.Truncate(r.Item.Description, 72))
		}
		fmt.Fprintf(w, "     %s%s%s\n", cli.DimCyan, r.Item.Href, cli.Reset)
	}
	fmt.Fprintln(w)
	return nil
}

func printHeadingResults(w io.Writer, results []search.HeadingResult, topK int, jsonOut bool) error {
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	if jsonOut {
		if results == nil {
			results = []search.HeadingResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(w, "\n  %d. %s %s(%.1f)%s\n", i+1, r.Heading.Title, cli.Dim, r.Score, cli.Reset)
		fmt.Fprintf(w, "     %s%s%s\n", cli.DimCyan, r.Heading.Href, cli.Reset)
	}
	fmt.Fprintln(w)
	return nil
}
