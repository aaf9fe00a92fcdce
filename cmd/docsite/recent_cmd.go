package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/docsite/internal/cli"
	"github.com/sgx-labs/docsite/internal/search"
)

func recentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List or record recently visited entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecentList(cmd, false)
		},
	}

	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent entries, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecentList(cmd, jsonOut)
		},
	}
	list.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	record := &cobra.Command{
		Use:   "record <id|href>",
		Short: "Move an entry to the front of the recent list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := loadSite()
			if err != nil {
				return err
			}
			idx, err := s.Index(context.Background())
			if err != nil {
				return err
			}
			item, ok := findItem(idx.Items, args[0])
			if !ok {
				return userError("Unknown entry: "+args[0], "Run 'docsite search <query>' to find an id or href")
			}
			recent, closeFn, err := openRecent(cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			recent.Record(item)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s✓%s Recorded %s\n", cli.Green, cli.Reset, item.Title)
			return nil
		},
	}

	cmd.AddCommand(list, record)
	return cmd
}

func runRecentList(cmd *cobra.Command, jsonOut bool) error {
	_, cfg, err := loadSite()
	if err != nil {
		return err
	}
	recent, closeFn, err := openRecent(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	items := recent.Get()
	w := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No recent entries.")
		return nil
	}
	for i, it := range items {
		fmt.Fprintf(w, "  %d. %s  %s%s%s\n", i+1, it.Title, cli.DimCyan, it.Href, cli.Reset)
	}
	return nil
}

// findItem matches key against item IDs first, then hrefs.
func findItem(items []search.Item, key string) (search.Item, bool) {
	for _, it := range items {
		if it.ID == key {
			return it, true
		}
	}
	for _, it := range items {
		if it.Href == key {
			return it, true
		}
	}
	return search.Item{}, false
}
