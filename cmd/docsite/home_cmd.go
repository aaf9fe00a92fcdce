package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/docsite/internal/cli"
)

func homeCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the landing-page quick start and recent updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSite()
			if err != nil {
				return err
			}
			home, err := s.Home(context.Background(), s.Loader.NewScope())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(home)
			}

			cli.Header(w, "docsite")
			cli.Section(w, "Quick start")
			for _, c := range home.QuickStart {
				fmt.Fprintf(w, "  %s%s%s  %s\n", cli.Bold, c.Title, cli.Reset, c.Description)
				fmt.Fprintf(w, "  %s%s%s\n", cli.DimCyan, c.Href, cli.Reset)
			}
			if home.UsedDefaults {
				fmt.Fprintf(w, "\n  %sNo content index found; showing built-in cards.%s\n", cli.Dim, cli.Reset)
			}

			cli.Section(w, "Recent updates")
			if len(home.RecentUpdates) == 0 {
				fmt.Fprintf(w, "  %sNone.%s\n", cli.Dim, cli.Reset)
			} else {
				lines := make([]string, 0, len(home.RecentUpdates))
				for _, u := range home.RecentUpdates {
					lines = append(lines, fmt.Sprintf("%s  %s", u.Title, u.Status))
				}
				cli.Box(w, lines)
			}
			cli.Footer(w)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
