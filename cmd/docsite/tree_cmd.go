package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/docsite/internal/cli"
	"github.com/sgx-labs/docsite/internal/content"
)

func treeCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the section and document tree",
		Long: `List every section under docs/ and the documents inside it, in
navigation order.

Examples:
  docsite tree
  docsite tree --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSite()
			if err != nil {
				return err
			}
			idx, err := s.Index(context.Background())
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(idx.Tree)
			}
			printTree(cmd.OutOrStdout(), idx.Tree)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printTree(w io.Writer, tree content.Tree) {
	if tree.Len() == 0 {
		fmt.Fprintf(w, "  %sNo documents found.%s\n", cli.Dim, cli.Reset)
		return
	}
	for _, sec := range tree.Sections {
		fmt.Fprintf(w, "\n  %s%s%s %s(%s)%s\n", cli.Bold, sec.Label, cli.Reset, cli.Dim, sec.ID, cli.Reset)
		for _, it := range sec.Items {
			fmt.Fprintf(w, "    %s  %s%s%s\n", it.Label, cli.Dim, content.Route(sec.ID, it.ID), cli.Reset)
		}
	}
	fmt.Fprintf(w, "\n  %s documents\n", cli.FormatNumber(tree.Len()))
}
