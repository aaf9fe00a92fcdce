package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/docsite/internal/cli"
	"github.com/sgx-labs/docsite/internal/directive"
	"github.com/sgx-labs/docsite/internal/site"
)

func showCmd() *cobra.Command {
	var (
		jsonOut  bool
		segments bool
	)
	cmd := &cobra.Command{
		Use:   "show <section>/<file>",
		Short: "Print a document with wiki links resolved",
		Long: `Print one document. Wiki links are rewritten to site routes.
With --segments, show how the body splits into prose and widgets.

Examples:
  docsite show C_组件/button
  docsite show /docs/C_组件/button --segments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sectionID, fileID, ok := splitDocArg(args[0])
			if !ok {
				return userError("Invalid document: "+args[0], "Use the form <section>/<file>, e.g. C_组件/button")
			}
			s, _, err := loadSite()
			if err != nil {
				return err
			}
			page, err := s.Page(s.Loader.NewScope(), sectionID, fileID)
			if errors.Is(err, site.ErrNoPage) {
				return userError("Document not found: "+args[0], "Run 'docsite tree' to list documents")
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case jsonOut:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			case segments:
				printSegments(w, page)
			default:
				fmt.Fprintf(w, "%s%s%s\n\n%s\n", cli.Bold, page.Title, cli.Reset, strings.TrimSpace(page.Body))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the rendered page as JSON")
	cmd.Flags().BoolVar(&segments, "segments", false, "Show directive segments")
	return cmd
}

// splitDocArg accepts "section/file", "/docs/section/file" and
// "docs/section/file.md".
func splitDocArg(arg string) (section, file string, ok bool) {
	arg = strings.TrimPrefix(arg, "/")
	arg = strings.TrimPrefix(arg, "docs/")
	arg = strings.TrimSuffix(arg, ".md")
	section, file, ok = strings.Cut(arg, "/")
	if !ok || section == "" || file == "" || strings.Contains(file, "/") {
		return "", "", false
	}
	return section, file, true
}

func printSegments(w io.Writer, page *site.Page) {
	fmt.Fprintf(w, "%s%s%s  %s%d segments%s\n", cli.Bold, page.Title, cli.Reset, cli.Dim, len(page.Segments), cli.Reset)
	for i, seg := range page.Segments {
		switch seg.Kind {
		case directive.KindWidget:
			table := "no table"
			if seg.HasTable {
				table = fmt.Sprintf("%d table lines", strings.Count(seg.Table, "\n"))
			}
			fmt.Fprintf(w, "\n  %d. %swidget%s %s (%s)\n", i+1, cli.Green, cli.Reset, seg.WidgetType, table)
		default:
			first, _, _ := strings.Cut(strings.TrimSpace(seg.Content), "\n")
			fmt.Fprintf(w, "\n  %d. markdown  %s%s%s\n", i+1, cli.Dim, cli.Truncate(first, 60), cli.Reset)
		}
	}
	fmt.Fprintln(w)
}
