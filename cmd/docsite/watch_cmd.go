package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/docsite/internal/cli"
	"github.com/sgx-labs/docsite/internal/watcher"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch docs/ and report changed documents",
		Long: `Watch the docs/ folder and rebuild the index whenever markdown files
change. Each batch of changes is printed with the new document count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSite()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "  Watching %s (Ctrl+C to stop)\n", cli.ShortenHome(s.Loader.Root))
			wt := &watcher.Watcher{
				Root: s.Loader.Root,
				OnChange: func(paths []string) {
					s.Invalidate(paths)
					idx, err := s.Index(ctx)
					if err != nil {
						fmt.Fprintf(w, "  %s✗%s rebuild failed: %v\n", cli.Red, cli.Reset, err)
						return
					}
					fmt.Fprintf(w, "  %s✓%s %s  %s(%d entries)%s\n",
						cli.Green, cli.Reset, strings.Join(paths, ", "), cli.Dim, len(idx.Items), cli.Reset)
				},
			}
			return wt.Watch(ctx)
		},
	}
}
