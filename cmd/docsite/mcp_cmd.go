package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/docsite/internal/mcp"
	"github.com/sgx-labs/docsite/internal/recency"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Expose the docs site to AI assistants over the Model Context Protocol.

Tools: get_tree, search_docs, search_headings, get_doc, get_home, doc_history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := loadSite()
			if err != nil {
				return err
			}
			var recent *recency.Store
			if r, closeFn, err := openRecent(cfg); err != nil {
				slog.Warn("recent list disabled", "error", err)
			} else {
				recent = r
				defer closeFn()
			}
			mcp.Version = Version
			return mcp.NewServer(s, recent).Serve(context.Background())
		},
	}
}
