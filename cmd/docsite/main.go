// Package main is the entrypoint for the docsite CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/docsite/internal/config"
	"github.com/sgx-labs/docsite/internal/content"
	"github.com/sgx-labs/docsite/internal/directive"
	"github.com/sgx-labs/docsite/internal/navindex"
	"github.com/sgx-labs/docsite/internal/recency"
	"github.com/sgx-labs/docsite/internal/search"
	"github.com/sgx-labs/docsite/internal/site"
	"github.com/sgx-labs/docsite/internal/store"
)

// Version is set at build time via ldflags.
var Version = "dev"

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docsite",
		Short: "Browse and search a markdown design-system site",
		Long:  "docsite builds a navigable, searchable site from a docs/ folder of markdown files.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}

	root.AddCommand(versionCmd())
	root.AddCommand(treeCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(showCmd())
	root.AddCommand(homeCmd())
	root.AddCommand(recentCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(configCmd())

	// Global --root flag
	root.PersistentFlags().StringVar(&config.RootOverride, "root", "", "Content root containing docs/ (overrides auto-detect)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	return root
}

func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docsite version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docsite %s\n", Version)
		},
	}
}

// loadSite resolves the content root and configuration into a Site.
func loadSite() (*site.Site, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	root, err := config.RequireContentRoot()
	if err != nil {
		return nil, nil, userError("No content root found", "Pass --root /path/to/site or set DOCSITE_ROOT")
	}

	reg := directive.DefaultRegistry()
	if err := reg.Validate(); err != nil {
		return nil, nil, err
	}

	log := slog.Default()
	s := &site.Site{
		Loader: &content.Loader{
			Root:        root,
			AltRoot:     config.AltRoot(),
			AliasesPath: config.AliasesPath(),
			Logger:      log,
		},
		Registry: reg,
		Nav: navindex.Config{
			IndexPattern:        cfg.IndexRegexp(),
			QuickStartMarker:    cfg.Content.QuickStartMarker,
			RecentUpdatesMarker: cfg.Content.RecentUpdatesMarker,
		},
		Latest:   cfg.Search.Latest,
		Debounce: cfg.DebounceWindow(),
		Logger:   log,
	}

	if p := config.CatalogPath(); p != "" {
		entries, err := search.LoadCatalog(p)
		if err != nil {
			log.Warn("search catalog unusable, skipping", "path", p, "error", err)
		} else {
			s.Catalog = search.FromCatalog(entries)
		}
	}
	return s, cfg, nil
}

// openRecent opens the recency list backed by the state database. The
// returned close func releases both.
func openRecent(cfg *config.Config) (*recency.Store, func(), error) {
	db, err := store.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrNoDatabase, err)
	}
	db.Logger = slog.Default()
	r := recency.New(db, recency.Options{
		Key:      cfg.Recency.Key,
		Notifier: db,
		Logger:   slog.Default(),
	})
	return r, func() {
		r.Close()
		db.Close()
	}, nil
}

// ---------- error helpers ----------

type docsiteError struct {
	message string
	hint    string
}

func (e *docsiteError) Error() string {
	return fmt.Sprintf("%s\n  Hint: %s", e.message, e.hint)
}

func userError(message, hint string) error {
	return &docsiteError{message: message, hint: hint}
}
