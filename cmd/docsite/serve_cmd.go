package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sgx-labs/docsite/internal/recency"
	"github.com/sgx-labs/docsite/internal/site"
	"github.com/sgx-labs/docsite/internal/watcher"
	"github.com/sgx-labs/docsite/internal/web"
)

func serveCmd() *cobra.Command {
	var (
		port     int
		openFlag bool
		watch    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the docs site in your browser",
		Long: `Start a local web server for the docs site.

The site is only accessible from localhost. With --watch, edits under
docs/ refresh the search index without a restart.

Examples:
  docsite serve                 # Start on the configured port (4078)
  docsite serve --port 8080     # Custom port
  docsite serve --watch --open  # Live index, auto-open browser`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := loadSite()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Web.Port
			}

			// The recent list is optional; the site works without it.
			var recent *recency.Store
			if r, closeFn, err := openRecent(cfg); err != nil {
				slog.Warn("recent list disabled", "error", err)
			} else {
				recent = r
				defer closeFn()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := fmt.Sprintf("127.0.0.1:%d", port)
			fmt.Fprintf(cmd.OutOrStdout(), "  Serving http://%s (Ctrl+C to stop)\n", addr)
			if openFlag {
				go func() {
					time.Sleep(300 * time.Millisecond)
					openBrowser("http://" + addr)
				}()
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return web.NewServer(s, recent, Version, slog.Default()).Serve(ctx, addr)
			})
			if watch {
				g.Go(func() error {
					return newWatcher(s).Watch(ctx)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().IntVar(&port, "port", 4078, "Port to listen on")
	cmd.Flags().BoolVar(&openFlag, "open", false, "Auto-open browser")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild the index when docs change")
	return cmd
}

// newWatcher returns a watcher that drops the site's cached index on change.
func newWatcher(s *site.Site) *watcher.Watcher {
	return &watcher.Watcher{
		Root:   s.Loader.Root,
		Logger: slog.Default(),
		OnChange: func(paths []string) {
			slog.Info("docs changed, invalidating index", "files", len(paths))
			s.Invalidate(paths)
		},
	}
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}
	cmd.Run()
}
