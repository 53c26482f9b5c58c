package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	devblog "github.com/goliatone/go-devblog"
	"github.com/goliatone/go-devblog/internal/watcher"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the JSON API, feeds and sitemap.

With --watch, edits to markdown files under the content directory rebuild
the pipeline and the server switches to the new build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "rebuild when content files change")
	return cmd
}

func serve(ctx context.Context, cfg devblog.Config, watch bool) error {
	module, err := devblog.New(cfg, devblog.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	logger := module.Logger("devblog")

	swapper := watcher.NewSwapper(module.Handler())
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      swapper,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 2)

	if watch {
		w, err := watcher.New(cfg.Content.Dir, func(ctx context.Context) error {
			next, err := devblog.New(cfg, devblog.WithLogOutput(os.Stderr))
			if err != nil {
				return err
			}
			// Load every category up front so a broken content tree keeps
			// the previous build in service.
			for _, category := range devblog.Categories() {
				if _, err := next.Content().Report(ctx, category); err != nil {
					return err
				}
			}
			swapper.Swap(next.Handler())
			return nil
		}, watcher.WithLogger(module.Logger("devblog.watcher")))
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	}

	go func() {
		logger.Info("http.server.starting", "addr", cfg.Server.Addr, "watch", watch)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("http.server.stopping")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http.server.shutdown_failed", "error", err)
		return err
	}
	return nil
}
