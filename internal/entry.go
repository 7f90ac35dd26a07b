// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/berkana/internal/api"
	"github.com/starford/berkana/internal/card"
	"github.com/starford/berkana/internal/engine"
	"github.com/starford/berkana/internal/fetch"
	"github.com/starford/berkana/internal/mcpserver"
	"github.com/starford/berkana/internal/shelf"
	"github.com/starford/berkana/internal/storage"
)

// runtime bundles the wired components of one run. Everything hangs off
// this context object; there is no process-wide mutable state.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	shelf  *shelf.Shelf
	engine *engine.Engine
	card   *card.Renderer
}

// setup validates configuration and wires all components.
func setup(opts ...Option) (*runtime, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	order, err := cfg.Shelf.FieldOrder()
	if err != nil {
		return nil, err
	}
	renderer, err := card.New(order)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFS(cfg.Site.OutputPath, cfg.Site.Extension)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	shelfPath := cfg.Shelf.ResolvePath(cfg.Site.OutputPath)
	sh, err := shelf.Load(shelfPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load shelf: %w", err)
	}

	fetcher := app.fetcher
	if fetcher == nil {
		fetcher = fetch.NewHTTP(
			time.Duration(cfg.Remote.WaitTime)*time.Second,
			time.Duration(cfg.Remote.Timeout)*time.Second,
			logger)
	}

	eng := engine.New(store, sh, fetcher, renderer, cfg.Remote.Source, cfg.Remote.BaseURL, logger)

	logger.Info("Configuration loaded",
		slog.String("output_path", cfg.Site.OutputPath),
		slog.String("shelf_path", shelfPath),
		slog.String("source", cfg.Remote.Source),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		shelf:  sh,
		engine: eng,
		card:   renderer,
	}, nil
}

// saveShelf persists the shelf. Persistence failures are fatal: silent
// data loss at shutdown is unacceptable.
func (rt *runtime) saveShelf() error {
	if err := rt.shelf.Save(); err != nil {
		return fmt.Errorf("save shelf: %w", err)
	}
	return nil
}

// RunSync enriches every eligible document under the site root once and
// persists the shelf.
func RunSync(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts...)
	if err != nil {
		return err
	}
	if rt.cfg.Shelf.UpdateOnStart {
		if err := rt.shelf.RefreshAll(ctx, rt.engine.FetchByID); err != nil {
			return fmt.Errorf("refresh shelf: %w", err)
		}
	}
	if err := rt.engine.SyncAll(ctx); err != nil {
		return err
	}
	return rt.saveShelf()
}

// RunRefresh re-fetches every cached record and persists the shelf.
func RunRefresh(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts...)
	if err != nil {
		return err
	}
	if rt.shelf.Len() == 0 {
		rt.logger.Info("shelf is empty, nothing to refresh")
		return nil
	}
	if err := rt.shelf.RefreshAll(ctx, rt.engine.FetchByID); err != nil {
		return fmt.Errorf("refresh shelf: %w", err)
	}
	return rt.saveShelf()
}

// RunMCP serves the shelf over MCP stdio transport.
func RunMCP(_ context.Context, opts ...Option) error {
	rt, err := setup(opts...)
	if err != nil {
		return err
	}
	return mcpserver.New(rt.shelf, rt.card).ServeStdio()
}

// RunWatch starts watch mode: an initial sweep of the site root, then
// fsnotify-driven enrichment as the generator writes documents, plus the
// optional read-only shelf API. The shelf is persisted on shutdown.
func RunWatch(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts...)
	if err != nil {
		return err
	}
	cfg := rt.cfg
	logger := rt.logger

	if cfg.Shelf.UpdateOnStart {
		if err := rt.shelf.RefreshAll(ctx, rt.engine.FetchByID); err != nil {
			return fmt.Errorf("refresh shelf: %w", err)
		}
	}

	// Initial pass over documents the generator already produced.
	if err := rt.engine.SyncAll(ctx); err != nil {
		logger.Warn("initial sweep failed", slog.String("error", err.Error()))
	}

	var httpServer *http.Server
	if cfg.API.Enabled {
		httpServer = &http.Server{
			Addr:    cfg.API.Address(),
			Handler: api.NewRouter(rt.shelf, cfg.API.Auth.AuthEnabled(), cfg.API.Auth.Token),
		}
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rt.engine.Watch(gCtx, rt.store.Root(), logger)
	})

	if httpServer != nil {
		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	return rt.saveShelf()
}
