package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/violet/backend/internal/app"
	"github.com/zhouzirui/violet/backend/internal/config"
	"github.com/zhouzirui/violet/backend/internal/handler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, continuing with system environment variables only", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.Log.Level,
		TimeFormat: time.TimeOnly,
	})))

	a, err := app.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise services", "err", err)
		os.Exit(1)
	}

	router := handler.NewRouter(handler.Deps{
		Assistant:      a.Router,
		Session:        a.Session,
		Events:         a.Events,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	a.StartDetector(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("VIOLET backend listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := a.WatchApps(gctx); err != nil {
			slog.Warn("launcher app table not watched", "err", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Closing the hub ends open event streams so Shutdown does not wait on them.
		a.Events.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// In-flight routes are done; now release the microphone.
		a.Close()
		slog.Info("VIOLET backend stopped")
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
