package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	api "github.com/mind-engage/understanding-check/internal/api/http"
	auth "github.com/mind-engage/understanding-check/internal/auth/middleware"
	"github.com/mind-engage/understanding-check/internal/check"
	"github.com/mind-engage/understanding-check/internal/config"
	"github.com/mind-engage/understanding-check/internal/page"
	syncx "github.com/mind-engage/understanding-check/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbh, err := openDB()
	if err != nil {
		return err
	}
	defer func() {
		if err := dbh.Close(); err != nil {
			slog.Error("close database", "error", err)
		}
	}()
	slog.Info("database ready", "driver", cfg.DBDriver)

	store := check.NewSQLStore(dbh, cfg.DBDriver)
	users := auth.NewUserStore(dbh)
	sessions := page.NewRegistry()
	sessions.StartSweeper(ctx, cfg.SessionTTL, time.Minute, slog.Default())

	events := syncx.NewEventRepo(dbh)
	handler := api.NewRouter(api.Deps{
		Store:     store,
		Sessions:  sessions,
		Events:    events,
		EventFeed: events,
		Auth:      auth.NewAuthService(cfg.AuthHMACSecret),
		Credentials: auth.FirstOf{
			auth.AdminCredentials{User: cfg.AdminUser, PassHash: cfg.AdminPassHash},
			users,
		},
		DB:            dbh,
		Logger:        slog.Default(),
		Debug:         cfg.Debug,
		SecureCookies: cfg.Mode == config.ModeOnline,
		CORSOrigins:   cfg.CORSOrigins,
		AccessLog:     true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "debug", cfg.Debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
