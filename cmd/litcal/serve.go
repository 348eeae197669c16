package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/litcal-webcalendar/internal/api"
	"github.com/zapponejosh/litcal-webcalendar/internal/refresh"
	"github.com/zapponejosh/litcal-webcalendar/internal/webcalendar"
)

func serveCmd() *cobra.Command {
	var noRefresh bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve calendar tables over HTTP",
		Long:  "Serve calendar tables over HTTP and keep the configured calendar refreshed on the REFRESH_SCHEDULE cron schedule.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, noRefresh)
		},
	}

	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "Serve on-demand tables only, without the scheduled calendar")
	return cmd
}

func serve(ctx context.Context, noRefresh bool) error {
	log.Info("starting litcal server",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.String("api_url", cfg.APIURL),
	)

	// Initialize database
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := newClient(db)
	if err != nil {
		return err
	}

	// Table options shared by the scheduled calendar and on-demand requests
	var tableOpts []webcalendar.Option
	if cfg.TableOptionsPath != "" {
		tableOpts, err = webcalendar.LoadOptionsFile(cfg.TableOptionsPath)
		if err != nil {
			return err
		}
	}

	locales := webcalendar.NewLocaleCache()
	request := configuredRequest()
	deps := api.Deps{
		Store:        db,
		Source:       client,
		Locales:      locales,
		Request:      request,
		TableOptions: tableOpts,
		Logger:       log,
	}

	var refresher *refresh.Refresher
	if !noRefresh {
		wc, err := webcalendar.New(log, locales,
			append([]webcalendar.Option{webcalendar.WithLocale(cfg.Locale)}, tableOpts...)...)
		if err != nil {
			return err
		}
		snapshot := &webcalendar.SnapshotTarget{}
		wc.AttachTo(snapshot)
		client.OnCalendarFetched(wc.OnCalendarFetched)
		deps.Snapshot = snapshot

		refresher, err = refresh.New(refresh.Config{
			Schedule: cfg.RefreshSchedule,
			Request:  request,
		}, client, db, log)
		if err != nil {
			return err
		}
		if err := refresher.Start(ctx); err != nil {
			// The schedule is running; the next tick retries.
			log.Warn("initial calendar refresh failed", slog.Any("error", err))
		}
		log.Info("refresh scheduled",
			slog.String("schedule", cfg.RefreshSchedule),
			slog.Time("next", refresher.Next()),
		)
	}

	// Start HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(api.NewHandlers(deps), log),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("litcal server ready", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if refresher != nil {
		refresher.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
