package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/freelog/freelog/internal/auth"
	"github.com/freelog/freelog/internal/config"
	"github.com/freelog/freelog/internal/log"
	"github.com/freelog/freelog/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Serve the JSON API, the sign-in endpoints and, when server.static_dir is
set, the built frontend. Stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.Watch(vp, func(c config.Config) {
		if err := log.SetLevel(c.Log.Level); err != nil {
			log.Warn(log.CatConfig, "Ignoring log level change", "level", c.Log.Level, "error", err)
		}
	})

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}
	return serve(ctx, cfg, ln)
}

// serve runs the server on ln until ctx is cancelled, then drains open
// requests for at most server.shutdown_timeout.
func serve(ctx context.Context, cfg config.Config, ln net.Listener) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.ErrorErr(log.CatTracing, "Failed to flush spans", err)
		}
	}()

	a, err := newApp(cfg, nil)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.ErrorErr(log.CatDB, "Failed to close database", err)
		}
	}()

	srv := &http.Server{
		Handler:           a.handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(log.CatHTTP, "Listening", "addr", ln.Addr().String(), "base_url", cfg.Server.BaseURL)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		purgeSessions(gctx, a.sessions, cfg.Auth.PurgeInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(log.CatHTTP, "Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// purgeSessions deletes expired sessions every interval until ctx is done.
func purgeSessions(ctx context.Context, sm *auth.SessionManager, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sm.PurgeExpired(ctx); err != nil {
				log.ErrorErr(log.CatAuth, "Failed to purge expired sessions", err)
			}
		}
	}
}
