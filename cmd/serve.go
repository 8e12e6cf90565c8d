package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/juke/internal/server"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Serve runs the public submission relay until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	deps, err := r.connect(cmd.String("config"))
	if err != nil {
		return err
	}
	defer deps.Close()

	if !deps.manager.Authenticated() {
		r.logger.Warn("no stored Spotify authorization, run 'juke auth' or visit /auth")
	}

	limiter := rate.NewLimiter(rate.Limit(r.config.Relay.RateLimit), r.config.Relay.Burst)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger), server.RateLimit(limiter))
	router.Handler(server.NewSubmitHandler(deps.engine, deps.manager, r.logger))
	router.Handler(server.NewAuthHandler(deps.manager, r.logger))
	router.Handler(server.NewHealthHandler(deps.manager, appVersion, r.logger))

	addr := r.config.Server.Addr()
	if override := cmd.String("addr"); override != "" {
		addr = override
	}

	srv := server.NewServer(addr, router, r.logger)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-stop:
		r.logger.Info("shutting down", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
