package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/juke/internal/server"
	"github.com/desertthunder/juke/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin executes the OAuth2 authorization flow with a local HTTP server.
//
// Opens the owner's browser at the Spotify consent page and waits for the
// redirect to land on the callback handler.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	deps, err := r.connect(cmd.String("config"))
	if err != nil {
		return err
	}
	defer deps.Close()

	oauthHandler := server.NewOneShotAuthHandler(deps.manager, r.logger)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	authURL := deps.manager.AuthURL()

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.AuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrAuthFailed)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	r.logger.Info("authorization complete")
	return r.writePlain("✓ Spotify authorization complete\n")
}
