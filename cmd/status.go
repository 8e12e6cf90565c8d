package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/juke/internal/services"
	"github.com/desertthunder/juke/internal/shared"
	"github.com/urfave/cli/v3"
)

// Status checks a running relay's health by calling its /health endpoint.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	api := r.api
	if baseURL := cmd.String("url"); baseURL != "" {
		api = services.NewAPIClient(baseURL, r.httpClient)
	}

	r.logger.Info("checking relay status")

	resp, err := api.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("%w: relay unavailable: %v", shared.ErrServiceUnavailable, err)
	}

	if !resp.IsJSON {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return r.writePlain("✓ Relay is healthy\nStatus: %s\n", string(resp.Body))
		}
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	if cmd.Bool("json") {
		return r.writeJSON(resp.JSONData, true)
	}

	healthData, ok := resp.JSONData.(map[string]any)
	if !ok {
		return r.writePlain("✓ Relay is healthy\n")
	}

	status, ok := healthData["status"].(string)
	if !ok {
		status = "unknown"
	}
	authenticated := false
	if auth, ok := healthData["authenticated"].(bool); ok {
		authenticated = auth
	}

	r.writePlain("✓ Relay is healthy\n")
	r.writePlain("Status: %s\n", status)
	if authenticated {
		r.writePlain("Authorization: ✓ Connected to Spotify\n")
	} else {
		r.writePlain("Authorization: ✗ Not authorized, run 'juke auth'\n")
	}
	return nil
}
