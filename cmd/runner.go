package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/juke/internal/auth"
	"github.com/desertthunder/juke/internal/repositories"
	"github.com/desertthunder/juke/internal/services"
	"github.com/desertthunder/juke/internal/shared"
	"github.com/desertthunder/juke/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	api        *services.APIClient
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	API        *services.APIClient
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API == nil {
		opts.API = services.NewAPIClient("http://"+opts.Config.Server.Addr(), opts.HTTPClient)
	}

	return &Runner{
		config:     opts.Config,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the Runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, authCommand, statusCommand, recentCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig swaps in the config file at path when it loads cleanly.
func (r *Runner) reloadConfig(path string) {
	if path == "" {
		return
	}
	if loaded, err := shared.LoadConfig(path); err == nil {
		r.config = loaded
	} else {
		r.logger.Warn("failed to load config, using current settings", "path", path, "error", err)
	}
}

// openDatabase opens the configured SQLite database.
func (r *Runner) openDatabase(configPath string) (*sql.DB, error) {
	r.reloadConfig(configPath)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// relayDeps bundles the database-backed dependencies shared by the serve and
// auth commands.
type relayDeps struct {
	db          *sql.DB
	credentials *repositories.CredentialRepository
	submissions *repositories.SubmissionRepository
	manager     *auth.Manager
	spotify     *services.SpotifyService
	engine      *tasks.RelayEngine
}

func (d *relayDeps) Close() error {
	return d.db.Close()
}

// connect wires the full relay stack from configuration. Spotify credentials
// must be present in the config file.
func (r *Runner) connect(configPath string) (*relayDeps, error) {
	db, err := r.openDatabase(configPath)
	if err != nil {
		return nil, err
	}

	oauthConfig, err := services.NewOAuthConfig(r.config.Credentials.Spotify.Map())
	if err != nil {
		db.Close()
		return nil, err
	}

	credentials := repositories.NewCredentialRepository(db)
	submissions := repositories.NewSubmissionRepository(db)
	manager := auth.NewManager(oauthConfig, credentials, r.logger)
	spotify := services.NewSpotifyService(manager, r.httpClient)
	engine := tasks.NewRelayEngine(tasks.RelayOpts{
		Service:         spotify,
		Submissions:     submissions,
		Logger:          r.logger,
		DuplicateWindow: time.Duration(r.config.Relay.DuplicateWindowMinutes) * time.Minute,
	})

	return &relayDeps{
		db:          db,
		credentials: credentials,
		submissions: submissions,
		manager:     manager,
		spotify:     spotify,
		engine:      engine,
	}, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
