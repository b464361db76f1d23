package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The Spotify stack is built on first use by [Runner.connect] so that commands like setup work
// without credentials.
type Runner struct {
	config      *shared.Config
	configPath  string
	auth        *auth.Authenticator
	spotify     *services.SpotifyService
	tokens      *repositories.TokenRepository
	db          *sql.DB
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	palette     *ui.Palette
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config        *shared.Config
	ConfigPath    string
	Authenticator *auth.Authenticator
	Spotify       *services.SpotifyService
	Tokens        *repositories.TokenRepository
	HTTPClient    *http.Client
	Logger        *log.Logger
	Output        io.Writer
	Palette       *ui.Palette
	OpenBrowser   func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Palette == nil {
		opts.Palette = ui.Default
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		auth:        opts.Authenticator,
		spotify:     opts.Spotify,
		tokens:      opts.Tokens,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		palette:     opts.Palette,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "spotx",
		Usage:   "Spotify Web API client with OAuth token management",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		After:    r.after,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, apiCommand, spotifyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the configuration unless one was injected and applies the log level.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.configPath == "" {
		r.configPath = cmd.String("config")
	}
	if r.config != nil {
		return ctx, nil
	}

	config, err := shared.LoadConfig(r.configPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		config = shared.DefaultConfig()
	default:
		return ctx, err
	}
	config.ApplyEnv()
	r.config = config
	return ctx, nil
}

func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// connect builds the token store, [auth.Authenticator] and [services.SpotifyService] from the
// configuration and loads the stored token for the configured client.
func (r *Runner) connect() error {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	if r.httpClient == nil {
		r.httpClient = shared.NewHTTPClient(r.config.HTTP.Timeout(), r.config.HTTP.ConnectTimeout())
	}

	if r.tokens == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open token database: %w", err)
		}
		r.db = db
		r.tokens = repositories.NewTokenRepository(db)
	}

	if r.auth == nil {
		creds := r.config.Credentials.Spotify
		if !creds.Valid() {
			return fmt.Errorf("%w: set credentials.spotify.client_id and client_secret in %s or %s/%s",
				shared.ErrMissingCredentials, r.configPath, shared.EnvClientID, shared.EnvClientSecret)
		}

		state, err := shared.GenerateState()
		if err != nil {
			return fmt.Errorf("failed to generate state token: %w", err)
		}

		authenticator, err := auth.NewAuthenticator(auth.Credentials{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURI:  creds.RedirectURI,
			Scopes:       creds.Scopes,
			State:        state,
		}, auth.Options{
			AutoRefresh: r.config.Auth.AutoRefresh(),
			HTTPClient:  r.httpClient,
			Logger:      shared.WithLogger(r.logger, "component", "auth"),
			OnToken:     r.persistToken,
		})
		if err != nil {
			return err
		}
		r.auth = authenticator
	}

	if !r.auth.Authenticated() {
		token, err := r.tokens.Get(r.auth.Credentials().ClientID)
		switch {
		case err == nil:
			r.auth.SetToken(token)
		case errors.Is(err, shared.ErrNotFound):
			r.logger.Debug("no stored token", "client_id", r.auth.Credentials().ClientID)
		default:
			return fmt.Errorf("failed to load stored token: %w", err)
		}
	}

	if r.spotify == nil {
		dispatcher := services.NewDispatcher(r.auth, services.DispatcherOpts{
			HTTPClient: r.httpClient,
			Logger:     shared.WithLogger(r.logger, "component", "dispatcher"),
		})
		r.spotify = services.NewSpotifyService(services.NewClient(dispatcher), shared.WithLogger(r.logger, "component", "spotify"))
	}
	return nil
}

// persistToken is the [auth.Options.OnToken] hook. Save failures are logged; the in-memory token stays valid.
func (r *Runner) persistToken(token *auth.Token) {
	if r.tokens == nil || r.auth == nil {
		return
	}
	if err := r.tokens.Save(r.auth.Credentials().ClientID, token); err != nil {
		r.logger.Warn("failed to persist token", "error", err)
	}
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("%s\n", r.palette.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
