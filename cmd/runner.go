package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	spotify     *services.SpotifyService
	recommender *services.RecommenderService
	db          *sql.DB
	manager     *auth.Manager
	engine      tasks.MixEngine
	playlists   tasks.PlaylistStore
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Spotify     *services.SpotifyService
	Recommender *services.RecommenderService
	DB          *sql.DB
	Manager     *auth.Manager
	Engine      tasks.MixEngine
	Playlists   tasks.PlaylistStore
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		spotify:     opts.Spotify,
		recommender: opts.Recommender,
		db:          opts.DB,
		manager:     opts.Manager,
		engine:      opts.Engine,
		playlists:   opts.Playlists,
		logger:      opts.Logger,
		output:      opts.Output,
	}

	if r.engine == nil && r.manager != nil && r.spotify != nil && r.recommender != nil {
		r.engine = tasks.NewPlaylistEngine(r.manager, r.spotify, r.recommender, r.playlists, r.logger)
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moodsCommand, playlistCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireManager guards commands that need credentials and persistence.
func (r *Runner) requireManager() error {
	if r.manager == nil {
		if r.spotify == nil {
			return fmt.Errorf("%w: Spotify client_id must be set in %s", shared.ErrMissingCredentials, r.configPath)
		}
		return fmt.Errorf("%w: database not initialized, run 'moodify setup' first", shared.ErrServiceUnavailable)
	}
	return nil
}

// requireEngine guards commands that generate playlists.
func (r *Runner) requireEngine() error {
	if r.engine == nil {
		if err := r.requireManager(); err != nil {
			return err
		}
		return fmt.Errorf("%w: recommender base_url must be set in %s", shared.ErrMissingConfig, r.configPath)
	}
	return nil
}

// cliSession builds a session bound to the user recorded at the last login.
// The lifecycle manager adopts the stored credential on first use.
func (r *Runner) cliSession() *auth.Session {
	sess := auth.NewSession(shared.GenerateID())
	if userID := r.config.Credentials.Spotify.UserID; userID != "" {
		sess.AdoptCredential(&models.CredentialRecord{UserID: userID})
	}
	return sess
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
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
