package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/soundctl/rewind/internal/repositories"
	"github.com/soundctl/rewind/internal/services"
	"github.com/soundctl/rewind/internal/shared"
	"github.com/soundctl/rewind/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	soundcloud services.OAuthService
	db         *sql.DB
	activities *repositories.ActivityRepository
	engine     tasks.ReportEngine
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	SoundCloud services.OAuthService
	Engine     tasks.ReportEngine
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		soundcloud: opts.SoundCloud,
		engine:     opts.Engine,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// database lazily opens the configured sqlite database.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	return db, nil
}

// activityRepo lazily creates the activity repository.
func (r *Runner) activityRepo() (*repositories.ActivityRepository, error) {
	if r.activities != nil {
		return r.activities, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	r.activities = repositories.NewActivityRepository(db)
	return r.activities, nil
}

// service lazily builds the SoundCloud service, wiring its token manager to
// the credentials table and seeding it from config-file tokens on first use.
func (r *Runner) service() (services.OAuthService, error) {
	if r.soundcloud != nil {
		return r.soundcloud, nil
	}

	creds := r.config.Credentials.SoundCloud
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: SoundCloud client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	svc, err := services.NewSoundCloudService(creds.Map(), repositories.NewCredentialRepository(db))
	if err != nil {
		return nil, fmt.Errorf("failed to create SoundCloud service: %w", err)
	}
	svc.Configure(r.config.Sync.MaxPages, r.config.Sync.PageSize)

	// No stored credential yet; fall back to tokens from the config file.
	if _, err := svc.Tokens().AccessToken(); errors.Is(err, shared.ErrNotAuthenticated) {
		if token := creds.Token(); token != nil {
			if err := svc.Tokens().SaveToken(token); err != nil {
				r.logger.Warnf("failed to import config tokens: %v", err)
			}
		}
	}

	r.soundcloud = svc
	return svc, nil
}

// reportEngine lazily builds the report engine.
func (r *Runner) reportEngine() (tasks.ReportEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	svc, err := r.service()
	if err != nil {
		return nil, err
	}

	repo, err := r.activityRepo()
	if err != nil {
		return nil, err
	}

	r.engine = tasks.NewReviewEngine(svc, repo, r.config.Sync.RateLimit)
	return r.engine, nil
}

// Close releases the runner's database handle.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
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
