package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/repositories"
	"github.com/desertthunder/notehub/internal/services"
	"github.com/desertthunder/notehub/internal/shared"
	"github.com/desertthunder/notehub/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, cookie jar and backend API are opened on first use, so commands that never talk to the backend
// (setup config) work without them.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	jar     *repositories.PersistentJar
	exports *repositories.ExportRepository
	api     services.Service
	engine  *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	API        services.Service
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		api:        opts.API,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, authCommand, notesCommand, profileCommand, setupCommand, browseCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// configure reloads the configuration when --config names a different file than the one loaded at startup.
func (r *Runner) configure(cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return nil
	}

	config, err := shared.ResolveConfig(path)
	if err != nil {
		return err
	}
	r.config = config
	r.configPath = path
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Log.Level))
	return nil
}

// database opens and migrates the local database once.
func (r *Runner) database(ctx context.Context) (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// backend returns the interactive API, whose cookies persist in the local database between runs.
func (r *Runner) backend(ctx context.Context, cmd *cli.Command) (services.Service, error) {
	if err := r.configure(cmd); err != nil {
		return nil, err
	}
	if r.api != nil {
		return r.api, nil
	}

	db, err := r.database(ctx)
	if err != nil {
		return nil, err
	}

	jar, err := repositories.NewPersistentJar(ctx, repositories.NewCookieRepository(db), r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}
	r.jar = jar
	r.api = services.NewBrowserAPI(r.config.API.BaseURL, r.config.API.Timeout(), jar)
	return r.api, nil
}

// exportEngine wires the export engine to the backend and the export history table.
func (r *Runner) exportEngine(ctx context.Context, cmd *cli.Command) (*tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	api, err := r.backend(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if r.exports == nil {
		if db, err := r.database(ctx); err == nil {
			r.exports = repositories.NewExportRepository(db)
		} else {
			r.logger.Warn("export history disabled", "error", err)
		}
	}

	var recorder tasks.ExportRecorder
	if r.exports != nil {
		recorder = r.exports
	}
	r.engine = tasks.NewEngine(api, recorder, r.logger)
	return r.engine, nil
}

// refreshToken reads the stored refresh token for the configured backend.
func (r *Runner) refreshToken() string {
	if r.jar == nil {
		return ""
	}
	u, err := url.Parse(r.config.API.BaseURL)
	if err != nil {
		return ""
	}
	return services.TokenFromCookies(r.jar.Cookies(u)).RefreshToken
}

// Close releases the database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
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
