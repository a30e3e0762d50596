package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/discq/internal/services"
	"github.com/desertthunder/discq/internal/shared"
	"github.com/desertthunder/discq/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config        *shared.Config
	service       services.Service
	oauth         services.OAuthService
	cacher        tasks.ReleaseCacher
	logger        *log.Logger
	output        io.Writer
	engine        *tasks.CollectionEngine
	authenticated bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Service services.Service
	OAuth   services.OAuthService
	Cacher  tasks.ReleaseCacher
	Logger  *log.Logger
	Output  io.Writer
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

	engine := tasks.NewCollectionEngine(opts.Service, opts.Cacher)

	return &Runner{
		config:  opts.Config,
		service: opts.Service,
		oauth:   opts.OAuth,
		cacher:  opts.Cacher,
		logger:  opts.Logger,
		output:  opts.Output,
		engine:  engine,
	}
}

// SetLogger replaces the runner's logger, used by the TUI to redirect logs to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, foldersCommand, releasesCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensureAuthenticated installs the stored access token pair on the service.
//
// Runs at most once per process; API commands call it before touching the engine.
func (r *Runner) ensureAuthenticated(ctx context.Context) error {
	if r.authenticated {
		return nil
	}
	if r.service == nil {
		return fmt.Errorf("%w: Discogs service not initialized, set consumer_key and consumer_secret in config.toml", shared.ErrServiceUnavailable)
	}
	if !r.config.Credentials.Discogs.HasToken() {
		return fmt.Errorf("%w: run 'discq auth login' first", shared.ErrNotAuthenticated)
	}

	if err := r.service.Authenticate(ctx, r.config.Credentials.Discogs.Map()); err != nil {
		return err
	}

	r.authenticated = true
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
