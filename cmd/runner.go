package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/services"
	"github.com/desertthunder/custctl/internal/session"
	"github.com/desertthunder/custctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.CustomerService
	session    *session.Session
	exports    ExportHistory
	logger     *log.Logger
	output     io.Writer
	outMu      sync.Mutex // progress updates are printed from a second goroutine
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *services.CustomerService
	Session    *session.Session
	Exports    ExportHistory // optional; exports are not recorded when nil
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
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
	if opts.Session == nil {
		opts.Session = session.New(nil)
	}
	if opts.Client == nil {
		opts.Client = services.NewCustomerService(services.CustomerServiceOpts{
			API:          services.NewAPIService(opts.Config.API.BaseURL, nil),
			DownloadPath: opts.Config.API.DownloadPath,
			Logger:       opts.Logger,
		})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		session:    opts.Session,
		exports:    opts.Exports,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        opts.Now,
	}
}

// ExportHistory records export runs. The SQLite export repository implements it.
type ExportHistory interface {
	Start(ctx context.Context, kind models.ExportKind, query string, at time.Time) (*models.ExportRecord, error)
	Finish(ctx context.Context, rec *models.ExportRecord) error
	List(ctx context.Context, limit int) ([]*models.ExportRecord, error)
}

// SetLogger swaps the logger, e.g. for a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, customersCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// recordExport stores the outcome of an export run. History is best effort: failures are logged only.
func (r *Runner) recordExport(ctx context.Context, kind models.ExportKind, query string, started time.Time, path string, rows int, runErr error) {
	if r.exports == nil {
		return
	}

	rec, err := r.exports.Start(ctx, kind, query, started)
	if err != nil {
		r.logger.Warn("failed to record export", "error", err)
		return
	}
	rec.Complete(path, rows, runErr, r.now())
	if err := r.exports.Finish(ctx, rec); err != nil {
		r.logger.Warn("failed to record export", "id", rec.ID, "error", err)
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

	r.outMu.Lock()
	defer r.outMu.Unlock()

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
	r.outMu.Lock()
	defer r.outMu.Unlock()
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	r.outMu.Lock()
	defer r.outMu.Unlock()
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
