package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/shared"
)

// DownloadErrorMessage is raised through the [Alerter] whenever an export fails.
const DownloadErrorMessage = "Failed to download CSV"

// DefaultExportFilename is the name the saved export gets.
const DefaultExportFilename = "customers.csv"

// Downloader is the part of the API client [ExportFlow] needs.
type Downloader interface {
	DownloadCustomersCSV(ctx context.Context, token string, q models.ListQuery) (io.ReadCloser, error)
}

// Indicator shows that an export is in progress.
type Indicator interface {
	Start()
	Stop()
}

// Alerter tells the user an export failed.
type Alerter interface {
	Alert(msg string)
}

// AlerterFunc adapts a function to [Alerter].
type AlerterFunc func(msg string)

func (f AlerterFunc) Alert(msg string) { f(msg) }

type nopIndicator struct{}

func (nopIndicator) Start() {}
func (nopIndicator) Stop()  {}

// ExportOpts configures an [ExportFlow].
type ExportOpts struct {
	Downloader Downloader
	Tokens     TokenSource
	Indicator  Indicator
	Alerter    Alerter
	Dir        string // Output directory (default: current directory)
	Filename   string // Output file name (default: customers.csv)
	Logger     *log.Logger
}

// ExportFlow saves the filtered customer export to disk.
type ExportFlow struct {
	downloader Downloader
	tokens     TokenSource
	indicator  Indicator
	alerter    Alerter
	dir        string
	filename   string
	logger     *log.Logger
}

func NewExportFlow(opts ExportOpts) *ExportFlow {
	if opts.Indicator == nil {
		opts.Indicator = nopIndicator{}
	}
	if opts.Alerter == nil {
		opts.Alerter = AlerterFunc(func(string) {})
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Filename == "" {
		opts.Filename = DefaultExportFilename
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &ExportFlow{
		downloader: opts.Downloader,
		tokens:     opts.Tokens,
		indicator:  opts.Indicator,
		alerter:    opts.Alerter,
		dir:        opts.Dir,
		filename:   opts.Filename,
		logger:     opts.Logger,
	}
}

// Path is where a successful export is written.
func (e *ExportFlow) Path() string {
	return filepath.Join(e.dir, e.filename)
}

// Run downloads the export for q and returns the saved file's path.
func (e *ExportFlow) Run(ctx context.Context, progress chan<- ProgressUpdate, q models.ListQuery) (string, error) {
	e.indicator.Start()
	defer e.indicator.Stop()

	path, err := e.run(ctx, progress, q)
	if err != nil {
		e.logger.Warn("customer export failed", "error", err)
		e.alerter.Alert(DownloadErrorMessage)
		return "", err
	}

	e.logger.Info("customer export saved", "path", path)
	return path, nil
}

func (e *ExportFlow) run(ctx context.Context, progress chan<- ProgressUpdate, q models.ListQuery) (string, error) {
	token := e.tokens.Token()
	if token == "" {
		return "", fmt.Errorf("%w: %w", shared.ErrDownloadFailed, shared.ErrNotAuthenticated)
	}

	sendProgress(progress, requestingCSVUpdate())

	body, err := e.downloader.DownloadCustomersCSV(ctx, token, q)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create output directory: %w", shared.ErrDownloadFailed, err)
	}

	tmp, err := os.CreateTemp(e.dir, "customers-*.csv.part")
	if err != nil {
		return "", fmt.Errorf("%w: failed to create temporary file: %w", shared.ErrDownloadFailed, err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to write export: %w", shared.ErrDownloadFailed, err)
	}

	sendProgress(progress, writingCSVUpdate(n))

	path := e.Path()
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: failed to save export: %w", shared.ErrDownloadFailed, err)
	}

	sendProgress(progress, savedCSVUpdate(path))
	return path, nil
}
