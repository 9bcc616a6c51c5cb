package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/custctl/internal/formatter"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/shared"
	"golang.org/x/time/rate"
)

// MaxBulkPages is the largest page count [BulkExport] will fetch.
const MaxBulkPages = 10000

// PageLister is the part of the API client [BulkExport] needs.
type PageLister interface {
	ListCustomers(ctx context.Context, token string, q models.ListQuery) (*models.CustomerPage, error)
}

// BulkExportOpts contains configuration for saving every page of a filtered listing.
type BulkExportOpts struct {
	Format     string  // Export format: csv, markdown, txt, json (default: csv)
	OutputDir  string  // Output directory (default: customers_export_{epoch})
	NumWorkers int     // Concurrent page fetchers (default: 4, max: 8)
	RateLimit  float64 // Requests per second (default: 5)
}

// PageResult records the outcome of fetching one page.
type PageResult struct {
	Page      int    `json:"page"`
	Customers int    `json:"customers"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`

	rows []models.Customer
}

// BulkExportResult summarizes a [BulkExport] run; it is also written as the manifest.
type BulkExportResult struct {
	Query          string       `json:"query"`
	TotalPages     int          `json:"totalPages"`
	FetchedPages   int          `json:"fetchedPages"`
	FailedPages    int          `json:"failedPages"`
	TotalCustomers int          `json:"totalCustomers"`
	OutputFile     string       `json:"outputFile"`
	ManifestPath   string       `json:"-"`
	Pages          []PageResult `json:"pages"`
}

// BulkExport fetches every page of the listing filtered by q and saves the combined rows in one file.
//
// Page 1 is fetched first to learn the page count; it failing, or reporting more than [MaxBulkPages],
// aborts the run. The remaining pages are fetched by a worker pool behind a rate limiter. Failed pages
// are recorded in the manifest and their rows are missing from the output; rows keep page order.
func BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	lister PageLister,
	tokens TokenSource,
	q models.ListQuery,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	token := tokens.Token()
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatCSV
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("customers_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	q.Page = 1

	ext, err := formatExtension(opts.Format)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	first, err := lister.ListCustomers(ctx, token, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	total := max(first.TotalPages, 1)
	if total > MaxBulkPages {
		return nil, fmt.Errorf("%w: listing reports %d pages, more than the %d a dump fetches", shared.ErrAPIRequest, total, MaxBulkPages)
	}
	result := &BulkExportResult{
		Query:      q.Encode(),
		TotalPages: total,
		Pages:      []PageResult{{Page: 1, Customers: len(first.Customers), Success: true, rows: first.Customers}},
	}
	sendProgress(prog, fetchedPageUpdate(1, total, len(first.Customers)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	jobs := make(chan int, opts.NumWorkers)
	results := make(chan PageResult, opts.NumWorkers)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go pageWorker(ctx, &wg, jobs, results, lister, token, q, limiter)
	}

	go func() {
		defer close(jobs)
		for page := 2; page <= total; page++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- page:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Pages = append(result.Pages, res)
		if res.Success {
			sendProgress(prog, fetchedPageUpdate(len(result.Pages), total, res.Customers))
		} else {
			sendProgress(prog, failedPageUpdate(len(result.Pages), total, res.Page, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Pages, func(i, j int) bool { return result.Pages[i].Page < result.Pages[j].Page })

	combined := &models.CustomerPage{Customers: []models.Customer{}, TotalPages: total}
	for _, p := range result.Pages {
		if p.Success {
			result.FetchedPages++
			combined.Customers = append(combined.Customers, p.rows...)
		} else {
			result.FailedPages++
		}
	}
	result.TotalCustomers = len(combined.Customers)

	result.OutputFile = filepath.Join(opts.OutputDir, "customers"+ext)
	if err := formatter.WriteExport(combined, opts.Format, result.OutputFile); err != nil {
		return result, err
	}
	sendProgress(prog, savedCSVUpdate(result.OutputFile))

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// pageWorker fetches pages from the jobs channel until it is drained or ctx is done.
func pageWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan int,
	results chan<- PageResult,
	lister PageLister,
	token string,
	base models.ListQuery,
	limiter *rate.Limiter,
) {
	defer wg.Done()

	for page := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		q := base
		q.Page = page
		res := PageResult{Page: page}

		got, err := lister.ListCustomers(ctx, token, q)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
			res.Customers = len(got.Customers)
			res.rows = got.Customers
		}
		results <- res
	}
}

func formatExtension(format string) (string, error) {
	switch format {
	case formatter.FormatCSV:
		return ".csv", nil
	case formatter.FormatMarkdown, "md":
		return ".md", nil
	case formatter.FormatText, "text":
		return ".txt", nil
	case formatter.FormatJSON:
		return ".json", nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidArgument, format)
	}
}
