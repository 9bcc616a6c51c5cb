package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/custctl/internal/formatter"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/shared"
	"github.com/desertthunder/custctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// listQuery builds the query shared by list and export from the filter flags.
//
// Without dates the range defaults to today through tomorrow, matching the dashboard.
func (r *Runner) listQuery(cmd *cli.Command) (models.ListQuery, error) {
	q := models.ListQuery{Page: cmd.Int("page"), Limit: cmd.Int("limit")}
	if q.Page < 1 {
		return q, fmt.Errorf("%w: --page must be at least 1", shared.ErrInvalidArgument)
	}
	if q.Limit <= 0 {
		q.Limit = r.config.Listing.PageSize
	}

	if cmd.Bool("all-dates") {
		return q, nil
	}

	today := shared.StartOfDay(r.now())
	q.Start, q.End = today, today.AddDate(0, 0, 1)

	if s := cmd.String("start"); s != "" {
		t, err := shared.ParseDate(s)
		if err != nil {
			return q, err
		}
		q.Start = t
	}
	if s := cmd.String("end"); s != "" {
		t, err := shared.ParseDate(s)
		if err != nil {
			return q, err
		}
		q.End = t
	}

	if q.Start.After(q.End) {
		return q, fmt.Errorf("%w: %s is after %s", shared.ErrInvalidDateRange, shared.FormatDate(q.Start), shared.FormatDate(q.End))
	}
	return q, nil
}

// CustomersList prints one page of customers.
func (r *Runner) CustomersList(ctx context.Context, cmd *cli.Command) error {
	q, err := r.listQuery(cmd)
	if err != nil {
		return err
	}

	r.logger.Debug("listing customers", "query", q.Encode())

	page, err := r.client.ListCustomers(ctx, r.session.Token(), q)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteExport(page, format, out); err != nil {
			return err
		}
		r.logger.Info("page written", "path", out, "customers", len(page.Customers))
		return r.writePlain("✓ Wrote %d customers to %s\n", len(page.Customers), out)
	}

	data, err := formatter.Export(page, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if format == "" || format == formatter.FormatTable {
		r.writePlain("%s\n", formatter.PageSummary(q.Page, page.TotalPages, shared.FormatDate(q.Start), shared.FormatDate(q.End)))
		if q.Page > page.TotalPages {
			r.writePlain("⚠ Page %d is past the last page (%d)\n", q.Page, page.TotalPages)
		}
	}
	return nil
}

// CustomersCreate adds a customer through [tasks.CreateFlow].
func (r *Runner) CustomersCreate(ctx context.Context, cmd *cli.Command) error {
	flow := tasks.NewCreateFlow(tasks.CreateOpts{
		Creator: r.client,
		Tokens:  r.session,
		Logger:  r.logger,
	})
	flow.Open()
	flow.SetForm(tasks.CreateForm{
		Name:    cmd.String("name"),
		Email:   cmd.String("email"),
		Phone:   cmd.String("phone"),
		Address: cmd.String("address"),
		Notes:   cmd.String("notes"),
		Active:  !cmd.Bool("inactive"),
	})

	created, err := r.withProgress(func(progress chan<- tasks.ProgressUpdate) (any, error) {
		return flow.Submit(ctx, progress)
	})
	if err != nil {
		if msg := flow.Err(); msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}

	customer := created.(*models.Customer)
	if cmd.Bool("json") {
		return r.writeJSON(customer, true)
	}
	return r.writePlain("✓ Added %s (%s)\n", customer.Name, customer.Email)
}

// CustomersExport downloads the filtered CSV through [tasks.ExportFlow].
func (r *Runner) CustomersExport(ctx context.Context, cmd *cli.Command) error {
	q, err := r.listQuery(cmd)
	if err != nil {
		return err
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Export.Dir
	}

	flow := tasks.NewExportFlow(tasks.ExportOpts{
		Downloader: r.client,
		Tokens:     r.session,
		Alerter: tasks.AlerterFunc(func(msg string) {
			r.writePlain("✗ %s\n", msg)
		}),
		Dir:      dir,
		Filename: r.config.Export.Filename,
		Logger:   r.logger,
	})

	started := r.now()
	saved, err := r.withProgress(func(progress chan<- tasks.ProgressUpdate) (any, error) {
		return flow.Run(ctx, progress, q)
	})
	if err != nil {
		r.recordExport(ctx, models.ExportCSV, q.Encode(), started, "", 0, err)
		return err
	}

	path := saved.(string)
	rows, err := formatter.CountCSVRows(path)
	if err != nil {
		r.logger.Warn("could not count exported rows", "path", path, "error", err)
	}
	r.recordExport(ctx, models.ExportCSV, q.Encode(), started, path, rows, nil)
	r.writePlain("✓ Saved %s\n", path)

	if cmd.Bool("open") {
		if err := shared.OpenFile(path); err != nil {
			r.logger.Warn("could not open export", "error", err)
		}
	}
	return nil
}

// CustomersDump saves every page of the filtered listing through [tasks.BulkExport].
func (r *Runner) CustomersDump(ctx context.Context, cmd *cli.Command) error {
	q, err := r.listQuery(cmd)
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}

	started := r.now()
	res, err := r.withProgress(func(progress chan<- tasks.ProgressUpdate) (any, error) {
		return tasks.BulkExport(ctx, progress, r.client, r.session, q, opts)
	})
	if err != nil {
		r.recordExport(ctx, models.ExportDump, q.Encode(), started, "", 0, err)
		return err
	}

	result := res.(*tasks.BulkExportResult)
	r.recordExport(ctx, models.ExportDump, q.Encode(), started, result.OutputFile, result.TotalCustomers, nil)
	r.writePlainln("Export Complete")
	r.writePlain("Customers: %d\n", result.TotalCustomers)
	r.writePlain("Pages: %d/%d fetched\n", result.FetchedPages, result.TotalPages)
	if result.FailedPages > 0 {
		r.writePlain("⚠ %d pages failed, see %s\n", result.FailedPages, result.ManifestPath)
	}
	r.writePlain("Output: %s\n", result.OutputFile)
	return nil
}

// CustomersHistory lists recorded export runs, newest first.
func (r *Runner) CustomersHistory(ctx context.Context, cmd *cli.Command) error {
	if r.exports == nil {
		return fmt.Errorf("%w: export history needs the local database", shared.ErrDatabaseUnavailable)
	}

	records, err := r.exports.List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}
	if len(records) == 0 {
		return r.writePlain("No exports recorded yet\n")
	}

	for _, rec := range records {
		switch rec.Status {
		case models.ExportCompleted:
			r.writePlain("✓ %s  %-4s  %s  (%d rows)\n", rec.StartedAt.Format(time.DateTime), rec.Kind, rec.Path, rec.Rows)
		case models.ExportFailed:
			r.writePlain("✗ %s  %-4s  %s\n", rec.StartedAt.Format(time.DateTime), rec.Kind, rec.ErrorMessage)
		default:
			r.writePlain("… %s  %-4s  %s\n", rec.StartedAt.Format(time.DateTime), rec.Kind, rec.Status)
		}
		if rec.Query != "" {
			r.writePlain("    %s\n", rec.Query)
		}
	}
	return nil
}

// withProgress runs fn with a progress channel whose updates are printed as they arrive.
// It returns once every update has been written.
func (r *Runner) withProgress(fn func(chan<- tasks.ProgressUpdate) (any, error)) (any, error) {
	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.RequestCSV, tasks.SubmitCustomer:
				r.writePlain("📥 %s\n", update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := fn(progressCh)
	close(progressCh)
	<-done

	return result, err
}
