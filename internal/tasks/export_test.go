package tasks

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/services"
	"github.com/desertthunder/custctl/internal/shared"
	tu "github.com/desertthunder/custctl/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingIndicator struct {
	starts, stops int
}

func (c *countingIndicator) Start() { c.starts++ }
func (c *countingIndicator) Stop()  { c.stops++ }

type recordingAlerter struct {
	alerts []string
}

func (r *recordingAlerter) Alert(msg string) { r.alerts = append(r.alerts, msg) }

type fakeDownloader struct {
	body  string
	err   error
	calls int
	query models.ListQuery
}

func (f *fakeDownloader) DownloadCustomersCSV(_ context.Context, _ string, q models.ListQuery) (io.ReadCloser, error) {
	f.calls++
	f.query = q
	if f.err != nil {
		return nil, f.err
	}
	return tu.NewTrackingCloser(f.body), nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingReader) Close() error             { return nil }

type brokenBodyDownloader struct{}

func (brokenBodyDownloader) DownloadCustomersCSV(context.Context, string, models.ListQuery) (io.ReadCloser, error) {
	return failingReader{}, nil
}

func TestExportFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves Customers CSV", func(t *testing.T) {
		dir := t.TempDir()
		ind := &countingIndicator{}
		alerts := &recordingAlerter{}
		dl := &fakeDownloader{body: "name,email\nAda,ada@example.com\n"}
		flow := NewExportFlow(ExportOpts{Downloader: dl, Tokens: staticToken("tok"), Indicator: ind, Alerter: alerts, Dir: dir})

		progress := make(chan ProgressUpdate, 8)
		q := models.ListQuery{Page: 2, Limit: 10}
		path, err := flow.Run(ctx, progress, q)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "customers.csv"), path)
		assert.Equal(t, "name,email\nAda,ada@example.com\n", tu.MustReadFile(t, path))
		assert.Equal(t, []string{"customers.csv"}, tu.MustReadDir(t, dir), "temporary file is cleaned up")
		assert.Equal(t, q, dl.query)
		assert.Equal(t, 1, ind.starts)
		assert.Equal(t, 1, ind.stops)
		assert.Empty(t, alerts.alerts)
		assert.Len(t, progress, 3)
	})

	t.Run("Custom Filename And Missing Dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "exports", "jan")
		flow := NewExportFlow(ExportOpts{Downloader: &fakeDownloader{body: "x"}, Tokens: staticToken("tok"), Dir: dir, Filename: "jan.csv"})

		path, err := flow.Run(ctx, nil, models.ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "jan.csv"), path)
		tu.AssertFileExists(t, path)
	})

	t.Run("Error Status Alerts Without Creating A File", func(t *testing.T) {
		for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			dir := t.TempDir()
			ind := &countingIndicator{}
			alerts := &recordingAlerter{}
			client := services.NewCustomerService(services.CustomerServiceOpts{API: services.NewAPIService(server.URL, nil)})
			flow := NewExportFlow(ExportOpts{Downloader: client, Tokens: staticToken("tok"), Indicator: ind, Alerter: alerts, Dir: dir})

			path, err := flow.Run(ctx, nil, models.ListQuery{Page: 1, Limit: 10})
			server.Close()

			assert.ErrorIs(t, err, shared.ErrDownloadFailed, "status %d", status)
			assert.Empty(t, path)
			assert.Equal(t, []string{DownloadErrorMessage}, alerts.alerts)
			assert.Empty(t, tu.MustReadDir(t, dir), "no file for status %d", status)
			assert.Equal(t, 1, ind.starts)
			assert.Equal(t, 1, ind.stops)
		}
	})

	t.Run("No Token", func(t *testing.T) {
		dl := &fakeDownloader{}
		alerts := &recordingAlerter{}
		ind := &countingIndicator{}
		flow := NewExportFlow(ExportOpts{Downloader: dl, Tokens: staticToken(""), Indicator: ind, Alerter: alerts, Dir: t.TempDir()})

		_, err := flow.Run(ctx, nil, models.ListQuery{})
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Zero(t, dl.calls)
		assert.Equal(t, []string{DownloadErrorMessage}, alerts.alerts)
		assert.Equal(t, 1, ind.stops)
	})

	t.Run("Broken Body Removes Temporary File", func(t *testing.T) {
		dir := t.TempDir()
		alerts := &recordingAlerter{}
		ind := &countingIndicator{}
		flow := NewExportFlow(ExportOpts{Downloader: brokenBodyDownloader{}, Tokens: staticToken("tok"), Indicator: ind, Alerter: alerts, Dir: dir})

		_, err := flow.Run(ctx, nil, models.ListQuery{})
		assert.ErrorIs(t, err, shared.ErrDownloadFailed)
		assert.Empty(t, tu.MustReadDir(t, dir))
		assert.Equal(t, []string{DownloadErrorMessage}, alerts.alerts)
		assert.Equal(t, 1, ind.stops)
	})

	t.Run("Path", func(t *testing.T) {
		flow := NewExportFlow(ExportOpts{})
		assert.Equal(t, "customers.csv", flow.Path())
	})
}
