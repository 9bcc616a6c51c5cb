package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/desertthunder/custctl/internal/models"
)

func TestExportRepository(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	t.Run("Start", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		rec, err := repo.Start(ctx, models.ExportCSV, "page=1&limit=10", started)
		if err != nil {
			t.Fatalf("failed to start export: %v", err)
		}
		if rec.ID == "" {
			t.Error("expected a generated ID")
		}

		got, err := repo.Get(ctx, rec.ID)
		if err != nil {
			t.Fatalf("failed to get export: %v", err)
		}
		if got.Status != models.ExportRunning {
			t.Errorf("expected running, got %s", got.Status)
		}
		if got.Query != "page=1&limit=10" {
			t.Errorf("unexpected query %q", got.Query)
		}
		if got.CompletedAt != nil {
			t.Errorf("expected no completion time, got %v", got.CompletedAt)
		}
	})

	t.Run("Finish Completed", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		rec, _ := repo.Start(ctx, models.ExportDump, "", started)
		rec.Complete("out/customers.csv", 42, nil, started.Add(time.Minute))

		if err := repo.Finish(ctx, rec); err != nil {
			t.Fatalf("failed to finish export: %v", err)
		}

		got, err := repo.Get(ctx, rec.ID)
		if err != nil {
			t.Fatalf("failed to get export: %v", err)
		}
		if got.Status != models.ExportCompleted || got.Path != "out/customers.csv" || got.Rows != 42 {
			t.Errorf("unexpected record %+v", got)
		}
		if got.CompletedAt == nil || !got.CompletedAt.Equal(started.Add(time.Minute)) {
			t.Errorf("unexpected completion time %v", got.CompletedAt)
		}
	})

	t.Run("Finish Failed", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		rec, _ := repo.Start(ctx, models.ExportCSV, "", started)
		rec.Complete("ignored", 3, errors.New("failed to download CSV"), started)

		if err := repo.Finish(ctx, rec); err != nil {
			t.Fatalf("failed to finish export: %v", err)
		}

		got, _ := repo.Get(ctx, rec.ID)
		if got.Status != models.ExportFailed {
			t.Errorf("expected failed, got %s", got.Status)
		}
		if got.ErrorMessage != "failed to download CSV" {
			t.Errorf("unexpected error message %q", got.ErrorMessage)
		}
		if got.Path != "" || got.Rows != 0 {
			t.Errorf("failed export should not keep a path or rows, got %+v", got)
		}
	})

	t.Run("Finish Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		rec := &models.ExportRecord{ID: "missing", Status: models.ExportCompleted}
		if err := NewExportRepository(db).Finish(ctx, rec); err == nil {
			t.Error("expected error for missing export")
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewExportRepository(db).Get(ctx, "missing"); err == nil {
			t.Error("expected error for missing export")
		}
	})

	t.Run("List Newest First", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRepository(db)
		for i := range 3 {
			if _, err := repo.Start(ctx, models.ExportCSV, "", started.Add(time.Duration(i)*time.Hour)); err != nil {
				t.Fatalf("failed to start export: %v", err)
			}
		}

		all, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list exports: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 exports, got %d", len(all))
		}
		if !all[0].StartedAt.After(all[1].StartedAt) || !all[1].StartedAt.After(all[2].StartedAt) {
			t.Errorf("expected newest first, got %v, %v, %v", all[0].StartedAt, all[1].StartedAt, all[2].StartedAt)
		}

		limited, err := repo.List(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list exports: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 exports, got %d", len(limited))
		}
	})

	t.Run("List Empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		records, err := NewExportRepository(db).List(ctx, 10)
		if err != nil {
			t.Fatalf("failed to list exports: %v", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("expected an empty slice, got %v", records)
		}
	})
}

func TestExportRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	t.Run("Start", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectExec("INSERT INTO exports").WillReturnError(boom)

		_, err = NewExportRepository(db).Start(ctx, models.ExportCSV, "", time.Now())
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped driver error, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery("SELECT (.+) FROM exports").WithArgs(5).WillReturnError(boom)

		_, err = NewExportRepository(db).List(ctx, 5)
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped driver error, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("Finish", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectExec("UPDATE exports").WillReturnError(boom)

		err = NewExportRepository(db).Finish(ctx, &models.ExportRecord{ID: "x", Status: models.ExportCompleted})
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped driver error, got %v", err)
		}
	})
}
