package models

import "time"

// ExportKind says which command produced an [ExportRecord].
type ExportKind string

const (
	ExportCSV  ExportKind = "csv"  // server-side CSV download
	ExportDump ExportKind = "dump" // client-side multi-page dump
)

// ExportStatus is the lifecycle state of an [ExportRecord].
type ExportStatus string

const (
	ExportRunning   ExportStatus = "running"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
)

// ExportRecord is one entry in the local export history.
type ExportRecord struct {
	ID           string       `json:"id"`
	Kind         ExportKind   `json:"kind"`
	Query        string       `json:"query"`
	Status       ExportStatus `json:"status"`
	Path         string       `json:"path,omitempty"`
	Rows         int          `json:"rows"`
	ErrorMessage string       `json:"error,omitempty"`
	StartedAt    time.Time    `json:"startedAt"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
}

// Complete marks the record finished, recording err when the export failed.
func (e *ExportRecord) Complete(path string, rows int, err error, at time.Time) {
	e.CompletedAt = &at
	if err != nil {
		e.Status = ExportFailed
		e.ErrorMessage = err.Error()
		return
	}
	e.Status = ExportCompleted
	e.Path = path
	e.Rows = rows
}
