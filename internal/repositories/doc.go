// Package repositories implements SQLite persistence for client-side state.
//
// The tables are created by the embedded migrations in the shared package:
//   - sessions: a small key/value table. [SessionRepository] satisfies session.Store, so the bearer
//     token issued at login survives between CLI invocations and TUI runs. Writes are upserts wrapped
//     in a transaction; reads of a missing key return an empty value and no error.
//   - exports: the local history of CSV downloads and multi-page dumps. [ExportRepository] inserts a
//     running record when an export starts and stores its outcome when it finishes.
package repositories
