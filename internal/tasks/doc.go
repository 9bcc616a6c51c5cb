// Package tasks implements the user flows that sit on top of the customer listing.
//
// # Create Customer
//
// [CreateFlow] owns the entry modal and its form. [CreateFlow.Submit]:
//
//  1. clears the previous error
//  2. rejects a form with a blank name, email or phone locally ([shared.ErrValidation], no request)
//  3. posts the customer
//  4. on success resets the form to its defaults (active = true), closes the modal and asks the
//     [Refresher] to re-fetch the current page exactly once
//  5. on failure keeps the modal open with the submitted values and shows the backend's message,
//     or [CreateErrorMessage] when there is none
//
// # CSV Export
//
// [ExportFlow.Run] downloads the filtered customer export and saves it as customers.csv:
//   - the [Indicator] is started before the request and stopped on every exit path
//   - any failure raises [DownloadErrorMessage] through the [Alerter]
//   - a non-2xx response never creates a file
//   - the body is streamed into a temporary file next to the destination, which is renamed into
//     place on success and removed on every other path
//
// # Bulk Export
//
// [BulkExport] saves every page of a filtered listing locally in one file (csv, markdown, txt or json)
// plus an export_manifest.json. Page 1 is fetched first to learn the page count, then a worker pool
// fetches the rest behind a shared rate limiter. A failed page is recorded in the manifest and does
// not stop the run.
//
// # Progress Reporting
//
// Every flow accepts an optional progress channel. Updates are sent with select/default so a slow
// or absent reader never blocks the flow.
package tasks
