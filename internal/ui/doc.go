// Package ui implements the interactive customer dashboard using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [LoginView] : sign in, or sign up with ctrl+t
//  2. [DashboardView] : the paginated customer table with its date-range filter
//  3. [CreateView] : the new-customer modal
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving results
// of background commands through the [Msg] union type. All state that outlives a frame lives in the
// listing controller and the create/export flows; the model only mirrors their snapshots.
//
// Every listing change (page, start/end date, clear, reset) issues exactly one fetch. Responses to
// superseded fetches are dropped, and a missing or rejected session sends the user back to the login view.
//
// Keyboard navigation uses vim-style bindings (h/l for pages, [ ] { } for dates, n, d, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
