package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/custctl/internal/listing"
	"github.com/desertthunder/custctl/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgListingFetched MsgKind = iota
	MsgLoggedIn
	MsgCustomerCreated
	MsgExportDone
)

type fetchResult struct {
	snap listing.Snapshot
	err  error
}

type createResult struct {
	customer  *models.Customer
	err       error
	refreshed *fetchResult
}

type exportResult struct {
	path string
	err  error
}

// listingFetchedMsg is the constructor for [MsgListingFetched]
func listingFetchedMsg(snap listing.Snapshot, err error) Msg {
	return Msg{kind: MsgListingFetched, data: fetchResult{snap: snap, err: err}}
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(err error) Msg {
	return Msg{kind: MsgLoggedIn, data: err}
}

// customerCreatedMsg is the constructor for [MsgCustomerCreated]
func customerCreatedMsg(c *models.Customer, err error, refreshed *fetchResult) Msg {
	return Msg{kind: MsgCustomerCreated, data: createResult{customer: c, err: err, refreshed: refreshed}}
}

// exportDoneMsg is the constructor for [MsgExportDone]
func exportDoneMsg(path string, err error) Msg {
	return Msg{kind: MsgExportDone, data: exportResult{path: path, err: err}}
}
