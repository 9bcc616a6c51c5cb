package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	RequestCSV Phase = iota
	WriteCSV
	SaveCSV
	SubmitCustomer
	RefreshListing
	FetchPages
)

func (p Phase) String() string {
	switch p {
	case RequestCSV:
		return "request_csv"
	case WriteCSV:
		return "write_csv"
	case SaveCSV:
		return "save_csv"
	case SubmitCustomer:
		return "submit_customer"
	case RefreshListing:
		return "refresh_listing"
	case FetchPages:
		return "fetch_pages"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func requestingCSVUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: RequestCSV, Step: 1, Total: 3, Message: "Requesting customer export..."}
}

func writingCSVUpdate(n int64) ProgressUpdate {
	return ProgressUpdate{Phase: WriteCSV, Step: 2, Total: 3, Message: fmt.Sprintf("Wrote %d bytes", n), Data: n}
}

func savedCSVUpdate(path string) ProgressUpdate {
	return ProgressUpdate{Phase: SaveCSV, Step: 3, Total: 3, Message: fmt.Sprintf("Saved %s", path), Data: path}
}

func submittingCustomerUpdate(name string) ProgressUpdate {
	return ProgressUpdate{Phase: SubmitCustomer, Step: 1, Total: 2, Message: fmt.Sprintf("Adding %s...", name)}
}

func refreshingListingUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: RefreshListing, Step: 2, Total: 2, Message: "Refreshing customers..."}
}

func fetchedPageUpdate(done, total, rows int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchPages, Step: done, Total: total, Message: fmt.Sprintf("[%d/%d] fetched %d customers", done, total, rows)}
}

func failedPageUpdate(done, total, page int, err string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchPages, Step: done, Total: total, Message: fmt.Sprintf("[%d/%d] page %d failed: %s", done, total, page, err), Data: page}
}
