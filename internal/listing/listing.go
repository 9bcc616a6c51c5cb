// Package listing owns the state behind the customer list: the page window, the date-range filter
// and the rows of the last successful fetch.
//
// A [Controller] never fetches on its own. Every mutator reports whether the state it guards changed,
// and the caller answers a true with exactly one [Controller.Fetch]. Each fetch is tagged with a
// generation number and only the response to the most recently issued fetch is applied; older
// responses come back as [ErrStaleResponse] and leave the state alone.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/shared"
)

// FetchErrorMessage is shown in place of the rows when a fetch fails.
const FetchErrorMessage = "Failed to fetch customers"

// DefaultPageSize is used when [Opts.PageSize] is not positive.
const DefaultPageSize = 10

// ErrStaleResponse is returned by [Controller.Fetch] when a newer fetch was issued before this one completed.
var ErrStaleResponse = errors.New("listing response superseded by a newer request")

// Lister is the part of the API client the controller needs.
type Lister interface {
	ListCustomers(ctx context.Context, token string, q models.ListQuery) (*models.CustomerPage, error)
}

// TokenSource yields the current session token, "" when logged out.
type TokenSource interface {
	Token() string
}

// Navigator moves the user to the login entry point.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// Opts configures a [Controller].
type Opts struct {
	Lister    Lister
	Tokens    TokenSource
	Navigator Navigator
	PageSize  int
	Now       func() time.Time
	Logger    *log.Logger
}

// Controller is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	lister Lister
	tokens TokenSource
	nav    Navigator
	now    func() time.Time
	logger *log.Logger

	pageSize   int
	page       int
	totalPages int
	start      time.Time
	end        time.Time
	customers  []models.Customer
	errMsg     string
	gen        uint64
	loading    bool
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Page       int
	PageSize   int
	TotalPages int
	Start      time.Time
	End        time.Time
	Customers  []models.Customer
	Err        string
	Loading    bool
	HasPrev    bool
	HasNext    bool

	// Refetch is set by [Controller.Fetch] when the response moved the page back into range.
	Refetch bool
}

// New creates a controller on page 1 with the default date range (today through tomorrow).
func New(opts Opts) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Navigator == nil {
		opts.Navigator = NavigatorFunc(func() {})
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	c := &Controller{
		lister:     opts.Lister,
		tokens:     opts.Tokens,
		nav:        opts.Navigator,
		now:        opts.Now,
		logger:     opts.Logger,
		pageSize:   opts.PageSize,
		page:       1,
		totalPages: 1,
		customers:  []models.Customer{},
	}
	c.start, c.end = c.defaultRange()
	return c
}

// DefaultRange returns the range a reset restores: today and tomorrow, at local midnight.
func (c *Controller) DefaultRange() (start, end time.Time) {
	return c.defaultRange()
}

func (c *Controller) defaultRange() (time.Time, time.Time) {
	today := shared.StartOfDay(c.now())
	return today, today.AddDate(0, 0, 1)
}

// Query is the request the next fetch (or a CSV export) would make.
func (c *Controller) Query() models.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked()
}

func (c *Controller) queryLocked() models.ListQuery {
	return models.ListQuery{Page: c.page, Limit: c.pageSize, Start: c.start, End: c.end}
}

// Fetch loads the current page.
//
// Without a session token it navigates to login and returns [shared.ErrNotAuthenticated] without calling the API;
// any fetch still in flight is then treated as stale.
// On failure the rows are emptied and [FetchErrorMessage] is set; page and totalPages keep their values.
// An authentication failure also navigates to login.
func (c *Controller) Fetch(ctx context.Context) (Snapshot, error) {
	token := c.tokens.Token()
	if token == "" {
		// A response still in flight from before the session ended must not be applied.
		c.mu.Lock()
		c.gen++
		c.loading = false
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.logger.Debug("no session token, redirecting to login")
		c.nav.ToLogin()
		return snap, shared.ErrNotAuthenticated
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	q := c.queryLocked()
	c.loading = true
	c.mu.Unlock()

	c.logger.Debug("fetching customers", "generation", gen, "page", q.Page, "start", shared.FormatDate(q.Start), "end", shared.FormatDate(q.End))

	page, err := c.lister.ListCustomers(ctx, token, q)

	c.mu.Lock()
	if gen != c.gen {
		latest := c.gen
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Debug("discarding stale response", "generation", gen, "latest", latest)
		return snap, ErrStaleResponse
	}
	c.loading = false

	if err != nil {
		c.customers = []models.Customer{}
		c.errMsg = FetchErrorMessage
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.logger.Warn("failed to fetch customers", "error", err)
		if errors.Is(err, shared.ErrAuthFailed) || errors.Is(err, shared.ErrNotAuthenticated) {
			c.nav.ToLogin()
		}
		return snap, fmt.Errorf("failed to fetch customers: %w", err)
	}

	c.customers = page.Customers
	if c.customers == nil {
		c.customers = []models.Customer{}
	}
	c.totalPages = max(page.TotalPages, 1)
	c.errMsg = ""

	refetch := false
	if clamped := clamp(c.page, c.totalPages); clamped != c.page {
		c.page = clamped
		refetch = true
	}

	snap := c.snapshotLocked()
	snap.Refetch = refetch
	c.mu.Unlock()

	return snap, nil
}

// Next advances one page. It reports false, changing nothing, on the last page.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.page >= c.totalPages {
		return false
	}
	c.page++
	return true
}

// Prev goes back one page. It reports false, changing nothing, on the first page.
func (c *Controller) Prev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.page <= 1 {
		return false
	}
	c.page--
	return true
}

// GoTo jumps to page, clamped into [1, totalPages].
func (c *Controller) GoTo(page int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	page = clamp(page, c.totalPages)
	if page == c.page {
		return false
	}
	c.page = page
	return true
}

// SetStartDate sets the lower bound of the filter; a zero t removes it.
// A start after the current end is rejected with [shared.ErrInvalidDateRange].
func (c *Controller) SetStartDate(t time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t = normalize(t)
	if !t.IsZero() && !c.end.IsZero() && t.After(c.end) {
		return false, fmt.Errorf("%w: start %s is after end %s", shared.ErrInvalidDateRange, shared.FormatDate(t), shared.FormatDate(c.end))
	}
	if t.Equal(c.start) {
		return false, nil
	}
	c.start = t
	return true, nil
}

// SetEndDate sets the upper bound of the filter; a zero t removes it.
// An end before the current start is rejected with [shared.ErrInvalidDateRange].
func (c *Controller) SetEndDate(t time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t = normalize(t)
	if !t.IsZero() && !c.start.IsZero() && t.Before(c.start) {
		return false, fmt.Errorf("%w: end %s is before start %s", shared.ErrInvalidDateRange, shared.FormatDate(t), shared.FormatDate(c.start))
	}
	if t.Equal(c.end) {
		return false, nil
	}
	c.end = t
	return true, nil
}

// ClearDates removes both bounds.
func (c *Controller) ClearDates() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.start.IsZero() && c.end.IsZero() {
		return false
	}
	c.start, c.end = time.Time{}, time.Time{}
	return true
}

// ResetDates restores the default range. It always reports true so the reset is followed by one fetch.
func (c *Controller) ResetDates() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.start, c.end = c.defaultRange()
	return true
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	customers := make([]models.Customer, len(c.customers))
	copy(customers, c.customers)

	return Snapshot{
		Page:       c.page,
		PageSize:   c.pageSize,
		TotalPages: c.totalPages,
		Start:      c.start,
		End:        c.end,
		Customers:  customers,
		Err:        c.errMsg,
		Loading:    c.loading,
		HasPrev:    c.page > 1,
		HasNext:    c.page < c.totalPages,
	}
}

func clamp(page, total int) int {
	return max(1, min(page, max(total, 1)))
}

func normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return shared.StartOfDay(t)
}
