package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/custctl/internal/formatter"
	"github.com/desertthunder/custctl/internal/listing"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/session"
	"github.com/desertthunder/custctl/internal/shared"
	"github.com/desertthunder/custctl/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	DashboardView
	CreateView
)

// Client is the subset of services.CustomerService the TUI drives.
type Client interface {
	listing.Lister
	tasks.CustomerCreator
	tasks.Downloader
	Register(ctx context.Context, creds models.Credentials) error
	Login(ctx context.Context, creds models.Credentials) (string, error)
}

// Deps are the TUI's collaborators.
type Deps struct {
	Client         Client
	Session        *session.Session
	PageSize       int
	ExportDir      string
	ExportFilename string
	Now            func() time.Time
	Logger         *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	client  Client
	session *session.Session
	logger  *log.Logger
	now     func() time.Time

	listing   *listing.Controller
	create    *tasks.CreateFlow
	export    *tasks.ExportFlow
	redirect  *redirector
	activity  *activity
	notices   *notices
	refresher *refresher

	snap        listing.Snapshot
	table       table.Model
	login       loginForm
	createModal createModal
	spinner     spinner.Model
	pending     int
	status      string
	alert       string

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel wires the listing controller and the create/export flows to the TUI.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(io.Discard)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	m := &Model{
		ctx:      ctx,
		view:     LoginView,
		client:   deps.Client,
		session:  deps.Session,
		logger:   deps.Logger,
		now:      deps.Now,
		redirect: &redirector{},
		activity: &activity{},
		notices:  &notices{},
		table:    newCustomerTable(),
		login:    newLoginForm(),
		help:     help.New(),
		keys:     newKeyMap(),
	}

	m.listing = listing.New(listing.Opts{
		Lister:    deps.Client,
		Tokens:    deps.Session,
		Navigator: m.redirect,
		PageSize:  deps.PageSize,
		Now:       deps.Now,
		Logger:    shared.WithLogger(deps.Logger, "component", "listing"),
	})
	m.refresher = &refresher{ctrl: m.listing}
	m.create = tasks.NewCreateFlow(tasks.CreateOpts{
		Creator:   deps.Client,
		Tokens:    deps.Session,
		Refresher: m.refresher,
		Logger:    deps.Logger,
	})
	m.export = tasks.NewExportFlow(tasks.ExportOpts{
		Downloader: deps.Client,
		Tokens:     deps.Session,
		Indicator:  m.activity,
		Alerter:    m.notices,
		Dir:        deps.ExportDir,
		Filename:   deps.ExportFilename,
		Logger:     deps.Logger,
	})
	m.createModal = newCreateModal()
	m.snap = m.listing.Snapshot()

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = styles.active

	return m
}

// View returns the active view.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case CreateView:
		return m.renderCreate()
	default:
		return m.renderDashboard()
	}
}

// Init fetches the listing when a session is already held; otherwise it shows the login form.
func (m *Model) Init() tea.Cmd {
	if m.session.Authenticated() {
		m.view = DashboardView
		return m.fetch()
	}
	return m.login.focusAt(loginEmail)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(customerColumns(msg.Width))
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case CreateView:
			return m.handleCreateKeys(msg)
		default:
			return m.handleDashboardKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgListingFetched:
			m.stopBusy()
			return m.applyFetch(msg.data.(fetchResult))
		case MsgLoggedIn:
			err, _ := msg.data.(error)
			return m.handleLoggedIn(err)
		case MsgCustomerCreated:
			return m.handleCustomerCreated(msg.data.(createResult))
		case MsgExportDone:
			return m.handleExportDone(msg.data.(exportResult))
		}
	}

	return m, nil
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.alert = ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.prev):
		return m, m.fetchIf(m.listing.Prev())
	case key.Matches(msg, m.keys.next):
		return m, m.fetchIf(m.listing.Next())
	case key.Matches(msg, m.keys.first):
		return m, m.fetchIf(m.listing.GoTo(1))
	case key.Matches(msg, m.keys.last):
		return m, m.fetchIf(m.listing.GoTo(m.listing.Snapshot().TotalPages))
	case key.Matches(msg, m.keys.startBack):
		return m, m.shiftDate(true, -1)
	case key.Matches(msg, m.keys.startFwd):
		return m, m.shiftDate(true, 1)
	case key.Matches(msg, m.keys.endBack):
		return m, m.shiftDate(false, -1)
	case key.Matches(msg, m.keys.endFwd):
		return m, m.shiftDate(false, 1)
	case key.Matches(msg, m.keys.clear):
		return m, m.fetchIf(m.listing.ClearDates())
	case key.Matches(msg, m.keys.reset):
		return m, m.fetchIf(m.listing.ResetDates())
	case key.Matches(msg, m.keys.create):
		return m.openCreate()
	case key.Matches(msg, m.keys.download):
		if m.activity.active() {
			return m, nil
		}
		return m, m.startBusy(m.download())
	case key.Matches(msg, m.keys.logout):
		return m.logout()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// shiftDate moves one bound of the filter by days. A cleared bound starts from today's default.
func (m *Model) shiftDate(start bool, days int) tea.Cmd {
	snap := m.listing.Snapshot()
	defStart, defEnd := m.listing.DefaultRange()

	var (
		changed bool
		err     error
	)
	if start {
		from := snap.Start
		if from.IsZero() {
			from = defStart
		}
		changed, err = m.listing.SetStartDate(from.AddDate(0, 0, days))
	} else {
		from := snap.End
		if from.IsZero() {
			from = defEnd
		}
		changed, err = m.listing.SetEndDate(from.AddDate(0, 0, days))
	}

	if err != nil {
		m.status = styles.warn.Render("Start date cannot be after end date")
		return nil
	}
	m.status = ""
	return m.fetchIf(changed)
}

func (m *Model) fetchIf(changed bool) tea.Cmd {
	if !changed {
		return nil
	}
	m.snap = m.listing.Snapshot()
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	return m.startBusy(func() tea.Msg {
		snap, err := m.listing.Fetch(m.ctx)
		return listingFetchedMsg(snap, err)
	})
}

func (m *Model) applyFetch(res fetchResult) (tea.Model, tea.Cmd) {
	if errors.Is(res.err, listing.ErrStaleResponse) {
		return m, nil
	}

	if m.redirect.take() {
		m.logger.Info("session missing or expired, showing login")
		m.view = LoginView
		m.login.err = "Please sign in"
		return m, m.login.focusAt(loginEmail)
	}

	m.snap = res.snap
	m.table.SetRows(customerRows(res.snap.Customers))
	if len(res.snap.Customers) > 0 && m.table.Cursor() >= len(res.snap.Customers) {
		m.table.SetCursor(0)
	}

	if res.snap.Refetch {
		return m, m.fetch()
	}
	return m, nil
}

func (m *Model) download() tea.Cmd {
	q := m.listing.Query()
	return func() tea.Msg {
		path, err := m.export.Run(m.ctx, nil, q)
		return exportDoneMsg(path, err)
	}
}

func (m *Model) handleExportDone(res exportResult) (tea.Model, tea.Cmd) {
	m.stopBusy()
	if res.err != nil {
		m.alert = m.notices.take()
		if m.alert == "" {
			m.alert = tasks.DownloadErrorMessage
		}
		if errors.Is(res.err, shared.ErrAuthFailed) || errors.Is(res.err, shared.ErrNotAuthenticated) {
			m.view = LoginView
			m.login.err = "Please sign in"
			return m, m.login.focusAt(loginEmail)
		}
		return m, nil
	}

	m.status = styles.ok.Render("Saved " + res.path)
	return m, nil
}

func (m *Model) logout() (tea.Model, tea.Cmd) {
	if err := m.session.Clear(m.ctx); err != nil {
		m.logger.Error("failed to clear session", "error", err)
	}
	m.view = LoginView
	m.status = ""
	m.alert = ""
	m.login.err = ""
	return m, m.login.focusAt(loginEmail)
}

// startBusy marks an operation in flight and starts the spinner alongside cmd.
func (m *Model) startBusy(cmd tea.Cmd) tea.Cmd {
	m.pending++
	if m.pending == 1 && !m.activity.active() {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m *Model) stopBusy() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m *Model) busy() bool {
	return m.pending > 0 || m.activity.active()
}

func (m *Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Customers"))
	b.WriteString("\n")

	if m.snap.Err != "" {
		b.WriteString(styles.err.Render(m.snap.Err))
		b.WriteString("\n\n")
	}

	if len(m.snap.Customers) == 0 {
		b.WriteString(formatter.RenderTable(nil))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n\n")

	b.WriteString(formatter.PageSummary(m.snap.Page, m.snap.TotalPages, shared.FormatDate(m.snap.Start), shared.FormatDate(m.snap.End)))
	if !m.snap.HasPrev {
		b.WriteString(styles.help.Render("  (first page)"))
	} else if !m.snap.HasNext {
		b.WriteString(styles.help.Render("  (last page)"))
	}

	if m.busy() {
		b.WriteString("  " + m.spinner.View() + " Loading...")
	}
	b.WriteString("\n")

	if m.alert != "" {
		b.WriteString(styles.err.Render(m.alert) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

// String reports the active view; used in debug logs.
func (v ViewState) String() string {
	switch v {
	case LoginView:
		return "login"
	case DashboardView:
		return "dashboard"
	case CreateView:
		return "create"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}
