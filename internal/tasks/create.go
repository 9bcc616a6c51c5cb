package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/services"
	"github.com/desertthunder/custctl/internal/shared"
)

// CreateErrorMessage is shown when the backend rejects a customer without saying why.
const CreateErrorMessage = "Failed to add customer"

// TokenSource yields the current session token, "" when logged out.
type TokenSource interface {
	Token() string
}

// CustomerCreator is the part of the API client [CreateFlow] needs.
type CustomerCreator interface {
	CreateCustomer(ctx context.Context, token string, payload models.NewCustomer) (*models.Customer, error)
}

// Refresher re-fetches the listing after a customer was added.
type Refresher interface {
	Refresh(ctx context.Context)
}

// RefresherFunc adapts a function to [Refresher].
type RefresherFunc func(ctx context.Context)

func (f RefresherFunc) Refresh(ctx context.Context) { f(ctx) }

// CreateForm holds the entry modal's fields.
type CreateForm struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
	Active  bool
}

// DefaultCreateForm is the empty form: every field blank and the customer active.
func DefaultCreateForm() CreateForm {
	return CreateForm{Active: true}
}

// Payload trims the form into the request body.
func (f CreateForm) Payload() models.NewCustomer {
	return models.NewCustomer{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		Address:  strings.TrimSpace(f.Address),
		Notes:    strings.TrimSpace(f.Notes),
		IsActive: f.Active,
	}
}

// CreateOpts configures a [CreateFlow].
type CreateOpts struct {
	Creator   CustomerCreator
	Tokens    TokenSource
	Refresher Refresher
	Logger    *log.Logger
}

// CreateFlow is safe for concurrent use.
type CreateFlow struct {
	mu      sync.Mutex
	form    CreateForm
	open    bool
	errMsg  string
	creator CustomerCreator
	tokens  TokenSource
	refresh Refresher
	logger  *log.Logger
}

func NewCreateFlow(opts CreateOpts) *CreateFlow {
	if opts.Refresher == nil {
		opts.Refresher = RefresherFunc(func(context.Context) {})
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return &CreateFlow{
		form:    DefaultCreateForm(),
		creator: opts.Creator,
		tokens:  opts.Tokens,
		refresh: opts.Refresher,
		logger:  opts.Logger,
	}
}

func (c *CreateFlow) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
}

// Close hides the modal. Field values are kept for the next Open.
func (c *CreateFlow) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.errMsg = ""
}

func (c *CreateFlow) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *CreateFlow) Form() CreateForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *CreateFlow) SetForm(f CreateForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = f
}

// Err is the message shown in the modal's error area, "" when there is none.
func (c *CreateFlow) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Submit posts the current form.
func (c *CreateFlow) Submit(ctx context.Context, progress chan<- ProgressUpdate) (*models.Customer, error) {
	c.mu.Lock()
	c.errMsg = ""
	payload := c.form.Payload()
	c.mu.Unlock()

	if missing := payload.Missing(); len(missing) > 0 {
		msg := "Required: " + strings.Join(missing, ", ")
		c.fail(msg)
		return nil, fmt.Errorf("%w: missing %s", shared.ErrValidation, strings.Join(missing, ", "))
	}

	token := c.tokens.Token()
	if token == "" {
		c.fail(CreateErrorMessage)
		return nil, shared.ErrNotAuthenticated
	}

	sendProgress(progress, submittingCustomerUpdate(payload.Name))

	created, err := c.creator.CreateCustomer(ctx, token, payload)
	if err != nil {
		msg := CreateErrorMessage
		var apiErr *services.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		c.fail(msg)
		c.logger.Warn("failed to add customer", "error", err)
		return nil, err
	}

	if created == nil {
		created = &models.Customer{Name: payload.Name, Email: payload.Email, Phone: payload.Phone, IsActive: payload.IsActive}
	}

	c.mu.Lock()
	c.form = DefaultCreateForm()
	c.open = false
	c.mu.Unlock()

	c.logger.Info("customer added", "id", created.ID, "name", created.Name)

	sendProgress(progress, refreshingListingUpdate())
	c.refresh.Refresh(ctx)

	return created, nil
}

func (c *CreateFlow) fail(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = msg
}
