package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/shared"
)

// Endpoint paths on the customer backend.
const (
	SignupPath          = "/signup"
	LoginPath           = "/login"
	CustomerPath        = "/customer"
	DefaultDownloadPath = "/customer/download"
)

// CustomerService is the typed client for the customer backend.
//
// Every method makes exactly one attempt; failures come back as [*APIError].
type CustomerService struct {
	api          *APIService
	downloadPath string
	logger       *log.Logger
}

// CustomerServiceOpts configures a [CustomerService].
type CustomerServiceOpts struct {
	API          *APIService
	DownloadPath string
	Logger       *log.Logger
}

// NewCustomerService creates a client on top of the raw [APIService].
func NewCustomerService(opts CustomerServiceOpts) *CustomerService {
	if opts.API == nil {
		opts.API = NewAPIService("", nil)
	}
	if opts.DownloadPath == "" {
		opts.DownloadPath = DefaultDownloadPath
	}
	if !strings.HasPrefix(opts.DownloadPath, "/") {
		opts.DownloadPath = "/" + opts.DownloadPath
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &CustomerService{
		api:          opts.API,
		downloadPath: opts.DownloadPath,
		logger:       opts.Logger,
	}
}

// Register creates an account. Backend validation failures surface as [shared.ErrValidation], duplicates as [shared.ErrConflict].
func (s *CustomerService) Register(ctx context.Context, creds models.Credentials) error {
	const op = "register"

	body, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	resp, err := s.api.Post(ctx, SignupPath, "", body)
	if err != nil {
		return transportError(op, err)
	}
	if !resp.OK() {
		return statusError(op, resp)
	}

	s.logger.Debug("account registered", "email", creds.Email)
	return nil
}

// Login exchanges credentials for a session token.
func (s *CustomerService) Login(ctx context.Context, creds models.Credentials) (string, error) {
	const op = "login"

	creds.Username = ""
	body, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("failed to marshal credentials: %w", err)
	}

	resp, err := s.api.Post(ctx, LoginPath, "", body)
	if err != nil {
		return "", transportError(op, err)
	}
	if !resp.OK() {
		apiErr := statusError(op, resp)
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
			apiErr.Err = shared.ErrAuthFailed
		}
		return "", apiErr
	}

	var tr models.TokenResponse
	if err := json.Unmarshal(resp.Body, &tr); err != nil || tr.Token == "" {
		return "", &APIError{Op: op, Status: resp.StatusCode, Message: "no token in response", Err: shared.ErrAuthFailed}
	}

	return tr.Token, nil
}

// ListCustomers fetches one page of customers. An empty token fails with [shared.ErrNotAuthenticated] without touching the network.
func (s *CustomerService) ListCustomers(ctx context.Context, token string, q models.ListQuery) (*models.CustomerPage, error) {
	const op = "list customers"

	if token == "" {
		return nil, &APIError{Op: op, Err: shared.ErrNotAuthenticated}
	}

	path := CustomerPath
	if qs := q.Encode(); qs != "" {
		path += "?" + qs
	}

	s.logger.Debug("listing customers", "path", path)

	resp, err := s.api.Get(ctx, path, token)
	if err != nil {
		return nil, transportError(op, err)
	}
	if !resp.OK() {
		return nil, statusError(op, resp)
	}

	var page models.CustomerPage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: "malformed listing payload", Err: fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)}
	}

	return &page, nil
}

// CreateCustomer submits a new customer and returns the record the backend stored.
//
// The backend may answer with the customer itself or wrapped as {"customer": {...}}; a body without a
// customer echoes the submitted fields back.
func (s *CustomerService) CreateCustomer(ctx context.Context, token string, payload models.NewCustomer) (*models.Customer, error) {
	const op = "create customer"

	if token == "" {
		return nil, &APIError{Op: op, Err: shared.ErrNotAuthenticated}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer: %w", err)
	}

	resp, err := s.api.Post(ctx, CustomerPath, token, body)
	if err != nil {
		return nil, transportError(op, err)
	}
	if !resp.OK() {
		return nil, statusError(op, resp)
	}

	var wrapped struct {
		Customer *models.Customer `json:"customer"`
	}
	if err := json.Unmarshal(resp.Body, &wrapped); err == nil && wrapped.Customer != nil {
		return wrapped.Customer, nil
	}

	var created models.Customer
	if err := json.Unmarshal(resp.Body, &created); err == nil && (created.ID != "" || created.Name != "") {
		return &created, nil
	}

	return &models.Customer{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Address:  models.FlatAddress(payload.Address),
		Notes:    payload.Notes,
		IsActive: payload.IsActive,
	}, nil
}

// DownloadCustomersCSV requests the filtered CSV export and returns the unread body.
//
// A non-2xx status closes the body and fails with [shared.ErrDownloadFailed] wrapping the status class.
func (s *CustomerService) DownloadCustomersCSV(ctx context.Context, token string, q models.ListQuery) (io.ReadCloser, error) {
	const op = "download customers"

	if token == "" {
		return nil, &APIError{Op: op, Err: fmt.Errorf("%w: %w", shared.ErrDownloadFailed, shared.ErrNotAuthenticated)}
	}

	path := s.downloadPath
	if qs := q.Encode(); qs != "" {
		path += "?" + qs
	}

	s.logger.Debug("downloading customers CSV", "path", path)

	resp, err := s.api.Stream(ctx, path, token)
	if err != nil {
		apiErr := transportError(op, err)
		apiErr.Err = fmt.Errorf("%w: %w", shared.ErrDownloadFailed, apiErr.Err)
		return nil, apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &APIError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w: %w", shared.ErrDownloadFailed, classify(resp.StatusCode)),
		}
	}

	return resp.Body, nil
}
