package services

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/custctl/internal/shared"
)

// APIError is returned by [CustomerService] for any failed call.
//
// Err wraps one of the shared sentinels so callers can branch with errors.Is; Message is the backend's own explanation.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Err)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classify maps an HTTP status to the error taxonomy.
func classify(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return shared.ErrAuthFailed
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return shared.ErrValidation
	case http.StatusConflict:
		return shared.ErrConflict
	default:
		return shared.ErrAPIRequest
	}
}

func statusError(op string, resp *APIResponse) *APIError {
	return &APIError{Op: op, Status: resp.StatusCode, Message: resp.Message(), Err: classify(resp.StatusCode)}
}

func transportError(op string, err error) *APIError {
	return &APIError{Op: op, Err: fmt.Errorf("%w: %w", shared.ErrNetwork, err)}
}
