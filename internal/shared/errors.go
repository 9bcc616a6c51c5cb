package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrDatabaseUnavailable = fmt.Errorf("database unavailable")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrNetwork        = fmt.Errorf("network error")
	ErrValidation     = fmt.Errorf("validation failed")
	ErrConflict       = fmt.Errorf("conflict")
	ErrDownloadFailed = fmt.Errorf("failed to download CSV")

	// Input validation errors
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
	ErrInvalidDateRange = fmt.Errorf("start date must not be after end date")
)
