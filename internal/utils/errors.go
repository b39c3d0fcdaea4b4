package utils

import (
	"errors"
	"net/http"
)

/*
   Sentinel errors for access-service domain logic.
   The controller can do: if errors.Is(err, ErrXYZ) { ... }
*/
var (
	ErrPropertyNotFound  = errors.New("property_not_found")
	ErrProviderNotFound  = errors.New("provider_not_found")
	ErrTenantNotFound    = errors.New("tenant_not_found")
	ErrRuleNotFound      = errors.New("rule_not_found")
	ErrAccessLogNotFound = errors.New("access_log_not_found")
	ErrNoSmartLocks      = errors.New("no_smart_locks")
	ErrRuleNotActive     = errors.New("rule_not_active")
	ErrInvalidDateRange  = errors.New("invalid_date_range")
	ErrMissingPhone      = errors.New("missing_phone_number")
	ErrNoRowsUpdated     = errors.New("no_rows_updated")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (e.g., Twilio, SendGrid, lock vendors)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
