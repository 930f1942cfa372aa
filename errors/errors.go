package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the custom error type for the application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Actor identity required",
	}
}

// Meeting Lifecycle Errors

func ErrMeetingNotFound(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_MEETING_NOT_FOUND,
		Message:  "Meeting not found",
	}.WithDetail("meeting_id", meetingID)
}

func ErrMeetingInvalidState(meetingID, currentState, action string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_MEETING_INVALID_STATE,
		Message:  fmt.Sprintf("Meeting cannot %s in its current state", action),
	}.WithDetail("meeting_id", meetingID).
		WithDetail("current_state", currentState)
}

func ErrMeetingDeleted(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusGone,
		Code:     ErrorCode_MEETING_DELETED,
		Message:  "Meeting has been deleted",
	}.WithDetail("meeting_id", meetingID)
}

// Extraction Pipeline Errors

func ErrContractViolation(violations []string) AppError {
	e := AppError{
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_EXTRACTION_CONTRACT_VIOLATION,
		Message:  "Model output did not conform to the extraction contract",
	}
	for i, v := range violations {
		e = e.WithDetail(fmt.Sprintf("violation_%d", i+1), v)
	}
	return e
}

func ErrProvidersExhausted(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_EXTRACTION_PROVIDERS_EXHAUSTED,
		Message:  "All model providers are unavailable",
	}
}

func ErrExtractionFailed(reason string) AppError {
	return AppError{
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_EXTRACTION_FAILED,
		Message:  reason,
	}
}

// Review / Change Set Errors

func ErrChangeSetNotFound(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_CHANGESET_NOT_FOUND,
		Message:  "No change set pending review for this meeting",
	}.WithDetail("meeting_id", meetingID)
}

func ErrChangeSetLocked(lockedBy string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_CHANGESET_LOCKED,
		Message:  "Change set is being edited by another reviewer",
	}.WithDetail("locked_by", lockedBy)
}

func ErrVersionConflict(presented, current int) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_CHANGESET_VERSION_CONFLICT,
		Message:  "Change set was modified by another write, reload and retry",
	}.WithDetail("presented_version", fmt.Sprintf("%d", presented)).
		WithDetail("current_version", fmt.Sprintf("%d", current))
}

func ErrChangeSetConsumed(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_CHANGESET_CONSUMED,
		Message:  "Change set has already been published",
	}.WithDetail("meeting_id", meetingID)
}

func ErrOwnerUnresolved(itemTitle, status string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_OWNER_UNRESOLVED,
		Message:  "Item owner must be confirmed before merge",
	}.WithDetail("item", itemTitle).
		WithDetail("owner_status", status)
}

func ErrMergePartialFailure(failed int) AppError {
	return AppError{
		HTTPCode: http.StatusMultiStatus,
		Code:     ErrorCode_MERGE_PARTIAL_FAILURE,
		Message:  fmt.Sprintf("%d item(s) could not be merged; the rest were applied", failed),
	}
}

// Database Errors

func ErrDBQueryFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}.WithDetail("operation", operation)
}

func ErrDBTransactionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_TRANSACTION_FAILED,
		Message:  "Database transaction failed",
	}
}

// Integration Errors

func ErrExternalAPIFailed(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_EXTERNAL_API_FAILED,
		Message:  fmt.Sprintf("External API call failed: %s", service),
	}
}
