package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes returned to clients.
const (
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeMissingParameter      = "MISSING_PARAMETER"
	CodeMissingQuery          = "MISSING_QUERY"
	CodeSelfRequest           = "SELF_REQUEST"
	CodeInvalidAction         = "INVALID_ACTION"
	CodeDuplicateRequest      = "DUPLICATE_REQUEST"
	CodeConflict              = "CONFLICT"
	CodeNotFound              = "NOT_FOUND"
	CodeRecipientNotFound     = "RECIPIENT_NOT_FOUND"
	CodeFriendRequestNotFound = "FRIEND_REQUEST_NOT_FOUND"
	CodeInvalidPage           = "INVALID_PAGE"
	CodeRateLimitExceeded     = "RATE_LIMIT_EXCEEDED"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeInternal              = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code so errors.Is works against the
// constructors below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewMissingParameter(message string) error {
	return NewDomainError(CodeMissingParameter, message, http.StatusBadRequest, nil)
}

func NewMissingQuery(message string) error {
	return NewDomainError(CodeMissingQuery, message, http.StatusBadRequest, nil)
}

func NewSelfRequest(message string) error {
	return NewDomainError(CodeSelfRequest, message, http.StatusBadRequest, nil)
}

func NewInvalidAction(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidAction, message, http.StatusBadRequest, details)
}

func NewDuplicateRequest(message string) error {
	return NewDomainError(CodeDuplicateRequest, message, http.StatusConflict, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewRecipientNotFound(message string) error {
	return NewDomainError(CodeRecipientNotFound, message, http.StatusNotFound, nil)
}

func NewFriendRequestNotFound(message string) error {
	return NewDomainError(CodeFriendRequestNotFound, message, http.StatusNotFound, nil)
}

func NewInvalidPage(page int) error {
	return NewDomainError(CodeInvalidPage, "Invalid page.", http.StatusNotFound, map[string]any{"page": page})
}

// NewRateLimitExceeded reports a throttled caller; retryAfterSeconds is
// surfaced as a detail when positive.
func NewRateLimitExceeded(message string, retryAfterSeconds int) error {
	var details map[string]any
	if retryAfterSeconds > 0 {
		details = map[string]any{"retry_after_seconds": retryAfterSeconds}
	}
	return NewDomainError(CodeRateLimitExceeded, message, http.StatusTooManyRequests, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf returns the stable code carried by err, or "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}

func MapError(err error) error {
	return ToDomainError(err)
}
