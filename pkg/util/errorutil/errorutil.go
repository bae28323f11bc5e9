package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors. Code is the snake_case
// machine-readable identifier surfaced to clients.
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(code, message string) error {
	return NewDomainError(code, message, http.StatusBadRequest, nil)
}

func NewNotFound(resource string) error {
	return &DomainError{
		Code:       "not_found",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("unauthorized", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("forbidden", message, http.StatusForbidden, nil)
}

// NewAccountBanned rejects a banned account, carrying either the ban
// expiry or a permanent marker in the details.
func NewAccountBanned(bannedUntil *time.Time) error {
	details := map[string]any{}
	if bannedUntil != nil {
		details["banned_until"] = bannedUntil.UTC().Format(time.RFC3339)
	} else {
		details["permanent"] = true
	}
	return NewDomainError("account_banned", "this account is banned", http.StatusForbidden, details)
}

func NewConflict(code, message string) error {
	return NewDomainError(code, message, http.StatusConflict, nil)
}

// NewUpstreamError marks a provider-side failure. Details may carry the
// provider debug identifier and raw issue list.
func NewUpstreamError(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusBadGateway, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "server_error",
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
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource").(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "server_error",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
