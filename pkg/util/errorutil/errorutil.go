package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUpstreamRateLimited = "UPSTREAM_RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"

	pgUniqueViolation      = "23505"
	pgInvalidTextRepresent = "22P02"
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewUpstreamRateLimited reports that the AI provider refused the call due to quota.
func NewUpstreamRateLimited(err error) error {
	return &DomainError{
		Code:       CodeUpstreamRateLimited,
		Message:    "AI provider quota exceeded, try again later",
		HTTPStatus: http.StatusTooManyRequests,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// IsUniqueViolation reports whether err is a postgres unique violation, optionally on
// a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// conflictMessages maps unique constraints to client-facing messages.
var conflictMessages = []struct {
	constraint string
	column     string
	message    string
}{
	{"organizations_slug_key", "slug", "an organization with this slug already exists"},
	{"organizations_tax_id_key", "tax_id", "an organization with this tax id already exists"},
	{"users_email_key", "email", "a user with this email already exists"},
	{"teams_org_slug_key", "slug", "a team with this slug already exists"},
	{"tickets_code_key", "code", "ticket code already in use"},
}

func conflictFromPg(pgErr *pgconn.PgError) *DomainError {
	for _, entry := range conflictMessages {
		if pgErr.ConstraintName == entry.constraint {
			return NewDomainError(CodeConflict, entry.message, http.StatusConflict, nil)
		}
	}
	// Fall back to the detail text, e.g. "Key (email)=(a@b.c) already exists."
	for _, entry := range conflictMessages {
		if strings.Contains(pgErr.Detail, "Key ("+entry.column+")") {
			return NewDomainError(CodeConflict, entry.message, http.StatusConflict, nil)
		}
	}
	return NewDomainError(CodeConflict, "data integrity violation", http.StatusConflict, nil)
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
		return NewDomainError(CodeNotFound, "resource not found", http.StatusNotFound, nil)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return conflictFromPg(pgErr)
		case pgInvalidTextRepresent:
			return NewDomainError(CodeValidation, "malformed identifier or value", http.StatusBadRequest, nil)
		}
	}
	var limited interface{ IsRateLimited() bool }
	if errors.As(err, &limited) && limited.IsRateLimited() {
		de, _ := NewUpstreamRateLimited(err).(*DomainError)
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
