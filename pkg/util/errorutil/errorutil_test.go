package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rateLimitedErr struct{}

func (rateLimitedErr) Error() string       { return "quota" }
func (rateLimitedErr) IsRateLimited() bool { return true }

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain passthrough", NewForbidden("nope"), CodeForbidden, http.StatusForbidden},
		{"wrapped domain", fmt.Errorf("ctx: %w", NewNotFound("ticket", nil)), CodeNotFound, http.StatusNotFound},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, CodeConflict, http.StatusConflict},
		{"malformed uuid", fmt.Errorf("get: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}), CodeValidation, http.StatusBadRequest},
		{"rate limited", fmt.Errorf("call: %w", rateLimitedErr{}), CodeUpstreamRateLimited, http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestConflictMessages(t *testing.T) {
	de := ToDomainError(&pgconn.PgError{Code: "23505", ConstraintName: "organizations_slug_key"})
	assert.Equal(t, "an organization with this slug already exists", de.Message)

	de = ToDomainError(&pgconn.PgError{Code: "23505", Detail: "Key (email)=(a@b.c) already exists."})
	assert.Equal(t, "a user with this email already exists", de.Message)

	de = ToDomainError(&pgconn.PgError{Code: "23505", ConstraintName: "something_else"})
	assert.Equal(t, "data integrity violation", de.Message)
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "tickets_code_key"})
	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "tickets_code_key"))
	assert.False(t, IsUniqueViolation(err, "users_email_key"))
	assert.False(t, IsUniqueViolation(errors.New("x"), ""))
}
