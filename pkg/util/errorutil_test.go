package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad input", nil), CodeValidationFailed, http.StatusBadRequest},
		{NewUnauthorized("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{NewForbidden("admin only"), CodeForbidden, http.StatusForbidden},
		{NewNotFound("request", nil), CodeNotFound, http.StatusNotFound},
		{NewConflict("duplicate", nil), CodeConflict, http.StatusConflict},
		{NewInvalidTransition("SUBMITTED", "RESOLVED"), CodeInvalidTransition, http.StatusUnprocessableEntity},
		{NewTerminalState("resolved"), CodeTerminalState, http.StatusConflict},
		{NewNotResolved("pending"), CodeNotResolved, http.StatusConflict},
		{NewDuplicateFeedback("req-1"), CodeDuplicateFeedback, http.StatusConflict},
		{NewInternalError(errors.New("boom")), CodeInternalError, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			var domainErr *DomainError
			require.ErrorAs(t, tc.err, &domainErr)
			assert.Equal(t, tc.code, domainErr.Code)
			assert.Equal(t, tc.status, domainErr.HTTPStatus)
			assert.True(t, HasCode(tc.err, tc.code))
		})
	}
}

func TestInvalidTransitionDetails(t *testing.T) {
	err := NewInvalidTransition("SUBMITTED", "RESOLVED")
	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SUBMITTED", domainErr.Details["from"])
	assert.Equal(t, "RESOLVED", domainErr.Details["to"])
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	notFound := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, CodeNotFound, notFound.Code)

	wrapped := ToDomainError(fmt.Errorf("lookup: %w", NewForbidden("nope")))
	assert.Equal(t, CodeForbidden, wrapped.Code)

	generic := ToDomainError(errors.New("disk full"))
	assert.Equal(t, CodeInternalError, generic.Code)
	assert.Equal(t, http.StatusInternalServerError, generic.HTTPStatus)
}

func TestMapErrorNilStaysNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.Error(t, MapError(errors.New("boom")))
}

func TestHasCode(t *testing.T) {
	assert.False(t, HasCode(nil, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.True(t, HasCode(fmt.Errorf("wrap: %w", NewNotFound("request", nil)), CodeNotFound))
}
