package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_MatchesKind(t *testing.T) {
	err := NewDomainError("application", "Submit", ErrQuotaReached, "quota reached")

	assert.ErrorIs(t, err, ErrQuotaReached)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "application.Submit: quota reached", err.Error())
}

func TestWrapError_ExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError("store", "Query", ErrServiceUnavailable, "query failed", cause)

	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDomainError_SurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrQuotaExceeded)

	require.ErrorIs(t, wrapped, ErrQuotaExceeded)
	assert.ErrorIs(t, wrapped, ErrQuotaReached)
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, IsNotFound(ErrApplicationNotFound))
	assert.True(t, IsNotFound(ErrOfferNotAdmitted))
	assert.False(t, IsNotFound(ErrQuotaExceeded))

	assert.True(t, IsForbidden(ErrNotApplicationOwner))
	assert.True(t, IsForbidden(ErrUnauthorized))
	assert.False(t, IsForbidden(ErrDuplicateApplication))

	assert.True(t, IsValidation(ErrInvalidDocType))
	assert.True(t, IsValidation(ErrInvalidID))
	assert.False(t, IsValidation(ErrInvalidTransition))

	assert.True(t, IsRetryable(ErrStoreUnavailable))
	assert.True(t, IsRetryable(ErrTimeout))
	assert.False(t, IsRetryable(ErrAcceptanceConflict))
}
