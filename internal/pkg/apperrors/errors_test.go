package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorsWrapKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrUserNotFound, ErrResourceNotFound},
		{ErrConnectionExists, ErrConflict},
		{ErrNotConnectionReceiver, ErrPermissionDenied},
		{ErrMessageSelf, ErrValidationFailed},
		{ErrEmailAlreadyExists, ErrResourceAlreadyExists},
		{ErrEventFull, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("service: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.kind))
			assert.True(t, errors.Is(wrapped, tt.err))
		})
	}
}

func TestWithDetailsDoesNotMutateShared(t *testing.T) {
	detailed := ErrJobNotFound.WithDetails(map[string]interface{}{"jobId": "x"})

	assert.Nil(t, ErrJobNotFound.Details)
	assert.Equal(t, "x", detailed.Details["jobId"])
	assert.True(t, errors.Is(detailed, ErrResourceNotFound))
}

func TestIsMatchesAnyListed(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ErrTokenRevoked)
	assert.True(t, Is(err, ErrTokenExpired, ErrTokenInvalid, ErrTokenRevoked))
	assert.False(t, Is(err, ErrTokenExpired, ErrTokenInvalid))
}

func TestCustomErrorMessageFallback(t *testing.T) {
	assert.Equal(t, "conflict", (&CustomError{Err: ErrConflict}).Error())
	assert.Equal(t, "unknown error", (&CustomError{}).Error())
}
