package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NotFound("job not found")
		assert.Equal(t, "job not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeStoreUnavailable, "query jobs")
		assert.Equal(t, "query jobs: connection refused", err.Error())
	})
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, CodeInternal, "wrapped")
	assert.ErrorIs(t, err, cause)
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, CodeInternal, "ignored %d", 1))
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("x"), IsNotFound},
		{"conflict", Conflict("x"), IsConflict},
		{"validation", Validation("x"), IsValidation},
		{"unauthorized", Unauthorized("x"), IsUnauthorized},
		{"submission failed", New(CodeSubmissionFailed, "x"), IsSubmissionFailed},
		{"retention expired", New(CodeRetentionExpired, "x"), IsRetentionExpired},
		{"store unavailable", New(CodeStoreUnavailable, "x"), IsStoreUnavailable},
		{"rate limited", New(CodeRateLimited, "x"), IsRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}

func TestPredicates_WrappedChain(t *testing.T) {
	inner := New(CodeRetentionExpired, "executor evicted result")
	outer := fmt.Errorf("get job status: %w", inner)

	assert.True(t, IsRetentionExpired(outer))
	assert.False(t, IsNotFound(outer))
}

func TestGetCode(t *testing.T) {
	require.Equal(t, CodeSubmissionFailed, GetCode(New(CodeSubmissionFailed, "x")))
	require.Equal(t, Code(""), GetCode(errors.New("plain")))
	require.Equal(t, Code(""), GetCode(nil))
}
