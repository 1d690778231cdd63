package contextutils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrorCodeInvalidInput, SeverityWarn, "Invalid input", "name too short")
	assert.Equal(t, "INVALID_INPUT: Invalid input - name too short", err.Error())

	noDetails := NewAppError(ErrorCodeInternalError, SeverityError, "Internal server error", "")
	assert.Equal(t, "INTERNAL_SERVER_ERROR: Internal server error", noDetails.Error())
}

func TestWrapError_PreservesCode(t *testing.T) {
	wrapped := WrapError(ErrTokenNotFound, "failed to load survey token")
	require.Error(t, wrapped)

	appErr, ok := wrapped.(*AppError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeTokenNotFound, appErr.Code)
	assert.Equal(t, "failed to load survey token", appErr.Message)
	assert.True(t, IsError(wrapped, ErrTokenNotFound))
}

func TestWrapError_PlainError(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := WrapError(cause, "store write failed")

	appErr, ok := wrapped.(*AppError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInternalError, appErr.Code)
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestWrapError_Nil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "context"))
	assert.NoError(t, WrapErrorf(nil, "context %d", 1))
}

func TestWrapErrorf_WithWVerb(t *testing.T) {
	wrapped := WrapErrorf(ErrDatabaseQuery, "insert feedback: %w", ErrDatabaseQuery)
	assert.True(t, IsError(wrapped, ErrDatabaseQuery))
}

func TestIsError_WrappedChain(t *testing.T) {
	inner := WrapError(ErrRecordNotFound, "customer lookup")
	outer := WrapError(inner, "form fetch")

	assert.True(t, IsError(outer, ErrRecordNotFound))
	assert.False(t, IsError(outer, ErrRateLimit))
	assert.False(t, IsError(nil, ErrRecordNotFound))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrTimeout))
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(ErrGeneratorUnavailable))
	assert.False(t, IsRetryable(ErrTokenNotFound))
	assert.False(t, IsRetryable(ErrInvalidInput))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrorCodeRateLimit, GetErrorCode(ErrRateLimit))
	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(errors.New("plain")))
}

func TestToJSON(t *testing.T) {
	err := NewAppError(ErrorCodeTokenNotFound, SeverityInfo, "Invalid or expired token", "")
	payload := err.ToJSON()

	assert.Equal(t, "TOKEN_NOT_FOUND", payload["code"])
	assert.Equal(t, "Invalid or expired token", payload["message"])
	_, hasDetails := payload["details"]
	assert.False(t, hasDetails)
}
