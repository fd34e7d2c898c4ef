package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFallsBackToDefaultMessage(t *testing.T) {
	err := HTTPStatus(http.StatusInternalServerError, "")

	assert.Equal(t, DefaultHTTPMessage, err.Message())
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode())
	assert.True(t, Is(err, ErrHTTP))
}

func TestIsSeesThroughWrapping(t *testing.T) {
	base := Unauthorized("missing token", nil)
	wrapped := fmt.Errorf("create module: %w", base)

	assert.True(t, Is(wrapped, ErrUnauthorized))
	assert.False(t, Is(wrapped, ErrValidation))
	assert.False(t, Is(errors.New("plain"), ErrUnauthorized))
}

func TestWrapKeepsExistingAppError(t *testing.T) {
	original := Validation("title required", map[string]string{"title": "required"})
	got := Wrap(fmt.Errorf("ctx: %w", original), "other", http.StatusTeapot, ErrInternal)

	require.NotNil(t, got)
	assert.Equal(t, ErrValidation, got.Code())
	assert.Equal(t, "required", got.Fields()["title"])
	assert.Nil(t, Wrap(nil, "x", 0, ErrInternal))
}

func TestAs(t *testing.T) {
	appErr, ok := As(fmt.Errorf("outer: %w", Transport(errors.New("dial tcp"))))

	require.True(t, ok)
	assert.Equal(t, ErrTransport, appErr.Code())
	assert.Contains(t, appErr.Error(), "dial tcp")
}
