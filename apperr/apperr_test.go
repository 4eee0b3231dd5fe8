package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := Missing("trip")
	wrapped := fmt.Errorf("customize: %w", base)

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, New(NotFound, "")))
	assert.False(t, errors.Is(wrapped, New(ValidationFailed, "")))
	assert.Equal(t, "trip not found", Message(wrapped))
}

func TestCauseIsHiddenFromMessage(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:443: i/o timeout")
	err := Upstream(cause)

	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, Message(err), "10.0.0.1")
	assert.Contains(t, err.Error(), "i/o timeout")
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, "internal server error", Message(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindOf(err)))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ValidationFailed))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden))
	assert.Equal(t, http.StatusAccepted, HTTPStatus(PartialWriteInconsistency))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthorized))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(RateLimited))
}
