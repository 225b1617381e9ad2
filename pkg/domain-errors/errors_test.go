package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeNotFound, "certificate not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeUnauthorized))
	})

	t.Run("wrapped error keeps its code", func(t *testing.T) {
		cause := errors.New("sql: no rows")
		err := fmt.Errorf("lookup: %w", Wrap(CodeNotRegistered, "no such account", cause))
		assert.True(t, HasCode(err, CodeNotRegistered))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("uncoded error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	})
}

func TestToHTTPStatus(t *testing.T) {
	for code, want := range map[Code]int{
		CodeInvalidInput:      http.StatusBadRequest,
		CodeUnauthorized:      http.StatusForbidden,
		CodeNotRegistered:     http.StatusNotFound,
		CodeNotFound:          http.StatusNotFound,
		CodeAlreadyExists:     http.StatusConflict,
		CodeInvalidTransition: http.StatusConflict,
		CodeSubstrate:         http.StatusServiceUnavailable,
		CodeInternal:          http.StatusInternalServerError,
	} {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
