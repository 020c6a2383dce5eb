package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeCode(t *testing.T) {
	tests := []struct {
		name     string
		service  int
		category int
		sequence int
		expected int
	}{
		{"common internal", 0, CategoryInternal, 1, 7001},
		{"bookrag request", 20, CategoryRequest, 1, 2001001},
		{"bookrag timeout", 20, CategoryTimeout, 1, 2011001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MakeCode(tt.service, tt.category, tt.sequence))
		})
	}
}

func TestErrnoWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrProvider.WithCause(cause)

	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")

	// WithCause must not mutate the registered sentinel.
	assert.Nil(t, ErrProvider.Unwrap())
}

func TestErrnoIs(t *testing.T) {
	assert.True(t, stderrors.Is(ErrInvalidRequest.WithMessage("question is required"), ErrInvalidRequest))
	assert.False(t, stderrors.Is(ErrInvalidRequest, ErrProvider))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("handler: %w", ErrQueryTimeout)
	assert.Equal(t, ErrQueryTimeout.Code, FromError(wrapped).Code)

	plain := fmt.Errorf("boom")
	e := FromError(plain)
	assert.Equal(t, ErrInternal.Code, e.Code)
	assert.ErrorIs(t, e, plain)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, ErrInvalidRequest.HTTPStatus())
	assert.Equal(t, 502, ErrProvider.HTTPStatus())
	assert.Equal(t, 500, (&Errno{Code: 1}).HTTPStatus())
}
