package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"validation", Validation("bad id %q", "x"), ErrValidation},
		{"not found", NotFound("memo"), ErrNotFound},
		{"conflict", Conflict("persona exists"), ErrConflict},
		{"upstream", Upstream("save memo", errors.New("disk full")), ErrUpstream},
		{"wrapped", fmt.Errorf("dispatch: %w", Conflict("dup")), ErrConflict},
		{"plain", errors.New("boom"), ErrUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.err))
		})
	}
}

func TestPublicMessage_HidesUpstreamCause(t *testing.T) {
	err := Upstream("save memo", errors.New("pq: password authentication failed"))

	assert.Equal(t, "internal error", PublicMessage(err))
	assert.Contains(t, err.Error(), "password authentication failed")
}

func TestPublicMessage_ValidationMessage(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", Validation("unknown action %q", "explode"))

	assert.Equal(t, `unknown action "explode"`, PublicMessage(err))
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("publish", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrValidation)
}
