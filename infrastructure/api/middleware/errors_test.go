package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/citetrack/internal/domain"
)

func TestAPIError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewAPIError(503, "service unavailable", cause)

	assert.Equal(t, 503, err.Code())
	assert.Equal(t, "service unavailable", err.Message())
	assert.Equal(t, "api error 503: service unavailable: underlying error", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestAuthenticationError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("request failed: %w", NewAuthenticationError("token expired"))

	assert.ErrorIs(t, wrapped, ErrAuthentication)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(wrapped))
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.Validation("bad window"), http.StatusBadRequest},
		{"not found", domain.NotFound("brand not found"), http.StatusNotFound},
		{"conflict", domain.Conflict("duplicate"), http.StatusConflict},
		{"upstream", domain.Upstream("save", errors.New("disk full")), http.StatusInternalServerError},
		{"unexpected", domain.Unexpected("boom", errors.New("nil map")), http.StatusInternalServerError},
		{"uncategorized", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("loading: %w", domain.NotFound("memo not found")), http.StatusNotFound},
		{"rate limited", NewRateLimitError(), http.StatusTooManyRequests},
		{"unauthorized", NewAuthenticationError("missing tenant"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/brands/x/actions", nil)
	w := httptest.NewRecorder()

	WriteError(w, req, domain.Upstream("save memo", errors.New("connection reset by peer")), nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestWriteError_CallerMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()

	WriteError(w, req, domain.Conflict("a prompt with that text already exists"), nil)

	require.Equal(t, http.StatusConflict, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "a prompt with that text already exists", body.Error)
}
