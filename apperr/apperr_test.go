package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"auth", Auth("nope"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden},
		{"not found", NotFound("gone"), http.StatusNotFound},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"unavailable", Unavailable("off", nil), http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("outer: %w", Forbidden("x")), http.StatusForbidden},
		{"deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMessageHidesInternals(t *testing.T) {
	err := Internal("Failed to create post", errors.New("mongo: connection reset"))

	assert.Equal(t, "Failed to create post", Message(err))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "Internal server error", Message(errors.New("raw")))
	assert.Equal(t, "The request timed out", Message(context.DeadlineExceeded))
}

func TestDetails(t *testing.T) {
	err := fmt.Errorf("register: %w", Invalid("email must be a valid email", map[string]string{"email": "must be a valid email"}))

	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, "must be a valid email", Details(err)["email"])
	assert.Nil(t, Details(NotFound("x")))
}
