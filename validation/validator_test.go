package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpwd"`
	First    string `form:"firstName" binding:"required,min=2,max=50"`
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Passw0rd!", true},
		{"Sh0rt!", false},
		{"password1!", false},
		{"PASSWORD1!", false},
		{"Password!!", false},
		{"Password11", false},
		{"Pässw0rd#", true},
		{"Aa1!" + strings.Repeat("x", 68), true},
		{"Aa1!" + strings.Repeat("x", 69), false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.12s/%d", tt.password, len(tt.password)), func(t *testing.T) {
			err := Var(tt.password, "strongpwd")
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestToDetailsUsesTagNames(t *testing.T) {
	err := Struct(&signup{Email: "nope", Password: "weak", First: "A"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Contains(t, details["password"], "uppercase")
	assert.Equal(t, "must be at least 2 characters long", details["firstName"])
}

func TestToDetailsInvalidJSON(t *testing.T) {
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}

func TestSummaryIsSorted(t *testing.T) {
	got := Summary(map[string]string{"password": "is required", "email": "must be a valid email"})
	assert.Equal(t, "email must be a valid email; password is required", got)
	assert.Equal(t, "Invalid request", Summary(nil))
}

func TestEmailAddrTrimsSpaces(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"ada@example.com", true},
		{"  Ada@Example.com ", true},
		{"ada", false},
		{"   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := Var(tt.email, "emailaddr")
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
