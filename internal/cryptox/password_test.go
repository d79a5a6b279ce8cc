package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		violations int
	}{
		{name: "valid", password: "Str0ng!pass", violations: 0},
		{name: "too short but otherwise fine", password: "Aa1!", violations: 1},
		{name: "missing special", password: "Password1", violations: 1},
		{name: "missing upper and digit", password: "password!", violations: 2},
		{name: "all rules violated", password: "", violations: 5},
		{name: "short lowercase", password: "short", violations: 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidatePassword(tc.password)
			assert.Len(t, got, tc.violations, "violations: %v", got)
		})
	}
}

func TestValidatePassword_ReportsAllRules(t *testing.T) {
	got := ValidatePassword("")
	assert.Contains(t, got, "password must be at least 8 characters long")
	assert.Contains(t, got, "password must contain an uppercase letter")
	assert.Contains(t, got, "password must contain a lowercase letter")
	assert.Contains(t, got, "password must contain a digit")
	assert.Contains(t, got, "password must contain one of !@#$%^&*")
}
