package cryptox

import "strings"

const passwordSpecials = "!@#$%^&*"

// ValidatePassword checks password strength and returns every violated
// rule, not just the first. An empty result means the password is valid.
func ValidatePassword(password string) []string {
	var violations []string

	if len(password) < 8 {
		violations = append(violations, "password must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	if !upper {
		violations = append(violations, "password must contain an uppercase letter")
	}
	if !lower {
		violations = append(violations, "password must contain a lowercase letter")
	}
	if !digit {
		violations = append(violations, "password must contain a digit")
	}
	if !special {
		violations = append(violations, "password must contain one of "+passwordSpecials)
	}

	return violations
}
