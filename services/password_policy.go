package services

import (
	"strings"
	"unicode"
)

// MinPasswordLength for team member accounts
const MinPasswordLength = 12

// ValidatePassword requires MinPasswordLength characters with upper, lower,
// digit and symbol classes. All missing classes are reported at once.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "must be at least 12 characters long")
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasNumber {
		missing = append(missing, "a number")
	}
	if !hasSpecial {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return NewValidationError("password", "must contain "+strings.Join(missing, ", "))
	}
	return nil
}
