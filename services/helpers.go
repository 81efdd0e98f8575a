package services

import "strings"

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
