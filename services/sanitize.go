package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicy  = bluemonday.UGCPolicy()
	plainTextPolicy = bluemonday.StrictPolicy()
)

// SanitizeHTML keeps safe formatting markup from rich-text editors
func SanitizeHTML(content string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(content))
}

// StripHTML removes all markup
func StripHTML(content string) string {
	return strings.TrimSpace(plainTextPolicy.Sanitize(content))
}
