package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits for request payloads
const (
	MaxCommandSize = 4 * 1024  // 4KB - single desktop command
	MaxMessageSize = 16 * 1024 // 16KB - contact message body
)

// String length limits
const (
	MaxAppIDLength   = 64
	MaxNameLength    = 256
	MaxEmailLength   = 255
	MaxSubjectLength = 256
	MaxQueryLength   = 128
	MaxLineLength    = 512
)

var (
	// AppIDPattern allows lowercase alphanumerics, hyphens and underscores
	AppIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	// EmailPattern is a basic email validation
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateAppID checks an application identifier
func ValidateAppID(id string) error {
	if id == "" {
		return fmt.Errorf("app_id is required")
	}
	if len(id) > MaxAppIDLength {
		return fmt.Errorf("app_id exceeds maximum length of %d", MaxAppIDLength)
	}
	if !AppIDPattern.MatchString(id) {
		return fmt.Errorf("app_id contains invalid characters")
	}
	return nil
}

// ValidateText checks a free-form field for presence, length and encoding
func ValidateText(value, field string, maxLen int, required bool) error {
	if strings.TrimSpace(value) == "" {
		if required {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s must be valid UTF-8", field)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
	}
	return nil
}

// Truncate cuts s to at most maxBytes bytes without splitting a rune,
// marking the cut with an ellipsis
func Truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	const mark = "…"
	cut := maxBytes - len(mark)
	if cut <= 0 {
		return ""
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + mark
}

// ValidateEmail checks an email address
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email exceeds maximum length of %d", MaxEmailLength)
	}
	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("email is not valid")
	}
	return nil
}

// ValidateQuery checks a search query
func ValidateQuery(q string) error {
	return ValidateText(q, "q", MaxQueryLength, true)
}
