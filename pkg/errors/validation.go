package errors

import (
	"strings"
	"unicode"
)

// MaxLabelLength bounds component labels accepted from requests.
const MaxLabelLength = 256

// ValidateLabel validates a component label received from outside the
// process (URL path segments, CLI arguments).
//
// The rules are conservative:
//   - No empty labels
//   - No control characters or null bytes
//   - Maximum length of MaxLabelLength bytes
//
// Imported graphs are not subject to these rules beyond the non-empty check;
// a label that fails here simply cannot be requested over HTTP.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidLabel, "component label cannot be empty")
	}

	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidLabel, "component label too long (max %d characters)", MaxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "component label contains invalid control characters")
		}
	}

	return nil
}

// ValidateDepth validates a neighborhood hop bound.
func ValidateDepth(name string, depth int) error {
	if depth < 0 {
		return New(ErrCodeInvalidInput, "%s must be non-negative, got %d", name, depth)
	}
	if depth > 64 {
		return New(ErrCodeInvalidInput, "%s too large (max 64), got %d", name, depth)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
