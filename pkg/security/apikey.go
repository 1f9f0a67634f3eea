// Package security holds helpers for handling upstream credentials.
package security

import (
	"regexp"
	"strings"
)

var (
	validKeyPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	unsafeKeyPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	hexPattern       = regexp.MustCompile(`^[a-fA-F0-9]+$`)
)

// APIKeyValidator provides validation and handling of API keys
type APIKeyValidator struct {
	minLength int
	maxLength int
}

// NewAPIKeyValidator creates a new API key validator with reasonable defaults
func NewAPIKeyValidator() *APIKeyValidator {
	return &APIKeyValidator{
		minLength: 8,
		maxLength: 128,
	}
}

// ValidateAPIKey validates API key format and length
func (v *APIKeyValidator) ValidateAPIKey(apiKey string) bool {
	if len(apiKey) < v.minLength || len(apiKey) > v.maxLength {
		return false
	}
	return validKeyPattern.MatchString(apiKey)
}

// SanitizeAPIKey trims whitespace and strips characters unsafe in a query string.
func (v *APIKeyValidator) SanitizeAPIKey(apiKey string) string {
	return unsafeKeyPattern.ReplaceAllString(strings.TrimSpace(apiKey), "")
}

// SanitizeAll sanitizes every key and drops the ones left empty, preserving order.
func (v *APIKeyValidator) SanitizeAll(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if s := v.SanitizeAPIKey(k); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MaskAPIKey creates a masked version for logging (shows only first/last few chars)
func (v *APIKeyValidator) MaskAPIKey(apiKey string) string {
	if len(apiKey) == 0 {
		return "[empty]"
	}
	if len(apiKey) <= 8 {
		return "[***]"
	}
	return apiKey[:3] + "..." + apiKey[len(apiKey)-3:]
}

// IsValidTMDBKey reports whether the key looks like a TMDB v3 key
// (32 hexadecimal characters).
func (v *APIKeyValidator) IsValidTMDBKey(apiKey string) bool {
	if !v.ValidateAPIKey(apiKey) || len(apiKey) != 32 {
		return false
	}
	return hexPattern.MatchString(apiKey)
}
