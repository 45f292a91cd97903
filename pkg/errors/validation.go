package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxModulePathLength = 256

// goModulePathRegex matches the characters allowed in Go module paths.
var goModulePathRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._~/-]*$`)

// ValidateModulePath validates a module path before any of its segments are
// interpolated into upstream URLs.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - No path traversal sequences (.., //) or backslashes
//   - Maximum length of 256 characters
func ValidateModulePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidFormat, "module path cannot be empty")
	}

	if len(path) > maxModulePathLength {
		return New(ErrCodeInvalidFormat, "module path too long (max %d characters)", maxModulePathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFormat, "module path contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidFormat, "module path contains invalid characters: %q", pattern)
		}
	}

	if !goModulePathRegex.MatchString(path) {
		return New(ErrCodeInvalidFormat, "invalid module path: %q", path)
	}

	return nil
}

// versionRegex matches semantic versions, pseudo-versions and the
// +incompatible suffix, e.g. v1.2.3, v0.0.0-20240101000000-abcdef123456.
var versionRegex = regexp.MustCompile(`^v[0-9]+(\.[0-9]+){0,2}([-+][0-9A-Za-z.+-]*)?$`)

// ValidateVersion validates a module version string.
func ValidateVersion(version string) error {
	if version == "" {
		return New(ErrCodeInvalidFormat, "version cannot be empty")
	}
	if !versionRegex.MatchString(version) {
		return New(ErrCodeInvalidFormat, "invalid version: %q", version)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http, https or redis).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"http://", "https://", "redis://", "rediss://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use http, https, redis or rediss scheme")
}
