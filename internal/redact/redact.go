// Package redact strips sensitive material from strings before they reach
// logs or error responses: connection strings, credentials, signed tokens,
// and filesystem paths that would otherwise leak through wrapped errors.
package redact

import "regexp"

// Redaction placeholders.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	PathPlaceholder       = "[REDACTED_PATH]"
)

// Precompiled patterns, each paired with its placeholder. Order matters:
// connection strings must be matched before the generic path pattern eats
// them.
var rules = []struct {
	re          *regexp.Regexp
	placeholder string
}{
	// Database connection strings with inline credentials.
	{regexp.MustCompile(`(?i)(postgres(ql)?|mysql|mongodb)://[^@\s]+@`), CredentialPlaceholder},

	// password=..., pwd:... style fragments.
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?|['"]?[=:])[^'"&\s]{3,}`), CredentialPlaceholder},

	// Keys and secrets in key=value form.
	{regexp.MustCompile(`(?i)(api[_-]?key|secret|access[_-]?key)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), KeyPlaceholder},

	// Signed bearer tokens (three dot-separated base64url segments).
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), TokenPlaceholder},

	// Absolute filesystem paths (two or more segments).
	{regexp.MustCompile(`(/[\w.-]+){2,}`), PathPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, rule := range rules {
		result = rule.re.ReplaceAllString(result, rule.placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output.
// A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
