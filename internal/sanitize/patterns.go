// Package sanitize validates and cleans shell commands before they enter
// the history store: secret detection, redaction, noise filtering, and
// risk classification.
package sanitize

import "regexp"

// Pattern is a compiled secret-detection rule with a redaction placeholder.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// secretPatterns are applied both for detection (commands carrying secrets
// are refused) and for redaction of free text shown in reports.
var secretPatterns = []Pattern{
	{
		Name:        "Generic Secret",
		Regex:       regexp.MustCompile(`(?i)(password|passwd|pwd|token|secret|auth|api[_-]?key)\s*[=:]\s*\S+`),
		Replacement: "$1=[REDACTED]",
	},
	{
		Name:        "Long-Form Flag",
		Regex:       regexp.MustCompile(`(?i)(--password|--token|--api-key|--secret)[=\s]+\S+`),
		Replacement: "$1 [REDACTED]",
	},
	{
		Name:        "Short Password Flag",
		Regex:       regexp.MustCompile(`\s-p\s+\S+`),
		Replacement: " -p [REDACTED]",
	},
	{
		Name:        "Bearer Token",
		Regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._-]{8,}`),
		Replacement: "Bearer [REDACTED]",
	},
	{
		Name:        "Basic Auth",
		Regex:       regexp.MustCompile(`(?i)basic\s+[A-Za-z0-9+/=]{16,}`),
		Replacement: "Basic [REDACTED]",
	},
	{
		Name:        "AWS Access Key",
		Regex:       regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		Replacement: "[REDACTED]",
	},
	{
		Name:        "GitHub Token",
		Regex:       regexp.MustCompile(`gh[pos]_[A-Za-z0-9]{36}`),
		Replacement: "[REDACTED]",
	},
}

// GetSecretPatterns returns a copy of the secret detection patterns.
// A copy is returned to prevent callers from mutating the internal list.
func GetSecretPatterns() []Pattern {
	result := make([]Pattern, len(secretPatterns))
	copy(result, secretPatterns)
	return result
}
