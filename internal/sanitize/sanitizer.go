package sanitize

import (
	"errors"
	"strings"
)

// MaxCommandLength is the longest command accepted for recording.
const MaxCommandLength = 10000

// Validation errors. Callers distinguish refusals with errors.Is.
var (
	ErrEmpty     = errors.New("command is empty")
	ErrTooShort  = errors.New("command is too short")
	ErrTooLong   = errors.New("command exceeds maximum length")
	ErrSensitive = errors.New("command contains sensitive data")
)

// ignoredCommands are navigation and meta commands that carry no signal
// for pattern mining. Matching is on the full cleaned command text.
var ignoredCommands = map[string]struct{}{
	"ls":      {},
	"cd":      {},
	"pwd":     {},
	"exit":    {},
	"clear":   {},
	"history": {},
	"recall":  {},
}

// Sanitizer validates and cleans commands before recording.
type Sanitizer struct {
	patterns []Pattern
}

// NewSanitizer creates a Sanitizer with the default secret patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{patterns: GetSecretPatterns()}
}

// NewSanitizerWithPatterns creates a Sanitizer with custom patterns.
func NewSanitizerWithPatterns(patterns []Pattern) *Sanitizer {
	return &Sanitizer{patterns: patterns}
}

// Clean strips null bytes, trims, and collapses internal whitespace runs
// to single spaces.
func (s *Sanitizer) Clean(input string) string {
	cleaned := strings.ReplaceAll(input, "\x00", "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// ContainsSecret reports whether the input matches any secret pattern.
func (s *Sanitizer) ContainsSecret(input string) bool {
	for _, p := range s.patterns {
		if p.Regex.MatchString(input) {
			return true
		}
	}
	return false
}

// Redact replaces secret material in the input with placeholders. Used for
// text that must be displayed, not for commands entering the store: those
// are refused outright by Validate.
func (s *Sanitizer) Redact(input string) string {
	result := input
	for _, p := range s.patterns {
		result = p.Regex.ReplaceAllString(result, p.Replacement)
	}
	return result
}

// ShouldIgnore reports whether the cleaned command is history noise:
// ignored meta commands, or anything shorter than two characters.
func (s *Sanitizer) ShouldIgnore(cleaned string) bool {
	if len(cleaned) < 2 {
		return true
	}
	_, ok := ignoredCommands[cleaned]
	return ok
}

// Validate checks a cleaned command for recordability. Commands carrying
// secrets are refused rather than redacted so no derived form of the
// secret can reach the store.
func (s *Sanitizer) Validate(cleaned string) error {
	if cleaned == "" {
		return ErrEmpty
	}
	if len(cleaned) < 2 {
		return ErrTooShort
	}
	if len(cleaned) > MaxCommandLength {
		return ErrTooLong
	}
	if s.ContainsSecret(cleaned) {
		return ErrSensitive
	}
	return nil
}
