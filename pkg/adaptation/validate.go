package adaptation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError reports why a rewritten prompt candidate was rejected.
// It is fully internal: the candidate is discarded, the prior effective
// prompt stays in force, and the failure is only logged.
type ValidationError struct {
	// Reason describes the violated rule
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("prompt validation failed: %s", e.Reason)
}

// ValidationRules bound what a rewritten prompt may look like.
type ValidationRules struct {
	// MinLength is the minimum rune count; shorter candidates are
	// degenerate and rejected.
	MinLength int

	// MaxLength is the maximum rune count; longer candidates are runaway
	// generations and rejected.
	MaxLength int

	// RequiredMarkers are substrings that must survive the rewrite: the
	// role definition, the interaction norms section, and the domain
	// keyword.
	RequiredMarkers []string
}

// DefaultValidationRules returns the rules used when none are configured.
func DefaultValidationRules() ValidationRules {
	return ValidationRules{
		MinLength:       100,
		MaxLength:       6000,
		RequiredMarkers: []string{"角色", "回答要求", "医疗"},
	}
}

// Validate checks a rewrite candidate against the rules.
func (r ValidationRules) Validate(candidate string) error {
	n := utf8.RuneCountInString(candidate)
	if n < r.MinLength {
		return &ValidationError{Reason: fmt.Sprintf("too short: %d runes, minimum %d", n, r.MinLength)}
	}
	if n > r.MaxLength {
		return &ValidationError{Reason: fmt.Sprintf("too long: %d runes, maximum %d", n, r.MaxLength)}
	}
	for _, marker := range r.RequiredMarkers {
		if !strings.Contains(candidate, marker) {
			return &ValidationError{Reason: fmt.Sprintf("missing required marker %q", marker)}
		}
	}
	return nil
}
