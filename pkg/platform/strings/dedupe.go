// Package strings provides small string-slice utilities shared across the
// project.
package strings

import (
	"strings"
)

// DedupeAndTrim trims whitespace, drops empty entries, and removes duplicates
// while preserving order. Broker lists and dimension vocabularies coming from
// the environment pass through here before use.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
