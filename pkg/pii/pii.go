// Package pii scrubs personally identifying fragments out of free-form text
// before it is logged or persisted alongside aggregate data.
package pii

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{6,}`)
)

// Scrub replaces email addresses and phone numbers with redaction markers.
// Empty input is returned unchanged.
func Scrub(value string) string {
	if value == "" {
		return value
	}
	scrubbed := emailPattern.ReplaceAllString(value, "[redacted-email]")
	scrubbed = phonePattern.ReplaceAllString(scrubbed, "[redacted-phone]")
	return scrubbed
}
