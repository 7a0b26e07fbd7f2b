package pii

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrub(t *testing.T) {
	t.Run("redacts email addresses", func(t *testing.T) {
		got := Scrub("contact anna.schmidt+oncall@klinik-mitte.de for details")
		assert.Equal(t, "contact [redacted-email] for details", got)
	})

	t.Run("redacts phone numbers", func(t *testing.T) {
		got := Scrub("call +49 30 1234567 after shift")
		assert.Equal(t, "call [redacted-phone]after shift", got)
	})

	t.Run("leaves plain text alone", func(t *testing.T) {
		assert.Equal(t, "ward 7 understaffed", Scrub("ward 7 understaffed"))
	})

	t.Run("empty string passes through", func(t *testing.T) {
		assert.Equal(t, "", Scrub(""))
	})
}
