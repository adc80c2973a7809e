package transcriber

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Aggregate joins fragments in order with single spaces and trims the
// ends. Nothing is reordered or deduplicated.
func Aggregate(fragments []string) string {
	return norm.NFC.String(strings.TrimSpace(strings.Join(fragments, " ")))
}
