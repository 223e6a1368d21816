package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel applies NFKC normalization, trims whitespace and drops
// control characters so labels read from files compare reliably.
func NormalizeLabel(label string) string {
	normed := norm.NFKC.String(label)
	normed = strings.TrimSpace(normed)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}
