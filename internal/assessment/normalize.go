package assessment

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Characters stripped before comparison. Zero-width characters creep in via
// mobile keyboards; the punctuation set covers both Latin marks and the
// Devanagari danda.
var (
	zeroWidthChars = []string{"​", "‌", "‍", "\uFEFF"}
	punctuation    = []string{".", ",", "!", "?", "।", "॥", ";", ":", "'", "\"", "(", ")"}
)

// Normalize prepares text for comparison: Unicode NFC composition, zero
// width and punctuation stripping, case folding, and whitespace collapsing.
// Two answers that differ only in these dimensions are the same answer.
func Normalize(text string) string {
	text = norm.NFC.String(text)

	for _, c := range zeroWidthChars {
		text = strings.ReplaceAll(text, c, "")
	}
	for _, c := range punctuation {
		text = strings.ReplaceAll(text, c, "")
	}

	text = strings.ToLower(text)

	// Collapse all interior whitespace runs and trim the ends.
	return strings.Join(strings.Fields(text), " ")
}
