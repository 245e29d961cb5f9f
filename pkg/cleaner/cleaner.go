// Package cleaner normalizes raw document text before prompting.
package cleaner

import (
	"regexp"
	"strings"
)

// TailLength is how many trailing characters survive truncation. The tail
// of a document often carries signatures, totals, and other fields the
// schema asks for, so it is kept alongside the leading context.
const TailLength = 500

var (
	newlineRuns = regexp.MustCompile(`\n+`)
	hspaceRuns  = regexp.MustCompile(`[\t ]+`)
)

// Clean collapses newline runs to a single newline, horizontal whitespace
// runs to a single space, and trims the result. If the cleaned text exceeds
// maxLength characters it is cut down to the first maxLength-TailLength
// characters plus the final TailLength characters, joined by a single
// space. The middle of an overlong document is discarded.
func Clean(text string, maxLength int) string {
	cleaned := strings.TrimSpace(hspaceRuns.ReplaceAllString(newlineRuns.ReplaceAllString(text, "\n"), " "))

	runes := []rune(cleaned)
	if len(runes) <= maxLength {
		return cleaned
	}

	front := string(runes[:maxLength-TailLength])
	tail := string(runes[len(runes)-TailLength:])
	return front + " " + tail
}
