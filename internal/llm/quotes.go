package llm

import (
	"regexp"
	"strings"

	"github.com/ppiankov/termlens/internal/textnorm"
)

// minQuoteRunes ignores short quoted words like "Service" that are usually
// defined terms rather than claims about the document.
const minQuoteRunes = 12

var quotePattern = regexp.MustCompile("[\"\u201c]([^\"\u201c\u201d]+)[\"\u201d]")

// extractQuotes returns the distinct double-quoted passages in text, in order
func extractQuotes(text string) []string {
	var quotes []string
	seen := make(map[string]bool)
	for _, m := range quotePattern.FindAllStringSubmatch(text, -1) {
		q := strings.Trim(m[1], " .,;:!?")
		if len([]rune(q)) < minQuoteRunes || seen[q] {
			continue
		}
		seen[q] = true
		quotes = append(quotes, q)
	}
	return quotes
}

// unverifiedQuotes returns the quotes that do not occur in the document.
// Both sides are normalized, so case, typography and spacing do not matter.
func unverifiedQuotes(quotes []string, documentText string) []string {
	doc := textnorm.Normalize(documentText)
	var missing []string
	for _, q := range quotes {
		if !strings.Contains(doc, textnorm.Normalize(q)) {
			missing = append(missing, q)
		}
	}
	return missing
}
