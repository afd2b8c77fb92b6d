// Package extract turns raw document text into per-category match results.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/termlens/internal/catalog"
	"github.com/ppiankov/termlens/internal/model"
	"github.com/ppiankov/termlens/internal/textnorm"
)

const ellipsis = "..."

// Matcher scans normalized document text against a catalog
type Matcher struct {
	catalog     *catalog.Catalog
	radius      int
	maxExcerpts int
}

// NewMatcher creates a matcher for the given catalog. radius is the number of
// runes of context kept on each side of a hit; maxExcerpts caps excerpts per
// category (0 disables excerpts).
func NewMatcher(cat *catalog.Catalog, radius, maxExcerpts int) *Matcher {
	if radius < 0 {
		radius = 0
	}
	if maxExcerpts < 0 {
		maxExcerpts = 0
	}
	return &Matcher{
		catalog:     cat,
		radius:      radius,
		maxExcerpts: maxExcerpts,
	}
}

// Match returns one result per catalog category, in catalog order.
// A category is matched iff at least one of its rules fires; MatchCount is
// the number of distinct rules that fired, not the number of occurrences.
func (m *Matcher) Match(doc model.Document) []model.MatchResult {
	text := textnorm.Normalize(doc.Content)

	results := make([]model.MatchResult, m.catalog.Len())
	for i := range results {
		cat := m.catalog.Category(i)
		res := model.MatchResult{
			CategoryID:  cat.ID,
			Kind:        cat.Kind,
			DisplayName: cat.DisplayName,
			Severity:    cat.Severity,
			Weight:      cat.Weight,
			Order:       i,
		}

		if text != "" {
			for j, re := range m.catalog.Rules(i) {
				loc := re.FindStringIndex(text)
				if loc == nil {
					continue
				}
				res.MatchCount++
				res.MatchedRules = append(res.MatchedRules, cat.Rules[j].String())
				if len(res.Excerpts) < m.maxExcerpts {
					res.Excerpts = appendUnique(res.Excerpts, excerpt(text, loc[0], loc[1], m.radius))
				}
			}
		}

		res.Matched = res.MatchCount > 0
		results[i] = res
	}
	return results
}

// excerpt cuts radius runes of context on each side of text[start:end]
func excerpt(text string, start, end, radius int) string {
	from := start
	for n := 0; n < radius && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for n := 0; n < radius && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}

	out := strings.TrimSpace(text[from:to])
	if from > 0 {
		out = ellipsis + out
	}
	if to < len(text) {
		out += ellipsis
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
