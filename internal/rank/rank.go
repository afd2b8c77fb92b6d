// Package rank orders detected risks by severity and derives the remediation
// text shown alongside them.
package rank

import (
	"sort"

	"github.com/ppiankov/termlens/internal/catalog"
	"github.com/ppiankov/termlens/internal/model"
)

// Rank returns the matched risks from results, most severe first.
// Severity is the magnitude of the weight; ties keep catalog order.
func Rank(results []model.MatchResult) []model.MatchResult {
	ranked := make([]model.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Matched && r.Kind == model.KindRisk {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		mi, mj := magnitude(ranked[i].Weight), magnitude(ranked[j].Weight)
		if mi != mj {
			return mi > mj
		}
		return ranked[i].Order < ranked[j].Order
	})
	return ranked
}

// Compliance returns the matched compliance results in catalog order
func Compliance(results []model.MatchResult) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Matched && r.Kind == model.KindCompliance {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Recommendations returns each ranked risk's recommendation verbatim,
// index-aligned with ranked.
func Recommendations(cat *catalog.Catalog, ranked []model.MatchResult) []string {
	recs := make([]string, len(ranked))
	for i, r := range ranked {
		if c, ok := cat.Lookup(r.CategoryID); ok {
			recs[i] = c.Recommendation
		}
	}
	return recs
}

// Gaps returns the gap suggestion of every compliance category that did not
// match, in catalog order. Categories without gap text are skipped.
func Gaps(cat *catalog.Catalog, results []model.MatchResult) []string {
	matched := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Matched {
			matched[r.CategoryID] = true
		}
	}

	gaps := make([]string, 0)
	for i := 0; i < cat.Len(); i++ {
		c := cat.Category(i)
		if c.Kind != model.KindCompliance || matched[c.ID] || c.Gap == "" {
			continue
		}
		gaps = append(gaps, c.Gap)
	}
	return gaps
}

func magnitude(w int) int {
	if w < 0 {
		return -w
	}
	return w
}
