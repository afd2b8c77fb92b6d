package score

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/ppiankov/termlens/internal/model"
)

// buildResults builds a result slice from parallel weight/matched slices.
// Even indices are risks, odd indices compliance categories.
func buildResults(weights []int, matched []bool) []model.MatchResult {
	n := len(weights)
	if len(matched) < n {
		n = len(matched)
	}
	out := make([]model.MatchResult, n)
	for i := 0; i < n; i++ {
		w := weights[i]
		if i%2 == 0 {
			out[i] = risk("r", -w, matched[i])
		} else {
			out[i] = compliance("c", w, matched[i])
		}
	}
	return out
}

func TestAggregateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	s := NewScorer()

	properties.Property("score stays within bounds", prop.ForAll(
		func(weights []int, matched []bool) bool {
			got, _ := s.Aggregate(100, buildResults(weights, matched))
			return got >= MinScore && got <= MaxScore
		},
		gen.SliceOf(gen.IntRange(1, 50)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("result order does not change the score", prop.ForAll(
		func(weights []int, matched []bool) bool {
			results := buildResults(weights, matched)
			reversed := make([]model.MatchResult, len(results))
			for i, r := range results {
				reversed[len(results)-1-i] = r
			}
			a, _ := s.Aggregate(100, results)
			b, _ := s.Aggregate(100, reversed)
			return a == b
		},
		gen.SliceOf(gen.IntRange(1, 50)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("adding a matched risk never raises the score", prop.ForAll(
		func(weights []int, matched []bool, extra int) bool {
			results := buildResults(weights, matched)
			before, _ := s.Aggregate(100, results)
			after, _ := s.Aggregate(100, append(results, risk("extra", -extra, true)))
			return after <= before
		},
		gen.SliceOf(gen.IntRange(1, 50)),
		gen.SliceOf(gen.Bool()),
		gen.IntRange(1, 50),
	))

	properties.Property("adding a matched compliance category never lowers the score", prop.ForAll(
		func(weights []int, matched []bool, extra int) bool {
			results := buildResults(weights, matched)
			before, _ := s.Aggregate(100, results)
			after, _ := s.Aggregate(100, append(results, compliance("extra", extra, true)))
			return after >= before
		},
		gen.SliceOf(gen.IntRange(1, 50)),
		gen.SliceOf(gen.Bool()),
		gen.IntRange(1, 50),
	))

	properties.Property("tier is monotonic in score", prop.ForAll(
		func(a, b int) bool {
			if a > b {
				a, b = b, a
			}
			return tierRank(Classify(a)) <= tierRank(Classify(b))
		},
		gen.IntRange(-50, 150),
		gen.IntRange(-50, 150),
	))

	properties.TestingRun(t)
}

func tierRank(t model.Tier) int {
	switch t {
	case model.TierUnfair:
		return 0
	case model.TierModerate:
		return 1
	default:
		return 2
	}
}
