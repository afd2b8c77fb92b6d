// Package score turns match results into a bounded fairness score and tier.
//
// Scoring is purely additive: the base score loses the magnitude of every
// matched risk and gains the weight of every matched compliance category,
// then the sum is clamped to [0, 100]. Nothing here depends on the order of
// the input results.
package score

import (
	"github.com/ppiankov/termlens/internal/model"
	"go.uber.org/zap"
)

const (
	MinScore = 0
	MaxScore = 100

	// Tier thresholds (inclusive lower bounds)
	FairThreshold     = 80
	ModerateThreshold = 60
)

// Scorer aggregates match results into a score
type Scorer struct {
	log      *zap.Logger
	compound bool
}

// Option configures a Scorer
type Option func(*Scorer)

// WithLogger sets the logger used for per-adjustment debug lines
func WithLogger(log *zap.Logger) Option {
	return func(s *Scorer) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCompoundMatches multiplies each adjustment by the number of distinct
// rules that fired for its category. Off by default.
func WithCompoundMatches(on bool) Option {
	return func(s *Scorer) {
		s.compound = on
	}
}

// NewScorer creates a new scorer
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Aggregate applies every matched category's weight to base and clamps the
// result. The returned adjustments follow the order of results and omit
// unmatched categories.
func (s *Scorer) Aggregate(base int, results []model.MatchResult) (int, []model.Adjustment) {
	total := base
	adjustments := make([]model.Adjustment, 0, len(results))

	for _, r := range results {
		if !r.Matched {
			continue
		}

		points := r.Weight
		if s.compound && r.MatchCount > 1 {
			points *= r.MatchCount
		}
		total += points

		adjustments = append(adjustments, model.Adjustment{
			CategoryID: r.CategoryID,
			Kind:       r.Kind,
			Points:     points,
		})
		s.log.Debug("score adjustment",
			zap.String("category", r.CategoryID),
			zap.String("kind", string(r.Kind)),
			zap.Int("points", points),
			zap.Int("running", total),
		)
	}

	return Clamp(total), adjustments
}

// Clamp bounds a raw score to [MinScore, MaxScore]
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Classify maps a score to its tier. Out-of-range input is clamped first.
func Classify(score int) model.Tier {
	score = Clamp(score)
	switch {
	case score >= FairThreshold:
		return model.TierFair
	case score >= ModerateThreshold:
		return model.TierModerate
	default:
		return model.TierUnfair
	}
}
