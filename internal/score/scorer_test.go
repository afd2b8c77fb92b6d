package score

import (
	"testing"

	"github.com/ppiankov/termlens/internal/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func risk(id string, weight int, matched bool) model.MatchResult {
	r := model.MatchResult{CategoryID: id, Kind: model.KindRisk, Weight: weight, Matched: matched}
	if matched {
		r.MatchCount = 1
	}
	return r
}

func compliance(id string, weight int, matched bool) model.MatchResult {
	r := model.MatchResult{CategoryID: id, Kind: model.KindCompliance, Weight: weight, Matched: matched}
	if matched {
		r.MatchCount = 1
	}
	return r
}

func TestAggregate(t *testing.T) {
	cases := []struct {
		name    string
		results []model.MatchResult
		want    int
	}{
		{"no results", nil, 100},
		{"nothing matched", []model.MatchResult{risk("data_selling", -30, false), compliance("gdpr", 10, false)}, 100},
		{"single risk", []model.MatchResult{risk("data_selling", -30, true)}, 70},
		{"risk and compliance", []model.MatchResult{risk("data_selling", -30, true), compliance("gdpr", 10, true)}, 80},
		{"two risks", []model.MatchResult{risk("no_refunds", -10, true), risk("automatic_renewal", -15, true)}, 75},
		{"clamped high", []model.MatchResult{compliance("fair_terms", 15, true), compliance("privacy_best_practices", 15, true)}, 100},
		{"clamped low", []model.MatchResult{
			risk("a", -30, true), risk("b", -30, true), risk("c", -25, true), risk("d", -25, true),
		}, 0},
	}

	s := NewScorer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := s.Aggregate(100, tc.results)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAggregate_NonCompoundingByDefault(t *testing.T) {
	r := risk("data_selling", -30, true)
	r.MatchCount = 3

	got, adj := NewScorer().Aggregate(100, []model.MatchResult{r})
	assert.Equal(t, 70, got)
	assert.Equal(t, []model.Adjustment{{CategoryID: "data_selling", Kind: model.KindRisk, Points: -30}}, adj)
}

func TestAggregate_CompoundMatches(t *testing.T) {
	r := risk("data_selling", -30, true)
	r.MatchCount = 2

	got, adj := NewScorer(WithCompoundMatches(true)).Aggregate(100, []model.MatchResult{r})
	assert.Equal(t, 40, got)
	assert.Equal(t, -60, adj[0].Points)
}

func TestAggregate_BreakdownSkipsUnmatched(t *testing.T) {
	_, adj := NewScorer().Aggregate(100, []model.MatchResult{
		risk("data_selling", -30, true),
		risk("no_refunds", -10, false),
		compliance("gdpr", 10, true),
	})

	assert.NotNil(t, adj)
	assert.Len(t, adj, 2)
	assert.Equal(t, "data_selling", adj[0].CategoryID)
	assert.Equal(t, "gdpr", adj[1].CategoryID)
	assert.Equal(t, 10, adj[1].Points)
}

func TestAggregate_EmptyBreakdownIsNotNil(t *testing.T) {
	_, adj := NewScorer().Aggregate(100, nil)
	assert.NotNil(t, adj)
	assert.Empty(t, adj)
}

func TestAggregate_LogsEachAdjustment(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewScorer(WithLogger(zap.New(core)))

	s.Aggregate(100, []model.MatchResult{risk("data_selling", -30, true), compliance("gdpr", 10, true)})

	entries := logs.FilterMessage("score adjustment").All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "data_selling", entries[0].ContextMap()["category"])
	assert.Equal(t, int64(70), entries[0].ContextMap()["running"])
}

func TestClassify(t *testing.T) {
	cases := []struct {
		score int
		want  model.Tier
	}{
		{100, model.TierFair},
		{80, model.TierFair},
		{79, model.TierModerate},
		{60, model.TierModerate},
		{59, model.TierUnfair},
		{0, model.TierUnfair},
		{150, model.TierFair},
		{-20, model.TierUnfair},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.score), "score %d", tc.score)
	}
}
