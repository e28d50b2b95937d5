package analysis

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pitchside/internal/metrics"
	"github.com/yourusername/pitchside/internal/models"
)

func twoResults() []*models.AnalysisResult {
	return []*models.AnalysisResult{
		{
			FixtureID:        101,
			PredictedOutcome: models.OutcomeHomeFavored,
			GoalsMarket:      models.GoalsOver,
			ConfidenceScore:  72,
			Summary:          "Home side well on top.",
		},
		{
			FixtureID:        202,
			PredictedOutcome: models.OutcomeAwayFavored,
			GoalsMarket:      models.GoalsUnder,
			ConfidenceScore:  58,
			Summary:          "Visitors have the stronger recent record.",
		},
	}
}

const validStrategyReply = `{"legs": [
  {"tier": "conservative", "selections": ["fixture 101: home win"], "rationale": "strongest single lean"},
  {"tier": "moderate", "selections": ["fixture 101: home win", "fixture 202: away win"], "rationale": "double on both calls"},
  {"tier": "aggressive", "selections": ["fixture 101: home win", "fixture 101: over_2.5", "fixture 202: away win", "fixture 202: under_2.5"], "rationale": "full stack"}
]}`

func TestBuildCombinedStrategyFromAI(t *testing.T) {
	g := newTestGenerator(&stubCompletionClient{reply: validStrategyReply}, true)

	strategy := g.BuildCombinedStrategy(context.Background(), twoResults())

	require.NotNil(t, strategy)
	assert.Equal(t, models.SourceAI, strategy.Source)
	require.Len(t, strategy.Legs, 3)
	assert.Equal(t, models.RiskConservative, strategy.Legs[0].Tier)
}

func TestBuildCombinedStrategyFallsBack(t *testing.T) {
	g := newTestGenerator(&stubCompletionClient{err: ErrAIUnavailable}, true)

	strategy := g.BuildCombinedStrategy(context.Background(), twoResults())

	require.NotNil(t, strategy)
	assert.Equal(t, models.SourceFallback, strategy.Source)
	require.Len(t, strategy.Legs, 3)

	byTier := make(map[models.RiskTier]models.StrategyLeg)
	for _, leg := range strategy.Legs {
		byTier[leg.Tier] = leg
	}

	conservative := byTier[models.RiskConservative]
	require.Len(t, conservative.Selections, 1)
	assert.Contains(t, conservative.Selections[0], "fixture 101", "higher-confidence fixture carries the single")

	moderate := byTier[models.RiskModerate]
	assert.Len(t, moderate.Selections, 2)

	aggressive := byTier[models.RiskAggressive]
	assert.Len(t, aggressive.Selections, 4)
	assert.Contains(t, aggressive.Selections, "fixture 101: over_2.5")
	assert.Contains(t, aggressive.Selections, "fixture 202: under_2.5")
}

func TestBuildCombinedStrategyRecordsMetrics(t *testing.T) {
	beforeFallbacks := testutil.ToFloat64(metrics.AIFallbacksTotal.WithLabelValues("unavailable"))
	beforeAnalyses := testutil.ToFloat64(metrics.AnalysesTotal.WithLabelValues(string(models.SourceFallback)))

	g := newTestGenerator(&stubCompletionClient{err: ErrAIUnavailable}, true)
	g.BuildCombinedStrategy(context.Background(), twoResults())

	assert.Equal(t, beforeFallbacks+1, testutil.ToFloat64(metrics.AIFallbacksTotal.WithLabelValues("unavailable")),
		"a failed combined attempt must count as a fallback")
	assert.Equal(t, beforeAnalyses+1, testutil.ToFloat64(metrics.AnalysesTotal.WithLabelValues(string(models.SourceFallback))))
}

func TestBuildCombinedStrategyRejectsBadAIShape(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"two legs only", `{"legs": [{"tier": "conservative", "selections": ["a"], "rationale": "r"}, {"tier": "moderate", "selections": ["b"], "rationale": "r"}]}`},
		{"duplicate tier", `{"legs": [{"tier": "moderate", "selections": ["a"], "rationale": "r"}, {"tier": "moderate", "selections": ["b"], "rationale": "r"}, {"tier": "aggressive", "selections": ["c"], "rationale": "r"}]}`},
		{"unknown tier", `{"legs": [{"tier": "yolo", "selections": ["a"], "rationale": "r"}, {"tier": "moderate", "selections": ["b"], "rationale": "r"}, {"tier": "aggressive", "selections": ["c"], "rationale": "r"}]}`},
		{"empty selections", `{"legs": [{"tier": "conservative", "selections": [], "rationale": "r"}, {"tier": "moderate", "selections": ["b"], "rationale": "r"}, {"tier": "aggressive", "selections": ["c"], "rationale": "r"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(&stubCompletionClient{reply: tt.reply}, true)
			strategy := g.BuildCombinedStrategy(context.Background(), twoResults())
			require.NotNil(t, strategy)
			assert.Equal(t, models.SourceFallback, strategy.Source)
		})
	}
}

func TestBuildCombinedStrategySingleFixture(t *testing.T) {
	g := newTestGenerator(&stubCompletionClient{reply: validStrategyReply}, true)
	assert.Nil(t, g.BuildCombinedStrategy(context.Background(), twoResults()[:1]))
}

func TestBalancedOutcomeUsesGoalsMarketAsHeadline(t *testing.T) {
	results := twoResults()
	results[0].PredictedOutcome = models.OutcomeBalanced

	g := newTestGenerator(nil, false)
	strategy := g.BuildCombinedStrategy(context.Background(), results)

	require.NotNil(t, strategy)
	var moderate models.StrategyLeg
	for _, leg := range strategy.Legs {
		if leg.Tier == models.RiskModerate {
			moderate = leg
		}
	}
	assert.Contains(t, moderate.Selections, "fixture 101: over_2.5")
}

func TestComposeLocalStrategyDeterministic(t *testing.T) {
	first := composeLocalStrategy(twoResults())
	second := composeLocalStrategy(twoResults())
	assert.Equal(t, first, second)
}
