package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pitchside/internal/features"
	"github.com/yourusername/pitchside/internal/models"
)

func TestComputeLocalAnalysisNoData(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	result := ComputeLocalAnalysis(testBundle(), features.TeamFeatures{}, nil, now)

	require.NotNil(t, result)
	assert.Equal(t, models.SourceFallback, result.Source)
	assert.Equal(t, models.OutcomeBalanced, result.PredictedOutcome)
	assert.Equal(t, noDataConfidence, result.ConfidenceScore)
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.SupportingReasons)
	assert.Equal(t, fallbackStakeNone, result.RecommendedStake)
	assert.Equal(t, now, result.GeneratedAt)
}

func TestComputeLocalAnalysisOutcome(t *testing.T) {
	tests := []struct {
		name     string
		homeForm models.FormSummary
		awayForm models.FormSummary
		want     models.PredictedOutcome
	}{
		{
			name:     "home dominance",
			homeForm: models.FormSummary{Wins: 4, Draws: 1},
			awayForm: models.FormSummary{Wins: 1, Losses: 4},
			want:     models.OutcomeHomeFavored,
		},
		{
			name:     "away dominance",
			homeForm: models.FormSummary{Draws: 2, Losses: 3},
			awayForm: models.FormSummary{Wins: 3, Draws: 2},
			want:     models.OutcomeAwayFavored,
		},
		{
			name:     "narrow gap stays balanced",
			homeForm: models.FormSummary{Wins: 2, Draws: 2, Losses: 1},
			awayForm: models.FormSummary{Wins: 2, Losses: 3},
			want:     models.OutcomeBalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := features.TeamFeatures{HomeForm: tt.homeForm, AwayForm: tt.awayForm}
			result := ComputeLocalAnalysis(testBundle(), stats, nil, time.Now())
			assert.Equal(t, tt.want, result.PredictedOutcome)
			assert.NotEmpty(t, result.SupportingReasons)
			assert.GreaterOrEqual(t, result.ConfidenceScore, baseConfidence)
			assert.LessOrEqual(t, result.ConfidenceScore, baseConfidence+maxGapConfidence)
		})
	}
}

func TestComputeLocalAnalysisGoalsMarket(t *testing.T) {
	highScoring := features.TeamFeatures{
		HomeForm: models.FormSummary{Wins: 3, Draws: 1, Losses: 1, GoalsFor: 11, GoalsAgainst: 6},
		AwayForm: models.FormSummary{Wins: 2, Draws: 1, Losses: 2, GoalsFor: 9, GoalsAgainst: 8},
	}
	result := ComputeLocalAnalysis(testBundle(), highScoring, nil, time.Now())
	assert.Equal(t, models.GoalsOver, result.GoalsMarket, "2.2 + 1.8 combined average clears the line")

	lowScoring := features.TeamFeatures{
		HomeForm: models.FormSummary{Wins: 2, Draws: 2, Losses: 1, GoalsFor: 5, GoalsAgainst: 3},
		AwayForm: models.FormSummary{Wins: 1, Draws: 2, Losses: 2, GoalsFor: 4, GoalsAgainst: 6},
	}
	result = ComputeLocalAnalysis(testBundle(), lowScoring, nil, time.Now())
	assert.Equal(t, models.GoalsUnder, result.GoalsMarket)
}

func TestComputeLocalAnalysisStakeFollowsEdgeTier(t *testing.T) {
	stats := features.TeamFeatures{
		HomeForm: models.FormSummary{Wins: 3, Draws: 2},
		AwayForm: models.FormSummary{Wins: 1, Draws: 1, Losses: 3},
	}

	tests := []struct {
		tier models.RatingTier
		want string
	}{
		{models.TierStrong, "2-3% of bankroll"},
		{models.TierModerate, "1-2% of bankroll"},
		{models.TierSlight, "0.5-1% of bankroll"},
		{models.TierNone, fallbackStakeNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			edge := &models.MarketEdge{MarketType: models.MarketHome, RatingTier: tt.tier, Edge: 0.05}
			result := ComputeLocalAnalysis(testBundle(), stats, edge, time.Now())
			assert.Equal(t, tt.want, result.RecommendedStake)
			assert.Same(t, edge, result.BestEdge)
		})
	}
}

func TestComputeLocalAnalysisMentionsEdgeInReasons(t *testing.T) {
	stats := features.TeamFeatures{
		HomeForm: models.FormSummary{Wins: 4, Draws: 1, GoalsFor: 9, GoalsAgainst: 2},
		AwayForm: models.FormSummary{Wins: 1, Losses: 4, GoalsFor: 3, GoalsAgainst: 10},
	}
	edge := &models.MarketEdge{MarketType: models.MarketHome, RatingTier: models.TierModerate, Edge: 0.06}

	result := ComputeLocalAnalysis(testBundle(), stats, edge, time.Now())

	var found bool
	for _, reason := range result.SupportingReasons {
		if strings.Contains(reason, "moderate") && strings.Contains(reason, "home") {
			found = true
		}
	}
	assert.True(t, found, "edge rating should appear in supporting reasons")
}
