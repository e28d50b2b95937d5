package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pitchside/internal/features"
	"github.com/yourusername/pitchside/internal/logger"
	"github.com/yourusername/pitchside/internal/models"
)

type stubCompletionClient struct {
	reply string
	err   error
	calls int
}

func (s *stubCompletionClient) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestGenerator(client CompletionClient, enabled bool) *Generator {
	return NewGenerator(client, 15*time.Second, enabled, logger.NewLogger("error"))
}

func testBundle() *models.FixtureBundle {
	return &models.FixtureBundle{
		FixtureID:   9001,
		KickoffTime: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		League:      "Premier League",
		HomeTeam:    models.Team{ID: 10, Name: "Arsenal"},
		AwayTeam:    models.Team{ID: 20, Name: "Fulham"},
	}
}

func strongHomeStats() features.TeamFeatures {
	return features.TeamFeatures{
		HomeForm: models.FormSummary{TeamID: 10, Wins: 4, Draws: 1, GoalsFor: 11, GoalsAgainst: 3,
			ResultSequence: []models.ResultCode{"W", "W", "W", "W", "D"}},
		AwayForm: models.FormSummary{TeamID: 20, Wins: 1, Draws: 1, Losses: 3, GoalsFor: 4, GoalsAgainst: 9,
			ResultSequence: []models.ResultCode{"L", "W", "L", "D", "L"}},
		H2H: models.H2HSummary{MatchCount: 4, HomeWins: 3, Draws: 1},
	}
}

const validAIReply = `Here is my analysis:
{"predicted_outcome": "home_favored", "goals_market": "over_2.5", "confidence": 74,
 "summary": "Arsenal dominate on form and should control this match.",
 "supporting_reasons": ["superior recent form", "head-to-head record"],
 "recommended_stake": "1-2% of bankroll"}`

func TestGenerateUsesAIWhenHealthy(t *testing.T) {
	client := &stubCompletionClient{reply: validAIReply}
	g := newTestGenerator(client, true)

	bestEdge := &models.MarketEdge{MarketType: models.MarketHome, Edge: 0.07, RatingTier: models.TierModerate}
	result := g.Generate(context.Background(), testBundle(), strongHomeStats(), nil, bestEdge)

	require.NotNil(t, result)
	assert.Equal(t, models.SourceAI, result.Source)
	assert.Equal(t, models.OutcomeHomeFavored, result.PredictedOutcome)
	assert.Equal(t, models.GoalsOver, result.GoalsMarket)
	assert.Equal(t, 74, result.ConfidenceScore)
	assert.Equal(t, int64(9001), result.FixtureID)
	assert.Same(t, bestEdge, result.BestEdge)
	assert.Equal(t, 1, client.calls)
}

func TestGenerateFallsBackWhenAIFails(t *testing.T) {
	client := &stubCompletionClient{err: ErrAIUnavailable}
	g := newTestGenerator(client, true)

	result := g.Generate(context.Background(), testBundle(), strongHomeStats(), nil, nil)

	require.NotNil(t, result)
	assert.Equal(t, models.SourceFallback, result.Source)
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.SupportingReasons)
	assert.Equal(t, 1, client.calls, "no retries at the generator layer")
}

func TestGenerateFallsBackOnMalformedReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no JSON at all", "I think the home side wins."},
		{"invalid outcome", `{"predicted_outcome": "coin_flip", "goals_market": "over_2.5", "confidence": 60, "summary": "x", "supporting_reasons": ["y"]}`},
		{"invalid goals market", `{"predicted_outcome": "balanced", "goals_market": "over_3.5", "confidence": 60, "summary": "x", "supporting_reasons": ["y"]}`},
		{"confidence out of range", `{"predicted_outcome": "balanced", "goals_market": "under_2.5", "confidence": 140, "summary": "x", "supporting_reasons": ["y"]}`},
		{"empty summary", `{"predicted_outcome": "balanced", "goals_market": "under_2.5", "confidence": 60, "summary": "", "supporting_reasons": ["y"]}`},
		{"no reasons", `{"predicted_outcome": "balanced", "goals_market": "under_2.5", "confidence": 60, "summary": "x", "supporting_reasons": []}`},
		{"truncated JSON", `{"predicted_outcome": "balanced", "goals_market"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(&stubCompletionClient{reply: tt.reply}, true)
			result := g.Generate(context.Background(), testBundle(), strongHomeStats(), nil, nil)
			require.NotNil(t, result)
			assert.Equal(t, models.SourceFallback, result.Source)
			assert.NotEmpty(t, result.SupportingReasons)
		})
	}
}

func TestGenerateDisabledSkipsClient(t *testing.T) {
	client := &stubCompletionClient{reply: validAIReply}
	g := newTestGenerator(client, false)

	result := g.Generate(context.Background(), testBundle(), strongHomeStats(), nil, nil)

	assert.Equal(t, models.SourceFallback, result.Source)
	assert.Zero(t, client.calls)
}

func TestGenerateNilClientNeverPanics(t *testing.T) {
	g := newTestGenerator(nil, true)
	result := g.Generate(context.Background(), testBundle(), strongHomeStats(), nil, nil)
	assert.Equal(t, models.SourceFallback, result.Source)
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, false},
		{"prose around object", `sure: {"a": 1} done`, `{"a": 1}`, false},
		{"nested objects", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`, false},
		{"braces inside strings", `{"a": "{not a block}"}`, `{"a": "{not a block}"}`, false},
		{"escaped quote in string", `{"a": "he said \"{\" loudly"}`, `{"a": "he said \"{\" loudly"}`, false},
		{"unterminated object", `{"a": 1`, "", true},
		{"no object", "nothing here", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAIMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallbackReasonLabels(t *testing.T) {
	assert.Equal(t, "timeout", fallbackReason(ErrAITimeout))
	assert.Equal(t, "malformed", fallbackReason(ErrAIMalformedResponse))
	assert.Equal(t, "unavailable", fallbackReason(errors.New("connection refused")))
}
