package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourusername/pitchside/internal/metrics"
	"github.com/yourusername/pitchside/internal/models"
)

// BuildCombinedStrategy produces the three risk-tiered multi-leg suggestions
// for a two-fixture request. Same contract as Generate: the AI path gets one
// attempt, then the deterministic composition takes over.
func (g *Generator) BuildCombinedStrategy(ctx context.Context, results []*models.AnalysisResult) *models.CombinedStrategy {
	if len(results) != 2 {
		return nil
	}

	if g.enabled {
		if strategy, err := g.combinedFromAI(ctx, results); err == nil {
			metrics.RecordAnalysis(string(strategy.Source))
			return strategy
		} else {
			metrics.RecordFallback(fallbackReason(err))
			g.analysisLogger.LogFallback(results[0].FixtureID, fmt.Sprintf("combined strategy: %v", err))
		}
	}

	strategy := composeLocalStrategy(results)
	metrics.RecordAnalysis(string(strategy.Source))
	return strategy
}

type aiStrategyPayload struct {
	Legs []aiStrategyLeg `json:"legs"`
}

type aiStrategyLeg struct {
	Tier       string   `json:"tier"`
	Selections []string `json:"selections"`
	Rationale  string   `json:"rationale"`
}

func (g *Generator) combinedFromAI(ctx context.Context, results []*models.AnalysisResult) (*models.CombinedStrategy, error) {
	aiCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.client.Complete(aiCtx, BuildCombinedPrompt(results))
	if err != nil {
		return nil, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var payload aiStrategyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, ErrAIMalformedResponse
	}
	if len(payload.Legs) != 3 {
		return nil, ErrAIMalformedResponse
	}

	strategy := &models.CombinedStrategy{Source: models.SourceAI}
	seen := make(map[models.RiskTier]bool, 3)
	for _, leg := range payload.Legs {
		tier := models.RiskTier(leg.Tier)
		switch tier {
		case models.RiskConservative, models.RiskModerate, models.RiskAggressive:
		default:
			return nil, ErrAIMalformedResponse
		}
		if seen[tier] || len(leg.Selections) == 0 || leg.Rationale == "" {
			return nil, ErrAIMalformedResponse
		}
		seen[tier] = true
		strategy.Legs = append(strategy.Legs, models.StrategyLeg{
			Tier:       tier,
			Selections: leg.Selections,
			Rationale:  leg.Rationale,
		})
	}

	return strategy, nil
}

// composeLocalStrategy derives the three tiers mechanically from the two
// per-fixture calls: conservative takes the single strongest lean, moderate
// doubles the two headline calls, aggressive stacks outcomes with both goals
// markets.
func composeLocalStrategy(results []*models.AnalysisResult) *models.CombinedStrategy {
	first, second := results[0], results[1]

	strongest := first
	if second.ConfidenceScore > first.ConfidenceScore {
		strongest = second
	}

	return &models.CombinedStrategy{
		Source: models.SourceFallback,
		Legs: []models.StrategyLeg{
			{
				Tier:       models.RiskConservative,
				Selections: []string{headlineSelection(strongest)},
				Rationale: fmt.Sprintf("single pick on the higher-confidence analysis (confidence %d)",
					strongest.ConfidenceScore),
			},
			{
				Tier:       models.RiskModerate,
				Selections: []string{headlineSelection(first), headlineSelection(second)},
				Rationale:  "double combining the headline call from each fixture",
			},
			{
				Tier: models.RiskAggressive,
				Selections: []string{
					headlineSelection(first), goalsSelection(first),
					headlineSelection(second), goalsSelection(second),
				},
				Rationale: "four-leg stack adding the goals market on both fixtures",
			},
		},
	}
}

func headlineSelection(result *models.AnalysisResult) string {
	switch result.PredictedOutcome {
	case models.OutcomeHomeFavored:
		return fmt.Sprintf("fixture %d: home win", result.FixtureID)
	case models.OutcomeAwayFavored:
		return fmt.Sprintf("fixture %d: away win", result.FixtureID)
	default:
		return fmt.Sprintf("fixture %d: %s", result.FixtureID, result.GoalsMarket)
	}
}

func goalsSelection(result *models.AnalysisResult) string {
	return fmt.Sprintf("fixture %d: %s", result.FixtureID, result.GoalsMarket)
}
