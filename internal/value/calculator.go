package value

import (
	"github.com/yourusername/pitchside/internal/features"
	"github.com/yourusername/pitchside/internal/models"
)

// Adjusted probabilities are clamped to keep heuristic output away from
// degenerate certainty.
const (
	minAdjustedProbability = 0.05
	maxAdjustedProbability = 0.95
)

// Rating tier thresholds on the computed edge.
const (
	strongEdgeThreshold   = 0.08
	moderateEdgeThreshold = 0.04
)

// Evaluate produces one MarketEdge per quoted outcome in fixed declaration
// order home, draw, away. A nil odds input yields no edges: absence of a
// market is not zero edge.
func Evaluate(odds *models.MatchOdds, stats features.TeamFeatures) []models.MarketEdge {
	if odds == nil {
		return nil
	}

	hasStats := stats.HomeForm.MatchesPlayed() > 0 && stats.AwayForm.MatchesPlayed() > 0

	outcomes := []struct {
		market models.MarketType
		odd    float64
	}{
		{models.MarketHome, odds.Home},
		{models.MarketDraw, odds.Draw},
		{models.MarketAway, odds.Away},
	}

	edges := make([]models.MarketEdge, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.odd <= 1 {
			continue
		}
		edges = append(edges, evaluateOutcome(outcome.market, outcome.odd, hasStats, stats))
	}

	return edges
}

// evaluateOutcome computes the edge for a single outcome.
func evaluateOutcome(market models.MarketType, odd float64, hasStats bool, stats features.TeamFeatures) models.MarketEdge {
	implied := 1.0 / odd

	in := RuleInput{
		Market:   market,
		Odds:     odd,
		HasStats: hasStats,
		Home:     stats.HomeForm,
		Away:     stats.AwayForm,
	}

	var adjustment float64
	if hasStats {
		adjustment, _ = evaluateRules(statRules, in)
	} else {
		adjustment, _ = evaluateRules(oddsOnlyRules, in)
	}

	adjusted := clamp(implied+adjustment, minAdjustedProbability, maxAdjustedProbability)
	edge := adjusted - implied

	return models.MarketEdge{
		MarketType:          market,
		Odds:                odd,
		ImpliedProbability:  implied,
		AdjustedProbability: adjusted,
		Edge:                edge,
		RatingTier:          ratingTier(edge),
	}
}

// BestEdge selects the max-edge entry. Ties resolve by declaration order, so
// home beats draw beats away at equal edge.
func BestEdge(edges []models.MarketEdge) *models.MarketEdge {
	if len(edges) == 0 {
		return nil
	}

	best := edges[0]
	for _, candidate := range edges[1:] {
		if candidate.Edge > best.Edge {
			best = candidate
		}
	}
	return &best
}

// ratingTier grades an edge value.
func ratingTier(edge float64) models.RatingTier {
	switch {
	case edge >= strongEdgeThreshold:
		return models.TierStrong
	case edge >= moderateEdgeThreshold:
		return models.TierModerate
	case edge > 0:
		return models.TierSlight
	default:
		return models.TierNone
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
