package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/pitchside/internal/features"
	"github.com/yourusername/pitchside/internal/models"
)

const (
	// formScoreGap is the form-score margin one side needs before the
	// fallback calls the fixture in its favour.
	formScoreGap = 4

	goalsLine = 2.5

	baseConfidence    = 50
	confidencePerGap  = 3
	maxGapConfidence  = 30
	noDataConfidence  = 30
	fallbackStakeNone = "no stake recommended"
)

// ComputeLocalAnalysis builds a deterministic analysis from extracted features
// alone. It never fails: with no data it returns a low-confidence balanced view.
func ComputeLocalAnalysis(bundle *models.FixtureBundle, stats features.TeamFeatures, bestEdge *models.MarketEdge, now time.Time) *models.AnalysisResult {
	result := &models.AnalysisResult{
		FixtureID:   bundle.FixtureID,
		Source:      models.SourceFallback,
		BestEdge:    bestEdge,
		GeneratedAt: now,
	}

	homePlayed := stats.HomeForm.MatchesPlayed()
	awayPlayed := stats.AwayForm.MatchesPlayed()

	if homePlayed == 0 && awayPlayed == 0 {
		result.PredictedOutcome = models.OutcomeBalanced
		result.GoalsMarket = models.GoalsUnder
		result.ConfidenceScore = noDataConfidence
		result.Summary = fmt.Sprintf("Insufficient recent data for %s vs %s; no strong lean either way.",
			bundle.HomeTeam.Name, bundle.AwayTeam.Name)
		result.SupportingReasons = []string{"no recent form data available for either side"}
		result.RecommendedStake = fallbackStakeNone
		return result
	}

	gap := stats.HomeForm.FormScore() - stats.AwayForm.FormScore()
	switch {
	case gap >= formScoreGap:
		result.PredictedOutcome = models.OutcomeHomeFavored
	case gap <= -formScoreGap:
		result.PredictedOutcome = models.OutcomeAwayFavored
	default:
		result.PredictedOutcome = models.OutcomeBalanced
	}

	combinedScoring := stats.HomeForm.AvgGoalsFor() + stats.AwayForm.AvgGoalsFor()
	if combinedScoring > goalsLine {
		result.GoalsMarket = models.GoalsOver
	} else {
		result.GoalsMarket = models.GoalsUnder
	}

	confidence := baseConfidence + int(math.Min(math.Abs(float64(gap))*confidencePerGap, maxGapConfidence))
	result.ConfidenceScore = confidence

	result.SupportingReasons = buildReasons(bundle, stats, bestEdge, gap, combinedScoring)
	result.Summary = buildSummary(bundle, result.PredictedOutcome, gap)
	result.RecommendedStake = stakeForEdge(bestEdge)

	return result
}

func buildReasons(bundle *models.FixtureBundle, stats features.TeamFeatures, bestEdge *models.MarketEdge, gap int, combinedScoring float64) []string {
	reasons := make([]string, 0, 4)

	if stats.HomeForm.MatchesPlayed() > 0 {
		reasons = append(reasons, fmt.Sprintf("%s form: %dW %dD %dL over %d matches (score %d)",
			bundle.HomeTeam.Name, stats.HomeForm.Wins, stats.HomeForm.Draws, stats.HomeForm.Losses,
			stats.HomeForm.MatchesPlayed(), stats.HomeForm.FormScore()))
	}
	if stats.AwayForm.MatchesPlayed() > 0 {
		reasons = append(reasons, fmt.Sprintf("%s form: %dW %dD %dL over %d matches (score %d)",
			bundle.AwayTeam.Name, stats.AwayForm.Wins, stats.AwayForm.Draws, stats.AwayForm.Losses,
			stats.AwayForm.MatchesPlayed(), stats.AwayForm.FormScore()))
	}
	if stats.H2H.MatchCount > 0 {
		reasons = append(reasons, fmt.Sprintf("head-to-head: %d home wins, %d away wins, %d draws over %d meetings",
			stats.H2H.HomeWins, stats.H2H.AwayWins, stats.H2H.Draws, stats.H2H.MatchCount))
	}
	reasons = append(reasons, fmt.Sprintf("combined scoring average %.1f goals against the %.1f line", combinedScoring, goalsLine))
	if bestEdge != nil && bestEdge.RatingTier != models.TierNone {
		reasons = append(reasons, fmt.Sprintf("%s value rating on the %s market (edge %+.3f)",
			bestEdge.RatingTier, bestEdge.MarketType, bestEdge.Edge))
	}

	return reasons
}

func buildSummary(bundle *models.FixtureBundle, outcome models.PredictedOutcome, gap int) string {
	switch outcome {
	case models.OutcomeHomeFavored:
		return fmt.Sprintf("%s hold a clear form advantage over %s (form score gap %d).",
			bundle.HomeTeam.Name, bundle.AwayTeam.Name, gap)
	case models.OutcomeAwayFavored:
		return fmt.Sprintf("%s hold a clear form advantage over %s (form score gap %d).",
			bundle.AwayTeam.Name, bundle.HomeTeam.Name, -gap)
	default:
		return fmt.Sprintf("%s and %s are evenly matched on recent form.",
			bundle.HomeTeam.Name, bundle.AwayTeam.Name)
	}
}

func stakeForEdge(bestEdge *models.MarketEdge) string {
	if bestEdge == nil {
		return fallbackStakeNone
	}
	switch bestEdge.RatingTier {
	case models.TierStrong:
		return "2-3% of bankroll"
	case models.TierModerate:
		return "1-2% of bankroll"
	case models.TierSlight:
		return "0.5-1% of bankroll"
	default:
		return fallbackStakeNone
	}
}
