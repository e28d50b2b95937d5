package analysis

import (
	"fmt"
	"strings"

	"github.com/yourusername/pitchside/internal/features"
	"github.com/yourusername/pitchside/internal/models"
)

// BuildPrompt assembles the natural-language description of a fixture for the
// reasoning service. Deterministic for a given extractor output.
func BuildPrompt(bundle *models.FixtureBundle, stats features.TeamFeatures, edges []models.MarketEdge) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a football betting analyst. Analyze the fixture %s vs %s (%s, kickoff %s).\n\n",
		bundle.HomeTeam.Name, bundle.AwayTeam.Name, bundle.League, bundle.KickoffTime.UTC().Format("2006-01-02 15:04 MST"))

	writeFormSection(&b, bundle.HomeTeam.Name, stats.HomeForm)
	writeFormSection(&b, bundle.AwayTeam.Name, stats.AwayForm)

	if stats.H2H.MatchCount > 0 {
		fmt.Fprintf(&b, "Head-to-head over the last %d meetings: %s %d wins, %s %d wins, %d draws.\n\n",
			stats.H2H.MatchCount, bundle.HomeTeam.Name, stats.H2H.HomeWins, bundle.AwayTeam.Name, stats.H2H.AwayWins, stats.H2H.Draws)
	} else {
		b.WriteString("No head-to-head history is available.\n\n")
	}

	if bundle.Odds != nil {
		fmt.Fprintf(&b, "Market prices (decimal): home %.2f, draw %.2f, away %.2f.\n", bundle.Odds.Home, bundle.Odds.Draw, bundle.Odds.Away)
		for _, edge := range edges {
			fmt.Fprintf(&b, "Computed %s edge: %+.3f (%s).\n", edge.MarketType, edge.Edge, edge.RatingTier)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No market prices are available for this fixture.\n\n")
	}

	b.WriteString("Respond with a single JSON object with exactly these fields: ")
	b.WriteString(`{"predicted_outcome": "home_favored"|"away_favored"|"balanced", `)
	b.WriteString(`"goals_market": "over_2.5"|"under_2.5", "confidence": 0-100, `)
	b.WriteString(`"summary": string, "supporting_reasons": [string, ...], "recommended_stake": string}`)

	return b.String()
}

// BuildCombinedPrompt assembles the second-stage prompt proposing risk-tiered
// multi-leg suggestions over two completed analyses.
func BuildCombinedPrompt(results []*models.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("You are a football betting analyst. Two fixtures have been analyzed:\n\n")
	for i, result := range results {
		fmt.Fprintf(&b, "Fixture %d (id %d): predicted %s, goals market %s, confidence %d. %s\n",
			i+1, result.FixtureID, result.PredictedOutcome, result.GoalsMarket, result.ConfidenceScore, result.Summary)
	}

	b.WriteString("\nPropose three multi-leg suggestions at rising risk: conservative, moderate, aggressive. ")
	b.WriteString("Respond with a single JSON object: ")
	b.WriteString(`{"legs": [{"tier": "conservative"|"moderate"|"aggressive", "selections": [string, ...], "rationale": string}, ...]}`)

	return b.String()
}

// writeFormSection renders one team's recent form into the prompt.
func writeFormSection(b *strings.Builder, teamName string, form models.FormSummary) {
	if form.MatchesPlayed() == 0 {
		fmt.Fprintf(b, "%s: no recent form data available.\n\n", teamName)
		return
	}

	sequence := make([]string, len(form.ResultSequence))
	for i, code := range form.ResultSequence {
		sequence[i] = string(code)
	}

	fmt.Fprintf(b, "%s recent form (newest first): %s, %dW %dD %dL, %d scored, %d conceded over %d matches.\n\n",
		teamName, strings.Join(sequence, ""), form.Wins, form.Draws, form.Losses,
		form.GoalsFor, form.GoalsAgainst, form.MatchesPlayed())
}
