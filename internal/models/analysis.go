package models

import "time"

// AnalysisSource marks which path produced an analysis.
type AnalysisSource string

const (
	SourceAI       AnalysisSource = "ai"
	SourceFallback AnalysisSource = "fallback"
)

// PredictedOutcome is the headline call of an analysis.
type PredictedOutcome string

const (
	OutcomeHomeFavored PredictedOutcome = "home_favored"
	OutcomeAwayFavored PredictedOutcome = "away_favored"
	OutcomeBalanced    PredictedOutcome = "balanced"
)

// GoalsMarket is the over/under suggestion derived from combined scoring averages.
type GoalsMarket string

const (
	GoalsOver  GoalsMarket = "over_2.5"
	GoalsUnder GoalsMarket = "under_2.5"
)

// AnalysisResult is the uniform output of the analysis generator. The shape is
// identical whether the AI or the local fallback produced it.
type AnalysisResult struct {
	FixtureID         int64            `json:"fixture_id"`
	Summary           string           `json:"summary"`
	PredictedOutcome  PredictedOutcome `json:"predicted_outcome"`
	GoalsMarket       GoalsMarket      `json:"goals_market"`
	ConfidenceScore   int              `json:"confidence_score"`
	SupportingReasons []string         `json:"supporting_reasons"`
	RecommendedStake  string           `json:"recommended_stake"`
	Source            AnalysisSource   `json:"source"`
	BestEdge          *MarketEdge      `json:"best_edge,omitempty"`
	StaleData         bool             `json:"stale_data,omitempty"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// RiskTier labels one leg of a combined strategy.
type RiskTier string

const (
	RiskConservative RiskTier = "conservative"
	RiskModerate     RiskTier = "moderate"
	RiskAggressive   RiskTier = "aggressive"
)

// StrategyLeg is a single multi-leg suggestion at one risk tier.
type StrategyLeg struct {
	Tier       RiskTier `json:"tier"`
	Selections []string `json:"selections"`
	Rationale  string   `json:"rationale"`
}

// CombinedStrategy bundles the three risk-tiered suggestions produced when two
// fixtures are analyzed together.
type CombinedStrategy struct {
	Legs   []StrategyLeg  `json:"legs"`
	Source AnalysisSource `json:"source"`
}

// AnalysisResponse is what the pipeline returns to its caller.
type AnalysisResponse struct {
	Results          []*AnalysisResult `json:"results"`
	CombinedStrategy *CombinedStrategy `json:"combined_strategy,omitempty"`
	RemainingQuota   int               `json:"remaining_quota"`
	Premium          bool              `json:"premium"`
}
