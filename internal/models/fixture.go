// Package models defines the core domain types for the analysis pipeline.
package models

import (
	"time"
)

// Goals holds a final or current score for a match.
type Goals struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Team identifies one side of a fixture.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MatchResult is a single historical match as returned by the provider.
// HomeTeamID disambiguates which tracked team occupied the home slot,
// since sides flip across a historical set.
type MatchResult struct {
	FixtureID  int64     `json:"fixture_id"`
	Date       time.Time `json:"date"`
	HomeTeamID int64     `json:"home_team_id"`
	AwayTeamID int64     `json:"away_team_id"`
	HomeGoals  int       `json:"home_goals"`
	AwayGoals  int       `json:"away_goals"`
}

// MatchOdds holds decimal prices for the three-way market.
type MatchOdds struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// FixtureBundle aggregates everything the pipeline needs for one fixture.
// It is built per request and owned by a single pipeline invocation.
type FixtureBundle struct {
	FixtureID       int64         `json:"fixture_id"`
	KickoffTime     time.Time     `json:"kickoff_time"`
	League          string        `json:"league"`
	HomeTeam        Team          `json:"home_team"`
	AwayTeam        Team          `json:"away_team"`
	Goals           Goals         `json:"goals"`
	H2HMatches      []MatchResult `json:"h2h_matches"`
	HomeFormMatches []MatchResult `json:"home_form_matches"`
	AwayFormMatches []MatchResult `json:"away_form_matches"`
	Odds            *MatchOdds    `json:"odds,omitempty"`
	PartialData     bool          `json:"partial_data"`
	Stale           bool          `json:"stale"`
}

// FixtureSummary is a lightweight row from a bulk fixtures-by-date query.
type FixtureSummary struct {
	FixtureID   int64     `json:"fixture_id"`
	KickoffTime time.Time `json:"kickoff_time"`
	League      string    `json:"league"`
	HomeTeam    Team      `json:"home_team"`
	AwayTeam    Team      `json:"away_team"`
	Status      string    `json:"status"`
}

// FixtureList is a bulk query result plus a staleness marker set when the
// entries were served from an expired cache entry after an upstream failure.
type FixtureList struct {
	Date     time.Time        `json:"date"`
	League   string           `json:"league,omitempty"`
	Fixtures []FixtureSummary `json:"fixtures"`
	Stale    bool             `json:"stale"`
}

// ResultCode classifies a single match from one team's perspective.
type ResultCode string

const (
	ResultWin  ResultCode = "W"
	ResultDraw ResultCode = "D"
	ResultLoss ResultCode = "L"
)

// FormSummary is the derived recent-form statistic for one team.
// Immutable once computed.
type FormSummary struct {
	TeamID         int64        `json:"team_id"`
	Wins           int          `json:"wins"`
	Draws          int          `json:"draws"`
	Losses         int          `json:"losses"`
	GoalsFor       int          `json:"goals_for"`
	GoalsAgainst   int          `json:"goals_against"`
	ResultSequence []ResultCode `json:"result_sequence"`
}

// MatchesPlayed returns the number of matches the summary covers.
func (f FormSummary) MatchesPlayed() int {
	return f.Wins + f.Draws + f.Losses
}

// FormScore scores recent form as wins*3 + draws.
func (f FormSummary) FormScore() int {
	return f.Wins*3 + f.Draws
}

// AvgGoalsFor returns goals scored per match, 0 when no matches played.
func (f FormSummary) AvgGoalsFor() float64 {
	if n := f.MatchesPlayed(); n > 0 {
		return float64(f.GoalsFor) / float64(n)
	}
	return 0
}

// AvgGoalsAgainst returns goals conceded per match, 0 when no matches played.
func (f FormSummary) AvgGoalsAgainst() float64 {
	if n := f.MatchesPlayed(); n > 0 {
		return float64(f.GoalsAgainst) / float64(n)
	}
	return 0
}

// H2HSummary tallies head-to-head history relative to the bundle's fixed
// home/away identity, regardless of which side was literal home in each match.
type H2HSummary struct {
	MatchCount int `json:"match_count"`
	HomeWins   int `json:"home_wins"`
	AwayWins   int `json:"away_wins"`
	Draws      int `json:"draws"`
}

// MarketType identifies one outcome of the three-way market.
type MarketType string

const (
	MarketHome MarketType = "home"
	MarketDraw MarketType = "draw"
	MarketAway MarketType = "away"
)

// RatingTier grades the size of a computed edge.
type RatingTier string

const (
	TierNone     RatingTier = "none"
	TierSlight   RatingTier = "slight"
	TierModerate RatingTier = "moderate"
	TierStrong   RatingTier = "strong"
)

// MarketEdge is the value assessment for a single outcome.
type MarketEdge struct {
	MarketType          MarketType `json:"market_type"`
	Odds                float64    `json:"odds"`
	ImpliedProbability  float64    `json:"implied_probability"`
	AdjustedProbability float64    `json:"adjusted_probability"`
	Edge                float64    `json:"edge"`
	RatingTier          RatingTier `json:"rating_tier"`
}
