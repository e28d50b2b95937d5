// Package features derives normalized statistics from raw fixture data.
package features

import (
	"github.com/yourusername/pitchside/internal/models"
)

// formMatchLimit caps how many recent matches feed a form summary.
const formMatchLimit = 5

// TeamFeatures is the full derived statistic set for one fixture.
type TeamFeatures struct {
	HomeForm models.FormSummary
	AwayForm models.FormSummary
	H2H      models.H2HSummary
}

// Extract computes both teams' form summaries and the head-to-head tally for
// a bundle. Pure and idempotent; empty inputs yield all-zero summaries.
func Extract(bundle *models.FixtureBundle) TeamFeatures {
	return TeamFeatures{
		HomeForm: SummarizeForm(bundle.HomeTeam.ID, bundle.HomeFormMatches),
		AwayForm: SummarizeForm(bundle.AwayTeam.ID, bundle.AwayFormMatches),
		H2H:      SummarizeH2H(bundle.HomeTeam.ID, bundle.AwayTeam.ID, bundle.H2HMatches),
	}
}

// SummarizeForm walks at most the first formMatchLimit entries of a team's
// match list, newest first as provided, and accumulates result counts and
// goal tallies. The team's slot in each match is resolved by identity since
// home/away flips across the set.
func SummarizeForm(teamID int64, matches []models.MatchResult) models.FormSummary {
	summary := models.FormSummary{
		TeamID:         teamID,
		ResultSequence: []models.ResultCode{},
	}

	for i, match := range matches {
		if i >= formMatchLimit {
			break
		}

		goalsFor, goalsAgainst, ok := goalsFromPerspective(teamID, match)
		if !ok {
			// Match does not involve the team; malformed provider data
			continue
		}

		summary.GoalsFor += goalsFor
		summary.GoalsAgainst += goalsAgainst

		switch {
		case goalsFor > goalsAgainst:
			summary.Wins++
			summary.ResultSequence = append(summary.ResultSequence, models.ResultWin)
		case goalsFor < goalsAgainst:
			summary.Losses++
			summary.ResultSequence = append(summary.ResultSequence, models.ResultLoss)
		default:
			summary.Draws++
			summary.ResultSequence = append(summary.ResultSequence, models.ResultDraw)
		}
	}

	return summary
}

// SummarizeH2H tallies historical meetings between the two tracked teams
// relative to the bundle's fixed home/away identity.
func SummarizeH2H(homeTeamID, awayTeamID int64, matches []models.MatchResult) models.H2HSummary {
	var summary models.H2HSummary

	for _, match := range matches {
		homeGoals, _, homeOK := goalsFromPerspective(homeTeamID, match)
		awayGoals, _, awayOK := goalsFromPerspective(awayTeamID, match)
		if !homeOK || !awayOK {
			continue
		}

		summary.MatchCount++
		switch {
		case homeGoals > awayGoals:
			summary.HomeWins++
		case awayGoals > homeGoals:
			summary.AwayWins++
		default:
			summary.Draws++
		}
	}

	return summary
}

// goalsFromPerspective resolves a match's score into for/against relative to
// teamID. ok is false when the team played in neither slot.
func goalsFromPerspective(teamID int64, match models.MatchResult) (goalsFor, goalsAgainst int, ok bool) {
	switch teamID {
	case match.HomeTeamID:
		return match.HomeGoals, match.AwayGoals, true
	case match.AwayTeamID:
		return match.AwayGoals, match.HomeGoals, true
	default:
		return 0, 0, false
	}
}
