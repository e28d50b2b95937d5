package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pitchside/internal/models"
)

const (
	arsenalID int64 = 10
	chelseaID int64 = 20
)

// match builds a MatchResult with explicit slots
func match(homeID, awayID int64, homeGoals, awayGoals int) models.MatchResult {
	return models.MatchResult{
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		HomeGoals:  homeGoals,
		AwayGoals:  awayGoals,
	}
}

// TestSummarizeFormEmptyInput tests the all-zero summary guarantee
func TestSummarizeFormEmptyInput(t *testing.T) {
	summary := SummarizeForm(arsenalID, nil)

	assert.Equal(t, 0, summary.Wins)
	assert.Equal(t, 0, summary.Draws)
	assert.Equal(t, 0, summary.Losses)
	assert.Equal(t, 0, summary.GoalsFor)
	assert.Equal(t, 0, summary.GoalsAgainst)
	assert.Empty(t, summary.ResultSequence)
	assert.Equal(t, 0.0, summary.AvgGoalsFor())
}

// TestSummarizeFormIdentityMatching tests for/against resolution when the
// team appears in either slot
func TestSummarizeFormIdentityMatching(t *testing.T) {
	matches := []models.MatchResult{
		match(arsenalID, 30, 3, 1), // home win
		match(40, arsenalID, 0, 2), // away win
		match(arsenalID, 50, 1, 1), // draw
		match(60, arsenalID, 2, 0), // away loss
	}

	summary := SummarizeForm(arsenalID, matches)

	assert.Equal(t, 2, summary.Wins)
	assert.Equal(t, 1, summary.Draws)
	assert.Equal(t, 1, summary.Losses)
	assert.Equal(t, 6, summary.GoalsFor)
	assert.Equal(t, 4, summary.GoalsAgainst)
	assert.Equal(t, []models.ResultCode{
		models.ResultWin, models.ResultWin, models.ResultDraw, models.ResultLoss,
	}, summary.ResultSequence)
}

// TestSummarizeFormLimit tests that only the first five entries count
func TestSummarizeFormLimit(t *testing.T) {
	matches := make([]models.MatchResult, 0, 8)
	for i := 0; i < 8; i++ {
		matches = append(matches, match(arsenalID, 99, 1, 0))
	}

	summary := SummarizeForm(arsenalID, matches)

	assert.Equal(t, 5, summary.Wins)
	assert.Len(t, summary.ResultSequence, 5)
}

// TestSummarizeFormSkipsForeignMatches tests malformed entries are dropped
func TestSummarizeFormSkipsForeignMatches(t *testing.T) {
	matches := []models.MatchResult{
		match(70, 80, 4, 4), // neither slot is the tracked team
		match(arsenalID, 30, 2, 0),
	}

	summary := SummarizeForm(arsenalID, matches)

	assert.Equal(t, 1, summary.MatchesPlayed())
	assert.Equal(t, 1, summary.Wins)
}

// TestSummarizeH2HSideFlips checks side attribution: team A won 2 drew 1
// against team B with sides flipping across the historical set
func TestSummarizeH2HSideFlips(t *testing.T) {
	matches := []models.MatchResult{
		match(arsenalID, chelseaID, 2, 1), // A home, A wins
		match(chelseaID, arsenalID, 0, 3), // A away, A wins
		match(chelseaID, arsenalID, 1, 1), // draw
	}

	summary := SummarizeH2H(arsenalID, chelseaID, matches)

	assert.Equal(t, models.H2HSummary{MatchCount: 3, HomeWins: 2, AwayWins: 0, Draws: 1}, summary)
}

// TestSummarizeH2HEmptyInput tests the all-zero guarantee
func TestSummarizeH2HEmptyInput(t *testing.T) {
	summary := SummarizeH2H(arsenalID, chelseaID, nil)
	assert.Equal(t, models.H2HSummary{}, summary)
}

// TestExtractIdempotent tests that repeated extraction yields identical output
func TestExtractIdempotent(t *testing.T) {
	bundle := &models.FixtureBundle{
		HomeTeam: models.Team{ID: arsenalID, Name: "Arsenal"},
		AwayTeam: models.Team{ID: chelseaID, Name: "Chelsea"},
		HomeFormMatches: []models.MatchResult{
			match(arsenalID, 30, 2, 1),
			match(40, arsenalID, 1, 1),
		},
		AwayFormMatches: []models.MatchResult{
			match(chelseaID, 50, 0, 2),
		},
		H2HMatches: []models.MatchResult{
			match(arsenalID, chelseaID, 1, 0),
		},
	}

	first := Extract(bundle)
	second := Extract(bundle)

	require.Equal(t, first, second)
	assert.Equal(t, 1, first.HomeForm.Wins)
	assert.Equal(t, 1, first.AwayForm.Losses)
	assert.Equal(t, 1, first.H2H.HomeWins)
}

// TestFormScore tests the wins*3+draws scoring used by the fallback analysis
func TestFormScore(t *testing.T) {
	tests := []struct {
		name     string
		wins     int
		draws    int
		expected int
	}{
		{"All wins", 5, 0, 15},
		{"Mixed", 3, 1, 10},
		{"Poor", 0, 2, 2},
		{"Empty", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := models.FormSummary{Wins: tt.wins, Draws: tt.draws}
			assert.Equal(t, tt.expected, summary.FormScore())
		})
	}
}
