// Package value converts market odds and team statistics into edge assessments.
package value

import (
	"math"

	"github.com/yourusername/pitchside/internal/models"
)

// RuleInput is the evaluation context for one outcome of one fixture.
type RuleInput struct {
	Market   models.MarketType
	Odds     float64
	HasStats bool
	Home     models.FormSummary
	Away     models.FormSummary
}

// Rule is one declarative adjustment: when Condition holds, Weight is added
// to the implied probability. Rules are evaluated in declaration order.
type Rule struct {
	Tag       string
	Weight    float64
	Condition func(in RuleInput) bool
}

// Tuning constants for the rule ladder. They are not statistically
// calibrated; treat them as configuration, not insight.
const (
	formEdgeWeight      = 0.03
	attackEdgeWeight    = 0.02
	defenceEdgeWeight   = 0.02
	formDeficitPenalty  = -0.02
	drawEvenFormsWeight = 0.03
	drawEvenAttackDelta = 0.3
	drawEvenAttackBonus = 0.02
	drawLowScoringLine  = 2.0
	drawLowScoringBonus = 0.02
	drawFormGapMin      = 6
	drawFormGapPenalty  = -0.03
	favouriteBandLow    = 1.5
	favouriteBandHigh   = 2.2
	favouriteBandBonus  = 0.02
	longshotOddsMin     = 4.0
	longshotPenalty     = -0.02
)

// statRules apply when both teams have recent-form statistics.
var statRules = []Rule{
	{
		Tag:    "home_form_edge",
		Weight: formEdgeWeight,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketHome && in.Home.FormScore() > in.Away.FormScore()
		},
	},
	{
		Tag:    "home_attack_edge",
		Weight: attackEdgeWeight,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketHome && in.Home.AvgGoalsFor() > in.Away.AvgGoalsFor()
		},
	},
	{
		Tag:    "home_defence_edge",
		Weight: defenceEdgeWeight,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketHome && in.Home.AvgGoalsAgainst() < in.Away.AvgGoalsAgainst()
		},
	},
	{
		Tag:    "home_form_deficit",
		Weight: formDeficitPenalty,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketHome && in.Home.FormScore() < in.Away.FormScore()
		},
	},
	{
		Tag:    "away_form_edge",
		Weight: formEdgeWeight,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketAway && in.Away.FormScore() > in.Home.FormScore()
		},
	},
	{
		Tag:    "away_attack_edge",
		Weight: attackEdgeWeight,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketAway && in.Away.AvgGoalsFor() > in.Home.AvgGoalsFor()
		},
	},
	{
		Tag:    "away_defence_edge",
		Weight: defenceEdgeWeight,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketAway && in.Away.AvgGoalsAgainst() < in.Home.AvgGoalsAgainst()
		},
	},
	{
		Tag:    "away_form_deficit",
		Weight: formDeficitPenalty,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketAway && in.Away.FormScore() < in.Home.FormScore()
		},
	},
	{
		Tag:    "draw_even_forms",
		Weight: drawEvenFormsWeight,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketDraw && absInt(in.Home.FormScore()-in.Away.FormScore()) <= 2
		},
	},
	{
		Tag:    "draw_even_attack",
		Weight: drawEvenAttackBonus,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketDraw && math.Abs(in.Home.AvgGoalsFor()-in.Away.AvgGoalsFor()) < drawEvenAttackDelta
		},
	},
	{
		Tag:    "draw_low_scoring",
		Weight: drawLowScoringBonus,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketDraw && in.Home.AvgGoalsFor()+in.Away.AvgGoalsFor() < drawLowScoringLine
		},
	},
	{
		Tag:    "draw_form_gap",
		Weight: drawFormGapPenalty,
		Condition: func(in RuleInput) bool {
			return in.Market == models.MarketDraw && absInt(in.Home.FormScore()-in.Away.FormScore()) >= drawFormGapMin
		},
	},
}

// oddsOnlyRules apply when per-team statistics are unavailable. They are a
// smaller, conservative adjustment gated on price bands alone.
var oddsOnlyRules = []Rule{
	{
		Tag:    "favourite_band",
		Weight: favouriteBandBonus,
		Condition: func(in RuleInput) bool {
			return in.Odds >= favouriteBandLow && in.Odds <= favouriteBandHigh
		},
	},
	{
		Tag:    "longshot_penalty",
		Weight: longshotPenalty,
		Condition: func(in RuleInput) bool {
			return in.Odds > longshotOddsMin
		},
	},
}

// evaluateRules sums the weights of every matching rule and returns the
// matched tags in declaration order.
func evaluateRules(rules []Rule, in RuleInput) (adjustment float64, tags []string) {
	for _, rule := range rules {
		if rule.Condition(in) {
			adjustment += rule.Weight
			tags = append(tags, rule.Tag)
		}
	}
	return adjustment, tags
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
