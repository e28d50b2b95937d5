package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/pitchside/internal/features"
	"github.com/yourusername/pitchside/internal/logger"
	"github.com/yourusername/pitchside/internal/metrics"
	"github.com/yourusername/pitchside/internal/models"
)

// Generator produces one AnalysisResult per fixture, preferring the reasoning
// service and falling back to the deterministic local path. Generate never
// returns an error: a usable analysis always comes back.
type Generator struct {
	client         CompletionClient
	analysisLogger *logger.AnalysisLogger
	timeout        time.Duration
	enabled        bool
	clock          func() time.Time
}

// NewGenerator creates an analysis generator. A nil client disables the AI path.
func NewGenerator(client CompletionClient, timeout time.Duration, enabled bool, baseLogger *logrus.Logger) *Generator {
	return &Generator{
		client:         client,
		analysisLogger: logger.NewAnalysisLogger(baseLogger),
		timeout:        timeout,
		enabled:        enabled && client != nil,
		clock:          time.Now,
	}
}

// Generate builds the analysis for one fixture. The AI path gets a single
// attempt within the configured timeout; any failure, malformed reply, or
// disabled client routes to ComputeLocalAnalysis.
func (g *Generator) Generate(ctx context.Context, bundle *models.FixtureBundle, stats features.TeamFeatures, edges []models.MarketEdge, bestEdge *models.MarketEdge) *models.AnalysisResult {
	start := g.clock()

	if !g.enabled {
		result := ComputeLocalAnalysis(bundle, stats, bestEdge, g.clock())
		metrics.RecordAnalysis(string(models.SourceFallback))
		g.analysisLogger.LogAnalysisGenerated(bundle.FixtureID, string(result.Source), result.ConfidenceScore, g.clock().Sub(start))
		return result
	}

	result, err := g.generateFromAI(ctx, bundle, stats, edges)
	if err != nil {
		metrics.RecordFallback(fallbackReason(err))
		g.analysisLogger.LogFallback(bundle.FixtureID, err.Error())
		result = ComputeLocalAnalysis(bundle, stats, bestEdge, g.clock())
	} else {
		result.BestEdge = bestEdge
	}

	metrics.RecordAnalysis(string(result.Source))
	g.analysisLogger.LogAnalysisGenerated(bundle.FixtureID, string(result.Source), result.ConfidenceScore, g.clock().Sub(start))
	return result
}

// aiPayload mirrors the JSON object the prompt instructs the model to emit.
type aiPayload struct {
	PredictedOutcome  string   `json:"predicted_outcome"`
	GoalsMarket       string   `json:"goals_market"`
	Confidence        int      `json:"confidence"`
	Summary           string   `json:"summary"`
	SupportingReasons []string `json:"supporting_reasons"`
	RecommendedStake  string   `json:"recommended_stake"`
}

func (g *Generator) generateFromAI(ctx context.Context, bundle *models.FixtureBundle, stats features.TeamFeatures, edges []models.MarketEdge) (*models.AnalysisResult, error) {
	aiCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.client.Complete(aiCtx, BuildPrompt(bundle, stats, edges))
	if err != nil {
		return nil, err
	}

	payload, err := parseAIPayload(text)
	if err != nil {
		return nil, err
	}

	return &models.AnalysisResult{
		FixtureID:         bundle.FixtureID,
		Summary:           payload.Summary,
		PredictedOutcome:  models.PredictedOutcome(payload.PredictedOutcome),
		GoalsMarket:       models.GoalsMarket(payload.GoalsMarket),
		ConfidenceScore:   payload.Confidence,
		SupportingReasons: payload.SupportingReasons,
		RecommendedStake:  payload.RecommendedStake,
		Source:            models.SourceAI,
		GeneratedAt:       g.clock(),
	}, nil
}

// parseAIPayload extracts and validates the JSON object from a completion,
// tolerating surrounding prose the model sometimes adds.
func parseAIPayload(text string) (*aiPayload, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var payload aiPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, ErrAIMalformedResponse
	}

	if payload.Summary == "" || len(payload.SupportingReasons) == 0 {
		return nil, ErrAIMalformedResponse
	}
	if payload.Confidence < 0 || payload.Confidence > 100 {
		return nil, ErrAIMalformedResponse
	}
	switch models.PredictedOutcome(payload.PredictedOutcome) {
	case models.OutcomeHomeFavored, models.OutcomeAwayFavored, models.OutcomeBalanced:
	default:
		return nil, ErrAIMalformedResponse
	}
	switch models.GoalsMarket(payload.GoalsMarket) {
	case models.GoalsOver, models.GoalsUnder:
	default:
		return nil, ErrAIMalformedResponse
	}
	if payload.RecommendedStake == "" {
		payload.RecommendedStake = fallbackStakeNone
	}

	return &payload, nil
}

// extractJSONObject returns the first balanced top-level {...} block in text.
func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", ErrAIMalformedResponse
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrAIMalformedResponse
}

// fallbackReason maps an AI-path error to a metric label.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrAITimeout):
		return "timeout"
	case errors.Is(err, ErrAIMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
