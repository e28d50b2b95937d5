package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pitchside/internal/analysis"
	"github.com/yourusername/pitchside/internal/features"
	"github.com/yourusername/pitchside/internal/logger"
	"github.com/yourusername/pitchside/internal/metrics"
	"github.com/yourusername/pitchside/internal/models"
	"github.com/yourusername/pitchside/internal/quota"
	"github.com/yourusername/pitchside/internal/value"
)

const maxFixturesPerRequest = 2

// AnalysisService is the caller-facing entry point: quota check, per-fixture
// pipeline, quota consumption, response assembly.
type AnalysisService struct {
	aggregator *Aggregator
	generator  *analysis.Generator
	gate       *quota.Gate
	log        *logrus.Logger
}

// NewAnalysisService wires the pipeline stages together.
func NewAnalysisService(aggregator *Aggregator, generator *analysis.Generator, gate *quota.Gate, baseLogger *logrus.Logger) *AnalysisService {
	return &AnalysisService{
		aggregator: aggregator,
		generator:  generator,
		gate:       gate,
		log:        baseLogger,
	}
}

// RequestAnalysis runs the full pipeline for one or two fixtures on behalf of
// a user. Quota for the whole request is authorized up front, so a free user
// without enough slots for every requested fixture is denied before any
// upstream call; slots are then consumed one at a time, only after each
// analysis succeeds, so a failed pipeline never burns a free slot.
// Two-fixture requests additionally get the combined multi-leg strategy.
func (s *AnalysisService) RequestAnalysis(ctx context.Context, userID uuid.UUID, fixtureIDs []int64) (*models.AnalysisResponse, error) {
	start := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	if len(fixtureIDs) < 1 || len(fixtureIDs) > maxFixturesPerRequest {
		return nil, fmt.Errorf("%w: expected 1 to %d fixture ids, got %d",
			models.ErrInvalidRequest, maxFixturesPerRequest, len(fixtureIDs))
	}
	if len(fixtureIDs) == maxFixturesPerRequest && fixtureIDs[0] == fixtureIDs[1] {
		return nil, fmt.Errorf("%w: duplicate fixture id %d", models.ErrInvalidRequest, fixtureIDs[0])
	}

	access, err := s.gate.Authorize(ctx, userID, len(fixtureIDs))
	if err != nil {
		return nil, err
	}

	requestLog := logger.NewPipelineLogger(s.log, "analysis_service", uuid.NewString())
	requestLog.WithFields(logrus.Fields{
		"user_id":     userID,
		"fixture_ids": fixtureIDs,
		"premium":     access.Premium,
	}).Info("Analysis request accepted")

	response := &models.AnalysisResponse{
		Premium:        access.Premium,
		RemainingQuota: access.Remaining,
	}

	for _, fixtureID := range fixtureIDs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis request canceled: %w", err)
		}

		result, err := s.analyzeFixture(ctx, fixtureID)
		if err != nil {
			return nil, err
		}

		if !access.Premium {
			remaining, err := s.gate.Consume(ctx, userID)
			if err != nil {
				// A concurrent request can steal a slot between the up-front
				// authorization and this consume. Results already billed stay
				// on the response so the user keeps what was paid for.
				var denied *models.QuotaDeniedError
				if errors.As(err, &denied) && len(response.Results) > 0 {
					response.RemainingQuota = denied.Remaining
					return response, err
				}
				return nil, err
			}
			response.RemainingQuota = remaining
		}

		response.Results = append(response.Results, result)
	}

	if len(response.Results) == maxFixturesPerRequest {
		response.CombinedStrategy = s.generator.BuildCombinedStrategy(ctx, response.Results)
	}

	return response, nil
}

// GetFixturesByDate exposes the browse listing without touching quota.
func (s *AnalysisService) GetFixturesByDate(ctx context.Context, date time.Time, league string) (*models.FixtureList, error) {
	return s.aggregator.GetFixturesByDate(ctx, date, league)
}

// analyzeFixture runs aggregation, feature extraction, value calculation and
// generation for a single fixture.
func (s *AnalysisService) analyzeFixture(ctx context.Context, fixtureID int64) (*models.AnalysisResult, error) {
	bundle, err := s.aggregator.GetFixtureBundle(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	stats := features.Extract(bundle)
	edges := value.Evaluate(bundle.Odds, stats)
	bestEdge := value.BestEdge(edges)

	result := s.generator.Generate(ctx, bundle, stats, edges, bestEdge)
	result.StaleData = bundle.Stale
	return result, nil
}
