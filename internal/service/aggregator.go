// Package service orchestrates the analysis pipeline over the sports-data
// provider, caches, feature extraction, value calculation and quota gate.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/yourusername/pitchside/internal/cache"
	"github.com/yourusername/pitchside/internal/config"
	"github.com/yourusername/pitchside/internal/logger"
	"github.com/yourusername/pitchside/internal/metrics"
	"github.com/yourusername/pitchside/internal/models"
	"github.com/yourusername/pitchside/internal/sportsdata"
)

// Caches groups the per-kind TTL stores used in front of the provider.
type Caches struct {
	Fixtures     *cache.Store
	FixtureLists *cache.Store
	Form         *cache.Store
	H2H          *cache.Store
	Odds         *cache.Store
}

// NewCaches creates the cache set from configuration.
func NewCaches(cfg config.CacheConfig) *Caches {
	return &Caches{
		Fixtures:     cache.NewStore("fixtures", time.Duration(cfg.FixtureTTLSeconds)*time.Second),
		FixtureLists: cache.NewStore("fixture_lists", time.Duration(cfg.FixtureListTTLSeconds)*time.Second),
		Form:         cache.NewStore("form", time.Duration(cfg.FormTTLSeconds)*time.Second),
		H2H:          cache.NewStore("h2h", time.Duration(cfg.H2HTTLSeconds)*time.Second),
		Odds:         cache.NewStore("odds", time.Duration(cfg.OddsTTLSeconds)*time.Second),
	}
}

// HitRatios reports per-cache hit ratios for readiness introspection.
func (c *Caches) HitRatios() map[string]float64 {
	out := make(map[string]float64, 5)
	for name, store := range map[string]*cache.Store{
		"fixtures":      c.Fixtures,
		"fixture_lists": c.FixtureLists,
		"form":          c.Form,
		"h2h":           c.H2H,
		"odds":          c.Odds,
	} {
		_, _, ratio := store.Stats()
		out[name] = ratio
	}
	return out
}

// Aggregator assembles complete fixture bundles. The base fixture record is
// mandatory; the four enrichment branches run concurrently and fail soft,
// marking the bundle partial instead of failing the request.
type Aggregator struct {
	provider       sportsdata.Provider
	caches         *Caches
	analysisLogger *logger.AnalysisLogger
	log            *logrus.Logger
	formLimit      int
	h2hLimit       int
}

// NewAggregator creates a fixture aggregator.
func NewAggregator(provider sportsdata.Provider, caches *Caches, cfg config.SportsAPIConfig, baseLogger *logrus.Logger) *Aggregator {
	return &Aggregator{
		provider:       provider,
		caches:         caches,
		analysisLogger: logger.NewAnalysisLogger(baseLogger),
		log:            baseLogger,
		formLimit:      cfg.FormMatchLimit,
		h2hLimit:       cfg.H2HMatchLimit,
	}
}

// GetFixtureBundle fetches the base fixture and enriches it with head-to-head,
// both teams' recent form, and current odds. Enrichment branches that fail
// leave their slot empty and set PartialData; only a missing base fixture
// aborts the whole call.
func (a *Aggregator) GetFixtureBundle(ctx context.Context, fixtureID int64) (*models.FixtureBundle, error) {
	start := time.Now()
	defer func() {
		metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	}()

	base, err := a.fetchBaseFixture(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	// Work on a copy so the cached base record stays pristine.
	bundle := *base

	var (
		h2h      []models.MatchResult
		homeForm []models.MatchResult
		awayForm []models.MatchResult
		odds     *models.MatchOdds
		failures [4]bool
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		h2h, failures[0] = a.fetchH2H(ctx, bundle.FixtureID, bundle.HomeTeam.ID, bundle.AwayTeam.ID)
	})
	wg.Go(func() {
		homeForm, failures[1] = a.fetchForm(ctx, bundle.FixtureID, bundle.HomeTeam.ID, "home_form")
	})
	wg.Go(func() {
		awayForm, failures[2] = a.fetchForm(ctx, bundle.FixtureID, bundle.AwayTeam.ID, "away_form")
	})
	wg.Go(func() {
		odds, failures[3] = a.fetchOdds(ctx, bundle.FixtureID)
	})
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fixture aggregation canceled: %w", err)
	}

	bundle.H2HMatches = h2h
	bundle.HomeFormMatches = homeForm
	bundle.AwayFormMatches = awayForm
	bundle.Odds = odds
	for _, failed := range failures {
		if failed {
			bundle.PartialData = true
			break
		}
	}

	return &bundle, nil
}

// GetFixturesByDate lists fixtures for a calendar date, optionally filtered by
// league. A provider failure falls back to an expired cache entry when one
// exists, marked stale.
func (a *Aggregator) GetFixturesByDate(ctx context.Context, date time.Time, league string) (*models.FixtureList, error) {
	key := fmt.Sprintf("fixtures:%s:%s", date.Format("2006-01-02"), league)

	if cached, ok := a.caches.FixtureLists.Get(key); ok {
		list := cached.(models.FixtureList)
		return &list, nil
	}

	summaries, err := a.provider.GetFixturesByDate(ctx, date, league)
	if err == nil {
		list := models.FixtureList{Date: date, League: league, Fixtures: summaries}
		a.caches.FixtureLists.Set(key, list)
		return &list, nil
	}

	if staleValue, storedAt, ok := a.caches.FixtureLists.GetStale(key); ok {
		metrics.StaleCacheServesTotal.Inc()
		a.log.WithFields(logrus.Fields{
			"key":       key,
			"stored_at": storedAt,
		}).WithError(err).Warn("Provider unavailable, serving stale fixture list")
		list := staleValue.(models.FixtureList)
		list.Stale = true
		return &list, nil
	}

	return nil, fmt.Errorf("failed to list fixtures: %w", err)
}

// HandleOddsUpdate feeds a live odds push into the odds cache so subsequent
// bundles pick it up without an upstream round trip.
func (a *Aggregator) HandleOddsUpdate(fixtureID int64, odds models.MatchOdds) {
	a.caches.Odds.Set(oddsKey(fixtureID), &odds)
}

func (a *Aggregator) fetchBaseFixture(ctx context.Context, fixtureID int64) (*models.FixtureBundle, error) {
	key := fmt.Sprintf("fixture:%d", fixtureID)

	if cached, ok := a.caches.Fixtures.Get(key); ok {
		return cached.(*models.FixtureBundle), nil
	}

	base, err := a.provider.GetFixture(ctx, fixtureID)
	if err == nil {
		a.caches.Fixtures.Set(key, base)
		return base, nil
	}

	if staleValue, storedAt, ok := a.caches.Fixtures.GetStale(key); ok {
		metrics.StaleCacheServesTotal.Inc()
		a.log.WithFields(logrus.Fields{
			"fixture_id": fixtureID,
			"stored_at":  storedAt,
		}).WithError(err).Warn("Provider unavailable, serving stale fixture")
		// Flag a copy so the cached record stays unmarked for later reads.
		stale := *staleValue.(*models.FixtureBundle)
		stale.Stale = true
		return &stale, nil
	}

	if errors.Is(err, sportsdata.ErrNotFound) {
		return nil, fmt.Errorf("%w: fixture %d", models.ErrFixtureNotFound, fixtureID)
	}
	return nil, fmt.Errorf("%w: fixture %d: %v", models.ErrUpstreamUnavailable, fixtureID, err)
}

func (a *Aggregator) fetchH2H(ctx context.Context, fixtureID, homeID, awayID int64) ([]models.MatchResult, bool) {
	key := fmt.Sprintf("h2h:%d:%d", homeID, awayID)

	if cached, ok := a.caches.H2H.Get(key); ok {
		return cached.([]models.MatchResult), false
	}

	matches, err := a.provider.GetHeadToHead(ctx, homeID, awayID, a.h2hLimit)
	if err != nil {
		return a.matchListFallback(key, fixtureID, "h2h", err, a.caches.H2H)
	}

	a.caches.H2H.Set(key, matches)
	return matches, false
}

func (a *Aggregator) fetchForm(ctx context.Context, fixtureID, teamID int64, branch string) ([]models.MatchResult, bool) {
	key := fmt.Sprintf("form:%d", teamID)

	if cached, ok := a.caches.Form.Get(key); ok {
		return cached.([]models.MatchResult), false
	}

	matches, err := a.provider.GetTeamForm(ctx, teamID, a.formLimit)
	if err != nil {
		return a.matchListFallback(key, fixtureID, branch, err, a.caches.Form)
	}

	a.caches.Form.Set(key, matches)
	return matches, false
}

func (a *Aggregator) fetchOdds(ctx context.Context, fixtureID int64) (*models.MatchOdds, bool) {
	key := oddsKey(fixtureID)

	if cached, ok := a.caches.Odds.Get(key); ok {
		return cached.(*models.MatchOdds), false
	}

	odds, err := a.provider.GetOdds(ctx, fixtureID)
	if err != nil {
		if staleValue, _, ok := a.caches.Odds.GetStale(key); ok {
			metrics.StaleCacheServesTotal.Inc()
			return staleValue.(*models.MatchOdds), false
		}
		metrics.SubFetchFailuresTotal.WithLabelValues("odds").Inc()
		a.analysisLogger.LogPartialData(fixtureID, "odds", err)
		return nil, true
	}

	a.caches.Odds.Set(key, odds)
	return odds, false
}

// matchListFallback resolves a failed match-list branch: an expired cache
// entry beats dropping the data, otherwise the branch reports soft failure.
func (a *Aggregator) matchListFallback(key string, fixtureID int64, branch string, err error, store *cache.Store) ([]models.MatchResult, bool) {
	if staleValue, _, ok := store.GetStale(key); ok {
		metrics.StaleCacheServesTotal.Inc()
		return staleValue.([]models.MatchResult), false
	}
	metrics.SubFetchFailuresTotal.WithLabelValues(branch).Inc()
	a.analysisLogger.LogPartialData(fixtureID, branch, err)
	return nil, true
}

func oddsKey(fixtureID int64) string {
	return fmt.Sprintf("odds:%d", fixtureID)
}
