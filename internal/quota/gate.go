// Package quota implements the free-tier paywall gate with optimistic
// concurrency over the quota store.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pitchside/internal/config"
	"github.com/yourusername/pitchside/internal/logger"
	"github.com/yourusername/pitchside/internal/metrics"
	"github.com/yourusername/pitchside/internal/models"
	"github.com/yourusername/pitchside/internal/repository"
)

// Access is the outcome of an authorization check.
type Access struct {
	Premium   bool
	Remaining int
}

// Gate enforces the daily free limit and premium bypass. All usage counting
// goes through compare-and-swap updates, so overlapping requests can never
// push the counter past the limit.
type Gate struct {
	repo            repository.QuotaRepository
	auditLogger     *logger.AuditLogger
	location        *time.Location
	dailyLimit      int
	premiumDuration time.Duration
	retryLimit      int
	clock           func() time.Time
}

// NewGate creates a quota gate from configuration.
func NewGate(repo repository.QuotaRepository, cfg config.QuotaConfig, baseLogger *logrus.Logger) (*Gate, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota timezone %q: %w", cfg.Timezone, err)
	}

	return &Gate{
		repo:            repo,
		auditLogger:     logger.NewAuditLogger(baseLogger),
		location:        location,
		dailyLimit:      cfg.DailyFreeLimit,
		premiumDuration: time.Duration(cfg.PremiumDurationDays) * 24 * time.Hour,
		retryLimit:      cfg.ConsumeRetryLimit,
		clock:           time.Now,
	}, nil
}

// Authorize reports whether the user may run slots analyses right now. The
// whole request is checked up front so a multi-fixture request is denied
// before any work starts rather than partway through. It never consumes
// quota; pair it with Consume after each analysis succeeds.
func (g *Gate) Authorize(ctx context.Context, userID uuid.UUID, slots int) (Access, error) {
	state, err := g.loadOrCreate(ctx, userID)
	if err != nil {
		return Access{}, err
	}

	now := g.clock()
	g.normalize(state, now)

	if state.PremiumActive(now) {
		return Access{Premium: true, Remaining: g.dailyLimit - state.FreeAnalysesUsed}, nil
	}

	remaining := g.dailyLimit - state.FreeAnalysesUsed
	if remaining < slots {
		if remaining < 0 {
			remaining = 0
		}
		metrics.RecordQuotaDenial()
		g.auditLogger.LogQuotaDenial(userID.String(), state.FreeAnalysesUsed, g.dailyLimit)
		return Access{}, &models.QuotaDeniedError{Remaining: remaining, DailyLimit: g.dailyLimit}
	}

	return Access{Premium: false, Remaining: remaining}, nil
}

// Consume records one free analysis for the user. The read-check-increment is
// atomic under compare-and-swap: a version conflict means another request won
// the race, so the whole sequence is retried against fresh state, up to the
// configured retry limit. Premium users pass through without counting.
func (g *Gate) Consume(ctx context.Context, userID uuid.UUID) (int, error) {
	var lastErr error

	for attempt := 0; attempt <= g.retryLimit; attempt++ {
		state, err := g.loadOrCreate(ctx, userID)
		if err != nil {
			return 0, err
		}

		now := g.clock()
		g.normalize(state, now)

		if state.PremiumActive(now) {
			return g.dailyLimit - state.FreeAnalysesUsed, nil
		}

		if state.FreeAnalysesUsed >= g.dailyLimit {
			metrics.RecordQuotaDenial()
			g.auditLogger.LogQuotaDenial(userID.String(), state.FreeAnalysesUsed, g.dailyLimit)
			return 0, &models.QuotaDeniedError{Remaining: 0, DailyLimit: g.dailyLimit}
		}

		state.FreeAnalysesUsed++
		state.LastUsageDate = now
		state.UpdatedAt = now

		err = g.repo.Update(ctx, state)
		if err == nil {
			metrics.RecordQuotaConsumption()
			g.auditLogger.LogQuotaConsumption(userID.String(), state.FreeAnalysesUsed, g.dailyLimit, now)
			return g.dailyLimit - state.FreeAnalysesUsed, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return 0, fmt.Errorf("failed to consume quota: %w", err)
		}
		lastErr = err
	}

	return 0, fmt.Errorf("failed to consume quota after %d retries: %w", g.retryLimit, lastErr)
}

// SetPremium grants or extends premium standing. The expiry is always
// overwritten to now plus the configured duration, regardless of any
// remaining premium time.
func (g *Gate) SetPremium(ctx context.Context, userID uuid.UUID, proof string) (*models.UserQuotaState, error) {
	var lastErr error

	for attempt := 0; attempt <= g.retryLimit; attempt++ {
		state, err := g.loadOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}

		now := g.clock()
		expiresAt := now.Add(g.premiumDuration)
		state.IsPremium = true
		state.PremiumExpiresAt = &expiresAt
		state.UpdatedAt = now

		err = g.repo.Update(ctx, state)
		if err == nil {
			metrics.PremiumGrantsTotal.Inc()
			g.auditLogger.LogPremiumGrant(userID.String(), expiresAt, proof)
			return state, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to grant premium: %w", err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to grant premium after %d retries: %w", g.retryLimit, lastErr)
}

// loadOrCreate fetches the user's state, lazily creating the initial record on
// first contact. A create race is resolved by re-reading.
func (g *Gate) loadOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserQuotaState, error) {
	state, err := g.repo.GetByUserID(ctx, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load quota state: %w", err)
	}

	fresh := models.NewUserQuotaState(userID, g.clock())
	if createErr := g.repo.Create(ctx, fresh); createErr == nil {
		return fresh, nil
	}

	state, err = g.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota state after create race: %w", err)
	}
	return state, nil
}

// normalize applies the lazy transitions evaluated against now: an elapsed
// premium window drops the user to the free tier, and a calendar-day rollover
// in the configured timezone resets the free counter. Mutates state in memory
// only; persistence rides on the next compare-and-swap write.
func (g *Gate) normalize(state *models.UserQuotaState, now time.Time) {
	if state.IsPremium && !state.PremiumActive(now) {
		state.IsPremium = false
		if state.PremiumExpiresAt != nil {
			g.auditLogger.LogPremiumExpiry(state.UserID.String(), *state.PremiumExpiresAt)
		}
	}

	if !g.sameLocalDay(state.LastUsageDate, now) {
		state.FreeAnalysesUsed = 0
	}
}

func (g *Gate) sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.In(g.location).Date()
	by, bm, bd := b.In(g.location).Date()
	return ay == by && am == bm && ad == bd
}
