// Package sportsdata provides the client for the external sports-data provider.
package sportsdata

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/pitchside/internal/models"
)

// Provider defines the interface for fetching fixture data from the
// external sports-data service. All calls may fail with network errors or
// non-2xx responses; callers decide which failures are fatal.
type Provider interface {
	// GetFixture retrieves the base record for a single fixture
	GetFixture(ctx context.Context, fixtureID int64) (*models.FixtureBundle, error)

	// GetHeadToHead retrieves the last matches between two teams
	GetHeadToHead(ctx context.Context, teamA, teamB int64, limit int) ([]models.MatchResult, error)

	// GetTeamForm retrieves a team's most recent results, newest first
	GetTeamForm(ctx context.Context, teamID int64, limit int) ([]models.MatchResult, error)

	// GetOdds retrieves three-way market prices for a fixture, nil when unquoted
	GetOdds(ctx context.Context, fixtureID int64) (*models.MatchOdds, error)

	// GetFixturesByDate retrieves all fixtures for a calendar day, optionally filtered by league
	GetFixturesByDate(ctx context.Context, date time.Time, league string) ([]models.FixtureSummary, error)

	// Name returns the name of the provider
	Name() string
}

// ProviderError represents errors from provider operations
type ProviderError struct {
	Provider string // Provider name
	Code     string // Error code (e.g., "rate_limit_exceeded")
	Message  string // Error message
	Err      error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("fixture data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}
