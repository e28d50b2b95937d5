package sportsdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pitchside/internal/metrics"
	"github.com/yourusername/pitchside/internal/models"
)

const (
	providerName = "api_football"
	dateLayout   = "2006-01-02"
)

// APIFootballClient implements Provider against the API-Football REST service
type APIFootballClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// apiEnvelope is the provider's standard response wrapper
type apiEnvelope struct {
	Errors   json.RawMessage   `json:"errors"`
	Results  int               `json:"results"`
	Response []json.RawMessage `json:"response"`
}

// apiFixture represents one fixture entry from the provider
type apiFixture struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home apiTeam `json:"home"`
		Away apiTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type apiTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// apiOddsEntry represents a bookmaker's quoted market from the provider
type apiOddsEntry struct {
	Bookmakers []struct {
		Bets []struct {
			Name   string `json:"name"`
			Values []struct {
				Value string `json:"value"`
				Odd   string `json:"odd"`
			} `json:"values"`
		} `json:"bets"`
	} `json:"bookmakers"`
}

// NewAPIFootballClient creates a new API-Football client
func NewAPIFootballClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *APIFootballClient {
	return &APIFootballClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Name returns the name of the provider
func (c *APIFootballClient) Name() string {
	return providerName
}

// GetFixture retrieves the base record for a single fixture
func (c *APIFootballClient) GetFixture(ctx context.Context, fixtureID int64) (*models.FixtureBundle, error) {
	endpoint := fmt.Sprintf("%s/fixtures?id=%d", c.baseURL, fixtureID)

	envelope, err := c.fetch(ctx, "fixture", endpoint)
	if err != nil {
		return nil, err
	}

	if len(envelope.Response) == 0 {
		return nil, NewProviderError(providerName, ErrCodeNotFound, fmt.Sprintf("fixture %d not found", fixtureID), ErrNotFound)
	}

	var fx apiFixture
	if err := json.Unmarshal(envelope.Response[0], &fx); err != nil {
		return nil, NewProviderError(providerName, ErrCodeInvalidData, "failed to parse fixture", err)
	}

	return c.convertFixture(&fx)
}

// GetHeadToHead retrieves the last matches between two teams, newest first
func (c *APIFootballClient) GetHeadToHead(ctx context.Context, teamA, teamB int64, limit int) ([]models.MatchResult, error) {
	endpoint := fmt.Sprintf("%s/fixtures/headtohead?h2h=%d-%d&last=%d", c.baseURL, teamA, teamB, limit)

	envelope, err := c.fetch(ctx, "h2h", endpoint)
	if err != nil {
		return nil, err
	}

	return c.convertMatchList(envelope.Response)
}

// GetTeamForm retrieves a team's most recent finished results, newest first
func (c *APIFootballClient) GetTeamForm(ctx context.Context, teamID int64, limit int) ([]models.MatchResult, error) {
	endpoint := fmt.Sprintf("%s/fixtures?team=%d&last=%d&status=FT", c.baseURL, teamID, limit)

	envelope, err := c.fetch(ctx, "form", endpoint)
	if err != nil {
		return nil, err
	}

	return c.convertMatchList(envelope.Response)
}

// GetOdds retrieves three-way market prices for a fixture. A fixture with no
// quoted market returns nil odds and no error; the caller treats absence as
// "no edge computable", not zero edge.
func (c *APIFootballClient) GetOdds(ctx context.Context, fixtureID int64) (*models.MatchOdds, error) {
	endpoint := fmt.Sprintf("%s/odds?fixture=%d", c.baseURL, fixtureID)

	envelope, err := c.fetch(ctx, "odds", endpoint)
	if err != nil {
		return nil, err
	}

	if len(envelope.Response) == 0 {
		return nil, nil
	}

	var entry apiOddsEntry
	if err := json.Unmarshal(envelope.Response[0], &entry); err != nil {
		return nil, NewProviderError(providerName, ErrCodeInvalidData, "failed to parse odds", err)
	}

	return extractMatchWinnerOdds(&entry), nil
}

// GetFixturesByDate retrieves all fixtures for a calendar day
func (c *APIFootballClient) GetFixturesByDate(ctx context.Context, date time.Time, league string) ([]models.FixtureSummary, error) {
	endpoint := fmt.Sprintf("%s/fixtures?date=%s", c.baseURL, date.Format(dateLayout))
	if league != "" {
		endpoint += "&league=" + url.QueryEscape(league)
	}

	envelope, err := c.fetch(ctx, "fixtures_by_date", endpoint)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.FixtureSummary, 0, len(envelope.Response))
	for _, raw := range envelope.Response {
		var fx apiFixture
		if err := json.Unmarshal(raw, &fx); err != nil {
			c.logger.WithError(err).Warn("Skipping malformed fixture entry")
			continue
		}

		kickoff, err := time.Parse(time.RFC3339, fx.Fixture.Date)
		if err != nil {
			c.logger.WithError(err).WithField("fixture_id", fx.Fixture.ID).Warn("Skipping fixture with malformed kickoff time")
			continue
		}

		summaries = append(summaries, models.FixtureSummary{
			FixtureID:   fx.Fixture.ID,
			KickoffTime: kickoff,
			League:      fx.League.Name,
			HomeTeam:    models.Team{ID: fx.Teams.Home.ID, Name: fx.Teams.Home.Name},
			AwayTeam:    models.Team{ID: fx.Teams.Away.ID, Name: fx.Teams.Away.Name},
			Status:      fx.Fixture.Status.Short,
		})
	}

	return summaries, nil
}

// fetch executes a GET against the provider and decodes the response envelope
func (c *APIFootballClient) fetch(ctx context.Context, endpointLabel, endpoint string) (*apiEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewProviderError(providerName, ErrCodeNetworkError, "failed to create request", err)
	}

	req.Header.Set("x-apisports-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpointLabel, "error").Inc()
		return nil, NewProviderError(providerName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.UpstreamRequestsTotal.WithLabelValues(endpointLabel, "auth_failed").Inc()
		return nil, NewProviderError(providerName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.UpstreamRequestsTotal.WithLabelValues(endpointLabel, "rate_limited").Inc()
		return nil, NewProviderError(providerName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode != http.StatusOK:
		metrics.UpstreamRequestsTotal.WithLabelValues(endpointLabel, "server_error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(providerName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), ErrServerError)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpointLabel, "invalid").Inc()
		return nil, NewProviderError(providerName, ErrCodeInvalidData, "failed to parse response", err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(endpointLabel, "ok").Inc()
	return &envelope, nil
}

// convertFixture maps a provider fixture to the domain bundle skeleton
func (c *APIFootballClient) convertFixture(fx *apiFixture) (*models.FixtureBundle, error) {
	kickoff, err := time.Parse(time.RFC3339, fx.Fixture.Date)
	if err != nil {
		return nil, NewProviderError(providerName, ErrCodeInvalidData, "malformed kickoff time", err)
	}

	bundle := &models.FixtureBundle{
		FixtureID:   fx.Fixture.ID,
		KickoffTime: kickoff,
		League:      fx.League.Name,
		HomeTeam:    models.Team{ID: fx.Teams.Home.ID, Name: fx.Teams.Home.Name},
		AwayTeam:    models.Team{ID: fx.Teams.Away.ID, Name: fx.Teams.Away.Name},
	}

	if fx.Goals.Home != nil {
		bundle.Goals.Home = *fx.Goals.Home
	}
	if fx.Goals.Away != nil {
		bundle.Goals.Away = *fx.Goals.Away
	}

	return bundle, nil
}

// convertMatchList maps provider fixture entries to historical match results
func (c *APIFootballClient) convertMatchList(raws []json.RawMessage) ([]models.MatchResult, error) {
	results := make([]models.MatchResult, 0, len(raws))
	for _, raw := range raws {
		var fx apiFixture
		if err := json.Unmarshal(raw, &fx); err != nil {
			c.logger.WithError(err).Warn("Skipping malformed match entry")
			continue
		}
		if fx.Goals.Home == nil || fx.Goals.Away == nil {
			// Unfinished matches carry no result
			continue
		}

		date, _ := time.Parse(time.RFC3339, fx.Fixture.Date)
		results = append(results, models.MatchResult{
			FixtureID:  fx.Fixture.ID,
			Date:       date,
			HomeTeamID: fx.Teams.Home.ID,
			AwayTeamID: fx.Teams.Away.ID,
			HomeGoals:  *fx.Goals.Home,
			AwayGoals:  *fx.Goals.Away,
		})
	}
	return results, nil
}

// extractMatchWinnerOdds pulls the first bookmaker's three-way market out of
// an odds entry. Prices arrive as decimal strings.
func extractMatchWinnerOdds(entry *apiOddsEntry) *models.MatchOdds {
	for _, bookmaker := range entry.Bookmakers {
		for _, bet := range bookmaker.Bets {
			if bet.Name != "Match Winner" {
				continue
			}

			odds := &models.MatchOdds{}
			var seen int
			for _, v := range bet.Values {
				price, err := decimal.NewFromString(v.Odd)
				if err != nil || price.LessThanOrEqual(decimal.NewFromInt(1)) {
					continue
				}
				f, _ := price.Float64()
				switch v.Value {
				case "Home", "1":
					odds.Home = f
					seen++
				case "Draw", "X":
					odds.Draw = f
					seen++
				case "Away", "2":
					odds.Away = f
					seen++
				}
			}
			if seen == 3 {
				return odds
			}
		}
	}
	return nil
}
