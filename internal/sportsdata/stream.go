package sportsdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pitchside/internal/metrics"
	"github.com/yourusername/pitchside/internal/models"
)

// OddsUpdateHandler is called for each odds update received from the stream
type OddsUpdateHandler func(fixtureID int64, odds models.MatchOdds)

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// OddsStreamClient subscribes to the provider's live odds push channel and
// feeds updates into the odds cache between REST refreshes.
type OddsStreamClient struct {
	streamURL       string
	apiKey          string
	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	handler         OddsUpdateHandler
	reconnectConfig ReconnectConfig
	subscriptions   []int64
	logger          *logrus.Logger
}

// streamMessage is one frame from the odds stream
type streamMessage struct {
	Op        string  `json:"op"`
	FixtureID int64   `json:"fixture_id,omitempty"`
	Home      float64 `json:"home,omitempty"`
	Draw      float64 `json:"draw,omitempty"`
	Away      float64 `json:"away,omitempty"`
	Heartbeat bool    `json:"heartbeat,omitempty"`
}

// subscribeMessage requests odds pushes for a set of fixtures
type subscribeMessage struct {
	Op         string  `json:"op"`
	APIKey     string  `json:"api_key"`
	FixtureIDs []int64 `json:"fixture_ids"`
}

// NewOddsStreamClient creates a new odds stream client
func NewOddsStreamClient(streamURL, apiKey string, handler OddsUpdateHandler, logger *logrus.Logger) *OddsStreamClient {
	return &OddsStreamClient{
		streamURL:       streamURL,
		apiKey:          apiKey,
		handler:         handler,
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// Subscribe registers fixtures for live odds pushes. Already-registered ids
// are skipped, so repeated prefetch cycles do not grow the subscription list.
// Takes effect on the next (re)connect when already running.
func (c *OddsStreamClient) Subscribe(fixtureIDs []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[int64]struct{}, len(c.subscriptions))
	for _, id := range c.subscriptions {
		seen[id] = struct{}{}
	}
	for _, id := range fixtureIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		c.subscriptions = append(c.subscriptions, id)
	}
}

// IsConnected reports the current connection state
func (c *OddsStreamClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// Run connects and consumes the stream until the context is cancelled,
// reconnecting with backoff on failure.
func (c *OddsStreamClient) Run(ctx context.Context) error {
	backoff := c.reconnectConfig.InitialBackoff
	retries := 0

	for {
		if err := c.connectAndConsume(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			retries++
			if retries > c.reconnectConfig.MaxRetries {
				return fmt.Errorf("odds stream gave up after %d reconnect attempts: %w", retries-1, err)
			}

			c.logger.WithError(err).WithField("backoff", backoff).Warn("Odds stream disconnected, reconnecting")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * c.reconnectConfig.BackoffMultiplier)
			if backoff > c.reconnectConfig.MaxBackoff {
				backoff = c.reconnectConfig.MaxBackoff
			}
			continue
		}
		return nil
	}
}

// connectAndConsume dials the stream, subscribes, and processes frames until error
func (c *OddsStreamClient) connectAndConsume(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial odds stream: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.isConnected = true
	subs := make([]int64, len(c.subscriptions))
	copy(subs, c.subscriptions)
	c.mu.Unlock()
	metrics.OddsStreamConnected.Set(1)

	defer func() {
		c.mu.Lock()
		c.isConnected = false
		c.conn = nil
		c.mu.Unlock()
		metrics.OddsStreamConnected.Set(0)
		conn.Close()
	}()

	if err := conn.WriteJSON(subscribeMessage{Op: "subscribe", APIKey: c.apiKey, FixtureIDs: subs}); err != nil {
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	// Close the connection when the context is cancelled to unblock the read loop
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("odds stream read failed: %w", err)
		}

		var msg streamMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.logger.WithError(err).Warn("Skipping malformed stream frame")
			continue
		}

		if msg.Heartbeat || msg.Op != "odds" {
			continue
		}
		if msg.FixtureID == 0 || msg.Home <= 1 || msg.Draw <= 1 || msg.Away <= 1 {
			continue
		}

		metrics.OddsStreamUpdatesTotal.Inc()
		if c.handler != nil {
			c.handler(msg.FixtureID, models.MatchOdds{Home: msg.Home, Draw: msg.Draw, Away: msg.Away})
		}
	}
}
