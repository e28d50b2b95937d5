package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pitchside/internal/config"
	"github.com/yourusername/pitchside/internal/metrics"
)

// CompletionClient produces a free-text completion for a prompt. Implementations
// must respect the context deadline and return an error on any failure; the
// generator decides whether to fall back.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AnthropicClient calls an Anthropic-compatible messages endpoint. A single
// attempt per request; retry policy lives with the caller, which prefers a
// deterministic fallback over waiting on a second round trip.
type AnthropicClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
	maxTokens  int
	logger     *logrus.Logger
}

// NewAnthropicClient creates a completion client from configuration.
func NewAnthropicClient(cfg config.AIServiceConfig, logger *logrus.Logger) *AnthropicClient {
	return &AnthropicClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		apiURL:    cfg.APIURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

type messageRequest struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	Messages  []requestMessage `json:"messages"`
}

type requestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Complete sends the prompt and returns the concatenated text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload := messageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []requestMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	timer := prometheus.NewTimer(metrics.AIRequestLatency)
	resp, err := c.httpClient.Do(req)
	timer.ObserveDuration()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrAITimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response body: %v", ErrAIUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"model":  c.model,
		}).Warn("Reasoning service returned non-OK status")
		return "", fmt.Errorf("%w: status %d", ErrAIUnavailable, resp.StatusCode)
	}

	var parsed messageResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIMalformedResponse, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrAIUnavailable, parsed.Error.Type, parsed.Error.Message)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrAIMalformedResponse)
	}
	return text, nil
}
