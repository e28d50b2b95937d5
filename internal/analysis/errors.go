// Package analysis generates betting analyses from extracted fixture features.
package analysis

import "errors"

var (
	// ErrAIUnavailable indicates the reasoning service is unreachable
	ErrAIUnavailable = errors.New("reasoning service unavailable")

	// ErrAITimeout indicates the reasoning service exceeded its deadline
	ErrAITimeout = errors.New("reasoning service timeout")

	// ErrAIMalformedResponse indicates the reply could not be parsed into a structured analysis
	ErrAIMalformedResponse = errors.New("malformed reasoning service response")

	// ErrAIDisabled indicates the AI path is switched off by configuration
	ErrAIDisabled = errors.New("reasoning service disabled")
)
