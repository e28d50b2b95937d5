package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides structured logging for pipeline events.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogAnalysisGenerated logs a completed analysis with its source path.
func (al *AnalysisLogger) LogAnalysisGenerated(fixtureID int64, source string, confidence int, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"fixture_id":  fixtureID,
		"source":      source,
		"confidence":  confidence,
		"duration_ms": duration.Milliseconds(),
	}).Info("Analysis generated")
}

// LogFallback logs an AI-to-fallback transition and its cause.
func (al *AnalysisLogger) LogFallback(fixtureID int64, reason string) {
	al.WithFields(logrus.Fields{
		"fixture_id": fixtureID,
		"reason":     reason,
	}).Warn("AI analysis unavailable, using local fallback")
}

// LogPartialData logs a tolerated sub-fetch failure.
func (al *AnalysisLogger) LogPartialData(fixtureID int64, branch string, err error) {
	al.WithFields(logrus.Fields{
		"fixture_id": fixtureID,
		"branch":     branch,
	}).WithError(err).Warn("Sub-fetch failed, continuing with partial data")
}
