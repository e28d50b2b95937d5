// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for quota and premium
// state changes.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogQuotaConsumption logs a successful free-analysis consumption.
func (al *AuditLogger) LogQuotaConsumption(userID string, usedToday, dailyLimit int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"user_id":     userID,
		"used_today":  usedToday,
		"daily_limit": dailyLimit,
		"timestamp":   timestamp.Unix(),
	}).Info("Free analysis consumed")
}

// LogQuotaDenial logs a denied authorization attempt.
func (al *AuditLogger) LogQuotaDenial(userID string, usedToday, dailyLimit int) {
	al.WithFields(logrus.Fields{
		"user_id":     userID,
		"used_today":  usedToday,
		"daily_limit": dailyLimit,
	}).Warn("Analysis request denied: quota exhausted")
}

// LogPremiumGrant logs a premium grant with its expiry.
func (al *AuditLogger) LogPremiumGrant(userID string, expiresAt time.Time, proof string) {
	al.WithFields(logrus.Fields{
		"user_id":    userID,
		"expires_at": expiresAt.Unix(),
		"proof":      proof,
	}).Info("Premium granted")
}

// LogPremiumExpiry logs a lazy premium-to-free transition.
func (al *AuditLogger) LogPremiumExpiry(userID string, expiredAt time.Time) {
	al.WithFields(logrus.Fields{
		"user_id":    userID,
		"expired_at": expiredAt.Unix(),
	}).Info("Premium expired, user reverted to free quota")
}
