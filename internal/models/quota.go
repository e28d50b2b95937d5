package models

import (
	"time"

	"github.com/google/uuid"
)

// UserQuotaState tracks per-user free usage and premium standing. Mutated only
// by the quota gate; Version supports compare-and-swap updates in the store.
type UserQuotaState struct {
	UserID             uuid.UUID  `json:"user_id"`
	IsPremium          bool       `json:"is_premium"`
	PremiumExpiresAt   *time.Time `json:"premium_expires_at,omitempty"`
	FreeAnalysesUsed   int        `json:"free_analyses_used"`
	LastUsageDate      time.Time  `json:"last_usage_date"`
	Version            int64      `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// PremiumActive reports whether the premium flag is set and unexpired at now.
func (s *UserQuotaState) PremiumActive(now time.Time) bool {
	return s.IsPremium && s.PremiumExpiresAt != nil && now.Before(*s.PremiumExpiresAt)
}

// NewUserQuotaState returns the lazily-created initial state with full free quota.
func NewUserQuotaState(userID uuid.UUID, now time.Time) *UserQuotaState {
	return &UserQuotaState{
		UserID:           userID,
		FreeAnalysesUsed: 0,
		LastUsageDate:    now,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
