package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/pitchside/internal/models"
)

// QuotaRepository defines the interface for quota state access. Update uses
// compare-and-swap on Version: the write succeeds only when the stored version
// matches the one the caller read, otherwise models.ErrVersionConflict.
type QuotaRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserQuotaState, error)
	Create(ctx context.Context, state *models.UserQuotaState) error
	Update(ctx context.Context, state *models.UserQuotaState) error
}
