package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/pitchside/internal/database"
	"github.com/yourusername/pitchside/internal/models"
)

// PostgresQuotaRepository implements QuotaRepository for PostgreSQL
type PostgresQuotaRepository struct {
	db *database.DB
}

// NewPostgresQuotaRepository creates a new quota repository
func NewPostgresQuotaRepository(db *database.DB) QuotaRepository {
	return &PostgresQuotaRepository{db: db}
}

// GetByUserID retrieves the quota state for a user
func (r *PostgresQuotaRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserQuotaState, error) {
	query := `
		SELECT user_id, is_premium, premium_expires_at, free_analyses_used,
		       last_usage_date, version, created_at, updated_at
		FROM user_quotas WHERE user_id = $1
	`

	state := &models.UserQuotaState{}
	err := r.db.GetPool().QueryRow(ctx, query, userID).Scan(
		&state.UserID, &state.IsPremium, &state.PremiumExpiresAt, &state.FreeAnalysesUsed,
		&state.LastUsageDate, &state.Version, &state.CreatedAt, &state.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota state: %w", err)
	}

	return state, nil
}

// Create inserts the initial quota state for a user
func (r *PostgresQuotaRepository) Create(ctx context.Context, state *models.UserQuotaState) error {
	query := `
		INSERT INTO user_quotas (user_id, is_premium, premium_expires_at, free_analyses_used,
		                         last_usage_date, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		state.UserID, state.IsPremium, state.PremiumExpiresAt, state.FreeAnalysesUsed,
		state.LastUsageDate, state.Version, state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quota state: %w", err)
	}

	return nil
}

// Update writes the state only if the stored version still matches the version
// the caller read. On success the stored version is bumped and state.Version
// is updated to match.
func (r *PostgresQuotaRepository) Update(ctx context.Context, state *models.UserQuotaState) error {
	query := `
		UPDATE user_quotas
		SET is_premium = $2, premium_expires_at = $3, free_analyses_used = $4,
		    last_usage_date = $5, version = version + 1, updated_at = $6
		WHERE user_id = $1 AND version = $7
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		state.UserID, state.IsPremium, state.PremiumExpiresAt, state.FreeAnalysesUsed,
		state.LastUsageDate, state.UpdatedAt, state.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update quota state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrVersionConflict
	}

	state.Version++
	return nil
}
