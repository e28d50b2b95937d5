package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/pitchside/internal/models"
)

// MemoryQuotaRepository is an in-memory QuotaRepository with the same
// compare-and-swap semantics as the PostgreSQL implementation. Used in tests
// and local development without a database.
type MemoryQuotaRepository struct {
	mu     sync.Mutex
	states map[uuid.UUID]models.UserQuotaState
}

// NewMemoryQuotaRepository creates an empty in-memory quota repository
func NewMemoryQuotaRepository() *MemoryQuotaRepository {
	return &MemoryQuotaRepository{
		states: make(map[uuid.UUID]models.UserQuotaState),
	}
}

// GetByUserID retrieves the quota state for a user
func (r *MemoryQuotaRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserQuotaState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[userID]
	if !ok {
		return nil, models.ErrNotFound
	}

	copied := state
	if state.PremiumExpiresAt != nil {
		expires := *state.PremiumExpiresAt
		copied.PremiumExpiresAt = &expires
	}
	return &copied, nil
}

// Create inserts the initial quota state for a user
func (r *MemoryQuotaRepository) Create(ctx context.Context, state *models.UserQuotaState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.states[state.UserID]; ok {
		return models.ErrVersionConflict
	}
	r.states[state.UserID] = *state
	return nil
}

// Update applies compare-and-swap on Version, matching the PostgreSQL behavior
func (r *MemoryQuotaRepository) Update(ctx context.Context, state *models.UserQuotaState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.states[state.UserID]
	if !ok {
		return models.ErrNotFound
	}
	if stored.Version != state.Version {
		return models.ErrVersionConflict
	}

	state.Version++
	r.states[state.UserID] = *state
	return nil
}
