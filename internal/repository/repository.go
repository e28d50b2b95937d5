// Package repository provides data access for quota state.
package repository

import (
	"fmt"

	"github.com/yourusername/pitchside/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Quota QuotaRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Quota: NewPostgresQuotaRepository(db),
	}, nil
}
