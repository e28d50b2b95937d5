package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrFixtureNotFound     = errors.New("fixture not found")
	ErrUpstreamUnavailable = errors.New("sports data provider unavailable")
	ErrInvalidRequest      = errors.New("invalid request shape")
	ErrQuotaExceeded       = errors.New("daily analysis quota exceeded")
	ErrNotFound            = errors.New("record not found")
	ErrVersionConflict     = errors.New("concurrent quota update conflict")
)

// QuotaDeniedError carries remaining-quota metadata alongside the denial so
// callers can surface it without a second store read.
type QuotaDeniedError struct {
	Remaining  int
	DailyLimit int
}

func (e *QuotaDeniedError) Error() string {
	return fmt.Sprintf("%v: %d of %d free analyses remaining", ErrQuotaExceeded, e.Remaining, e.DailyLimit)
}

func (e *QuotaDeniedError) Unwrap() error {
	return ErrQuotaExceeded
}
