// Package repository contains the PostgreSQL data access layer. All SQL
// lives here; services never touch database/sql directly.
package repository

import (
	"fitgrid/internal/database"
)

// Repository aggregates the per-entity repositories over one pool.
type Repository struct {
	Lookups     *LookupRepository
	Series      *SeriesRepository
	Occurrences *OccurrenceRepository
	Bookings    *BookingRepository
}

func New(db *database.DB) *Repository {
	return &Repository{
		Lookups:     NewLookupRepository(db),
		Series:      NewSeriesRepository(db),
		Occurrences: NewOccurrenceRepository(db),
		Bookings:    NewBookingRepository(db),
	}
}
