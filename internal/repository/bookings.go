package repository

import (
	"context"
	"database/sql"
	"errors"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/database"
	"fitgrid/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Reserve books a user onto an occurrence. The occurrence row is locked
// FOR UPDATE for the whole transaction, so concurrent attempts against
// the same class queue up and the capacity check cannot race.
func (r *BookingRepository) Reserve(ctx context.Context, occurrenceID int64, userName string) (*models.Booking, string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", apperrors.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	lockQuery := `
		SELECT id, series_id, activity_type_id, instructor_id,
			   substituted_for_id, room_id, start_time, end_time,
			   capacity, status, note, created_at, updated_at
		FROM class_occurrences
		WHERE id = $1
		FOR UPDATE`

	var occ models.ClassOccurrence
	err = scanOccurrence(tx.QueryRowContext(ctx, lockQuery, occurrenceID), &occ)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", apperrors.NotFoundf("class %d not found", occurrenceID)
	}
	if err != nil {
		return nil, "", apperrors.Internal("failed to lock occurrence", err)
	}

	countQuery := `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE user_name = $2) > 0
		FROM bookings
		WHERE occurrence_id = $1
		  AND status IN ('REQUESTED', 'CONFIRMED', 'PAID')`

	var (
		active        int64
		alreadyBooked bool
	)
	if err := tx.QueryRowContext(ctx, countQuery, occurrenceID, userName).
		Scan(&active, &alreadyBooked); err != nil {
		return nil, "", apperrors.Internal("failed to count active bookings", err)
	}

	if err := models.ValidateReservation(&occ, active, alreadyBooked); err != nil {
		return nil, "", err
	}

	booking := &models.Booking{
		OccurrenceID: occurrenceID,
		UserName:     userName,
		Status:       models.BookingRequested,
	}
	insertQuery := `
		INSERT INTO bookings (occurrence_id, user_name, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := tx.QueryRowContext(ctx, insertQuery,
		booking.OccurrenceID, booking.UserName, booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt); err != nil {
		return nil, "", apperrors.Internal("failed to insert booking", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", apperrors.Internal("failed to commit booking", err)
	}

	return booking, models.Spots(active+1, occ.Capacity), nil
}

// CancelByID hard-deletes a booking and returns the occurrence it was
// attached to.
func (r *BookingRepository) CancelByID(ctx context.Context, bookingID int64) (int64, error) {
	query := `DELETE FROM bookings WHERE id = $1 RETURNING occurrence_id`

	var occurrenceID int64
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&occurrenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.NotFoundf("booking %d not found", bookingID)
	}
	if err != nil {
		return 0, apperrors.Internal("failed to cancel booking", err)
	}
	return occurrenceID, nil
}

// CancelByOccurrenceAndUser hard-deletes the user's active booking for
// an occurrence.
func (r *BookingRepository) CancelByOccurrenceAndUser(ctx context.Context, occurrenceID int64, userName string) error {
	query := `
		DELETE FROM bookings
		WHERE occurrence_id = $1
		  AND user_name = $2
		  AND status IN ('REQUESTED', 'CONFIRMED', 'PAID')`

	res, err := r.db.ExecContext(ctx, query, occurrenceID, userName)
	if err != nil {
		return apperrors.Internal("failed to cancel booking", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("booking not found")
	}
	return nil
}

// CountActive returns the number of capacity-consuming bookings.
func (r *BookingRepository) CountActive(ctx context.Context, occurrenceID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE occurrence_id = $1
		  AND status IN ('REQUESTED', 'CONFIRMED', 'PAID')`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, occurrenceID).Scan(&count); err != nil {
		return 0, apperrors.Internal("failed to count bookings", err)
	}
	return count, nil
}

// Occupancy returns the current spots string for an occurrence.
func (r *BookingRepository) Occupancy(ctx context.Context, occurrenceID int64) (string, error) {
	query := `
		SELECT o.capacity,
			   COUNT(b.id) FILTER (WHERE b.status IN ('REQUESTED', 'CONFIRMED', 'PAID'))
		FROM class_occurrences o
		LEFT JOIN bookings b ON b.occurrence_id = o.id
		WHERE o.id = $1
		GROUP BY o.capacity`

	var (
		capacity int
		reserved int64
	)
	err := r.db.QueryRowContext(ctx, query, occurrenceID).Scan(&capacity, &reserved)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.NotFoundf("class %d not found", occurrenceID)
	}
	if err != nil {
		return "", apperrors.Internal("failed to load occupancy", err)
	}
	return models.Spots(reserved, capacity), nil
}
