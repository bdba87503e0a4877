package service

import (
	"context"
	"strings"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/models"
)

// CreateBooking reserves a spot on a class. Overbooking protection
// lives in the store's Reserve, which locks the occurrence row for the
// whole check-then-insert sequence. User names are stored trimmed so
// the duplicate rule cannot be sidestepped with whitespace.
func (s *Service) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingResponse, error) {
	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		return nil, apperrors.InvalidInput("user_name is required")
	}

	booking, spots, err := s.bookings.Reserve(ctx, req.ClassID, userName)
	if err != nil {
		return nil, err
	}

	s.publish(models.SubjectBookingCreated, models.BookingEvent{
		BookingID:    booking.ID,
		OccurrenceID: booking.OccurrenceID,
		UserName:     booking.UserName,
		Timestamp:    s.now(),
	})
	s.invalidateSchedule(ctx)

	return &models.BookingResponse{
		ID:     booking.ID,
		Status: string(booking.Status),
		Spots:  spots,
	}, nil
}

// CancelBooking removes a booking by id or by (class, user). The row is
// hard-deleted; the freed spot is reported back.
func (s *Service) CancelBooking(ctx context.Context, req *models.CancelBookingRequest) (*models.CancelBookingResponse, error) {
	var (
		occurrenceID int64
		bookingID    int64
	)
	userName := strings.TrimSpace(req.UserName)

	switch {
	case req.BookingID != nil:
		id, err := s.bookings.CancelByID(ctx, *req.BookingID)
		if err != nil {
			return nil, err
		}
		occurrenceID = id
		bookingID = *req.BookingID

	case req.ClassID != nil && userName != "":
		if err := s.bookings.CancelByOccurrenceAndUser(ctx, *req.ClassID, userName); err != nil {
			return nil, err
		}
		occurrenceID = *req.ClassID

	default:
		return nil, apperrors.InvalidInput("either booking_id or class_id with user_name is required")
	}

	spots, err := s.bookings.Occupancy(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}

	s.publish(models.SubjectBookingCancelled, models.BookingEvent{
		BookingID:    bookingID,
		OccurrenceID: occurrenceID,
		UserName:     userName,
		Timestamp:    s.now(),
	})
	s.invalidateSchedule(ctx)

	return &models.CancelBookingResponse{Spots: spots}, nil
}
