package models

import (
	"fmt"

	"fitgrid/internal/apperrors"
)

// AllowedTransition reports whether a class occurrence may move from
// current to target. Same-state transitions are allowed as no-ops;
// CANCELLED and FINISHED are terminal.
func AllowedTransition(current, target ClassStatus) bool {
	if current == target {
		return true
	}
	switch current {
	case StatusPlanned:
		return target == StatusOpen || target == StatusCancelled
	case StatusOpen:
		return target == StatusFinished || target == StatusCancelled
	}
	return false
}

// ValidateReservation checks whether a new booking may be placed on an
// occurrence given the current count of active bookings. Callers must hold
// the occurrence row lock so the count cannot move underneath them.
func ValidateReservation(occ *ClassOccurrence, activeCount int64, alreadyBooked bool) error {
	if occ.Status == StatusCancelled {
		return apperrors.Conflict("class is cancelled")
	}
	if activeCount >= int64(occ.Capacity) {
		return apperrors.Conflict("class is fully booked")
	}
	if alreadyBooked {
		return apperrors.Conflict("user already has an active booking for this class")
	}
	return nil
}

// Spots renders the occupancy string shown to clients, e.g. "7/20".
func Spots(reserved int64, capacity int) string {
	return fmt.Sprintf("%d/%d", reserved, capacity)
}
