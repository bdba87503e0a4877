package service

import (
	"context"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/models"
	"fitgrid/internal/recurrence"
)

// checkConflicts verifies that [start, end) is free for the room and the
// instructor, excluding the occurrence itself during edits. Advisory:
// nothing blocks a conflicting row at commit time.
func (s *Service) checkConflicts(ctx context.Context, roomID, instructorID int64, occ *models.ClassOccurrence, excludeID int64) error {
	roomClashes, err := s.occurrences.CountOverlappingInRoom(ctx, roomID, occ.StartTime, occ.EndTime, excludeID)
	if err != nil {
		return err
	}
	if roomClashes > 0 {
		return apperrors.Conflict("room is already booked for this time")
	}

	insClashes, err := s.occurrences.CountOverlappingForInstructor(ctx, instructorID, occ.StartTime, occ.EndTime, excludeID)
	if err != nil {
		return err
	}
	if insClashes > 0 {
		return apperrors.Conflict("instructor already has a class at this time")
	}
	return nil
}

func (s *Service) CreateClass(ctx context.Context, req *models.CreateOccurrenceRequest) (*models.ClassOccurrence, error) {
	duration, err := normalizeDuration(req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	start, err := s.parseLocalDateTime(req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}

	if _, err := s.lookups.GetActivityType(ctx, req.ActivityTypeID); err != nil {
		return nil, err
	}
	if _, err := s.lookups.GetInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}
	room, err := s.lookups.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity <= 0 || capacity > room.Capacity {
		capacity = room.Capacity
	}

	occ := &models.ClassOccurrence{
		ActivityTypeID: req.ActivityTypeID,
		InstructorID:   req.InstructorID,
		RoomID:         req.RoomID,
		StartTime:      start,
		EndTime:        recurrence.EndOf(start, duration),
		Capacity:       capacity,
		Status:         models.StatusPlanned,
		Note:           optionalString(req.Note),
	}

	if err := s.checkConflicts(ctx, occ.RoomID, occ.InstructorID, occ, 0); err != nil {
		return nil, err
	}
	if err := s.occurrences.Create(ctx, occ); err != nil {
		return nil, err
	}

	s.indexClass(ctx, occ.ID)
	s.invalidateSchedule(ctx)
	return occ, nil
}

func (s *Service) GetClass(ctx context.Context, id int64) (*models.ClassOccurrence, error) {
	return s.occurrences.GetByID(ctx, id)
}

func (s *Service) ListClasses(ctx context.Context, f models.OccurrenceFilter) ([]models.ClassOccurrence, error) {
	return s.occurrences.List(ctx, f)
}

func (s *Service) UpdateClass(ctx context.Context, id int64, req *models.UpdateOccurrenceRequest) (*models.ClassOccurrence, error) {
	occ, err := s.occurrences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	duration, err := normalizeDuration(req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	start, err := s.parseLocalDateTime(req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}

	if _, err := s.lookups.GetActivityType(ctx, req.ActivityTypeID); err != nil {
		return nil, err
	}
	room, err := s.lookups.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity <= 0 || capacity > room.Capacity {
		capacity = room.Capacity
	}

	occ.ActivityTypeID = req.ActivityTypeID
	occ.RoomID = req.RoomID
	occ.StartTime = start
	occ.EndTime = recurrence.EndOf(start, duration)
	occ.Capacity = capacity
	occ.Note = optionalString(req.Note)

	if err := s.checkConflicts(ctx, occ.RoomID, occ.InstructorID, occ, occ.ID); err != nil {
		return nil, err
	}
	if err := s.occurrences.Update(ctx, occ); err != nil {
		return nil, err
	}

	s.indexClass(ctx, occ.ID)
	s.invalidateSchedule(ctx)
	return occ, nil
}

func (s *Service) DeleteClass(ctx context.Context, id int64) error {
	if _, err := s.occurrences.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.bookings.CountActive(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperrors.Conflict("class has active bookings")
	}

	if err := s.occurrences.Delete(ctx, id); err != nil {
		return err
	}
	s.removeClassFromIndex(ctx, id)
	s.invalidateSchedule(ctx)
	return nil
}

// ChangeClassStatus moves an occurrence through its lifecycle. Invalid
// transitions are rejected without touching state; same-state requests
// are accepted as no-ops.
func (s *Service) ChangeClassStatus(ctx context.Context, id int64, statusStr string) (*models.ClassOccurrence, error) {
	status := models.ClassStatus(statusStr)
	if !status.Valid() {
		return nil, apperrors.InvalidInput("unknown class status")
	}

	occ, err := s.occurrences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.AllowedTransition(occ.Status, status) {
		return nil, apperrors.Conflict("invalid status transition")
	}
	if occ.Status == status {
		return occ, nil
	}

	if err := s.occurrences.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	occ.Status = status

	s.indexClass(ctx, id)
	s.invalidateSchedule(ctx)
	return occ, nil
}

// ReassignInstructor substitutes the instructor of one occurrence. The
// first reassignment records the displaced instructor; selecting the
// recorded original again clears the substitution.
func (s *Service) ReassignInstructor(ctx context.Context, id, instructorID int64) (*models.ClassOccurrence, error) {
	occ, err := s.occurrences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if occ.InstructorID == instructorID {
		return occ, nil
	}

	instructor, err := s.lookups.GetInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if !instructor.Active {
		return nil, apperrors.InvalidInput("instructor is not active")
	}

	if err := s.checkConflictForInstructor(ctx, instructorID, occ); err != nil {
		return nil, err
	}

	var substitutedFor *int64
	switch {
	case occ.SubstitutedForID == nil:
		original := occ.InstructorID
		substitutedFor = &original
	case *occ.SubstitutedForID == instructorID:
		substitutedFor = nil
	default:
		substitutedFor = occ.SubstitutedForID
	}

	if err := s.occurrences.UpdateInstructor(ctx, id, instructorID, substitutedFor); err != nil {
		return nil, err
	}
	occ.InstructorID = instructorID
	occ.SubstitutedForID = substitutedFor

	s.indexClass(ctx, id)
	s.invalidateSchedule(ctx)
	return occ, nil
}

func (s *Service) checkConflictForInstructor(ctx context.Context, instructorID int64, occ *models.ClassOccurrence) error {
	clashes, err := s.occurrences.CountOverlappingForInstructor(ctx, instructorID, occ.StartTime, occ.EndTime, occ.ID)
	if err != nil {
		return err
	}
	if clashes > 0 {
		return apperrors.Conflict("instructor already has a class at this time")
	}
	return nil
}
