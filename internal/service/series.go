package service

import (
	"context"
	"time"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/logger"
	"fitgrid/internal/models"
	"fitgrid/internal/recurrence"
)

const (
	defaultDurationMinutes = 60
	maxDurationMinutes     = 10000
)

func (s *Service) parseLocalDateTime(dateStr, timeStr string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, s.loc)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid date, expected YYYY-MM-DD")
	}
	clock, err := time.Parse("15:04", timeStr)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid time, expected HH:MM")
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, s.loc), nil
}

// untilEndOfDay normalizes a series end date to 23:59 local, so classes
// on the final day still generate.
func (s *Service) untilEndOfDay(dateStr string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, s.loc)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid until date, expected YYYY-MM-DD")
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 0, 0, s.loc), nil
}

func normalizeDuration(minutes int) (int, error) {
	if minutes <= 0 {
		return defaultDurationMinutes, nil
	}
	if minutes > maxDurationMinutes {
		return 0, apperrors.InvalidInput("duration exceeds the allowed maximum")
	}
	return minutes, nil
}

func optionalString(note string) *string {
	if note == "" {
		return nil
	}
	return &note
}

// seriesFromRequest validates references and normalizes a series
// payload into a persistable entity.
func (s *Service) seriesFromRequest(ctx context.Context, req *models.CreateSeriesRequest) (*models.ClassSeries, error) {
	pattern := models.RecurrencePattern(req.Pattern)
	if !pattern.Valid() {
		return nil, apperrors.InvalidInput("unknown recurrence pattern")
	}

	duration, err := normalizeDuration(req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	start, err := s.parseLocalDateTime(req.StartDate, req.StartTime)
	if err != nil {
		return nil, err
	}
	until, err := s.untilEndOfDay(req.UntilDate)
	if err != nil {
		return nil, err
	}
	if until.Before(start) {
		return nil, apperrors.InvalidInput("series end date is before its start")
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

	return &models.ClassSeries{
		ActivityTypeID:  req.ActivityTypeID,
		InstructorID:    req.InstructorID,
		RoomID:          req.RoomID,
		StartTime:       start,
		DurationMinutes: duration,
		Pattern:         pattern,
		RecurrenceUntil: until,
		Capacity:        capacity,
		Note:            optionalString(req.Note),
		Active:          true,
	}, nil
}

func (s *Service) CreateSeries(ctx context.Context, req *models.CreateSeriesRequest) (*models.ClassSeries, error) {
	series, err := s.seriesFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.series.Create(ctx, series); err != nil {
		return nil, err
	}
	if _, err := s.generate(ctx, series); err != nil {
		return nil, err
	}
	s.publish(models.SubjectSeriesUpdated, models.SeriesUpdatedEvent{
		SeriesID: series.ID, Action: "created", Timestamp: s.now(),
	})
	return series, nil
}

func (s *Service) GetSeries(ctx context.Context, id int64) (*models.ClassSeries, error) {
	return s.series.GetByID(ctx, id)
}

func (s *Service) ListSeries(ctx context.Context) ([]models.ClassSeries, error) {
	return s.series.List(ctx)
}

// Generate expands a series into occurrences up to the rolling horizon.
// Safe to repeat: slots that already exist are skipped.
func (s *Service) Generate(ctx context.Context, seriesID int64) (*models.GenerationResult, error) {
	series, err := s.series.GetByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, series)
}

func (s *Service) generate(ctx context.Context, series *models.ClassSeries) (*models.GenerationResult, error) {
	result := &models.GenerationResult{SeriesID: series.ID}
	if !series.Active {
		return result, nil
	}

	horizon := recurrence.Horizon(s.now(), series.RecurrenceUntil, s.horizonDays, s.loc)

	cursor := series.StartTime.In(s.loc)
	for !cursor.After(horizon) {
		exists, err := s.occurrences.ExistsBySeriesAndStart(ctx, series.ID, cursor)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
		} else {
			occ := &models.ClassOccurrence{
				SeriesID:       &series.ID,
				ActivityTypeID: series.ActivityTypeID,
				InstructorID:   series.InstructorID,
				RoomID:         series.RoomID,
				StartTime:      cursor,
				EndTime:        recurrence.EndOf(cursor, series.DurationMinutes),
				Capacity:       series.Capacity,
				Status:         models.StatusPlanned,
				Note:           series.Note,
			}
			if err := s.occurrences.Create(ctx, occ); err != nil {
				return result, err
			}
			result.Created++
			s.indexClass(ctx, occ.ID)
		}

		next := recurrence.Step(cursor, series.Pattern, s.loc)
		if !next.After(cursor) {
			break
		}
		cursor = next
	}

	if result.Created > 0 {
		s.publish(models.SubjectOccurrencesGenerated, models.OccurrencesGeneratedEvent{
			SeriesID: series.ID, Created: result.Created, Timestamp: s.now(),
		})
		s.invalidateSchedule(ctx)
	}
	return result, nil
}

// UpdateSeries persists new series fields and reconciles the already
// generated future occurrences with them.
func (s *Service) UpdateSeries(ctx context.Context, id int64, req *models.UpdateSeriesRequest) (*models.ClassSeries, *models.ReconcileResult, error) {
	old, err := s.series.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.seriesFromRequest(ctx, (*models.CreateSeriesRequest)(req))
	if err != nil {
		return nil, nil, err
	}
	updated.ID = id
	updated.Active = old.Active
	updated.CreatedAt = old.CreatedAt
	if err := s.series.Update(ctx, updated); err != nil {
		return nil, nil, err
	}

	result := &models.ReconcileResult{}
	now := s.now()

	if updated.Pattern != old.Pattern {
		// the old future timestamps are meaningless under a new step
		// function; drop them and regenerate
		stale, err := s.occurrences.ListFutureLiveBySeries(ctx, id, now)
		if err != nil {
			return nil, nil, err
		}
		removed, err := s.occurrences.DeleteFutureLiveBySeries(ctx, id, now)
		if err != nil {
			return nil, nil, err
		}
		result.Removed = int(removed)
		for _, occ := range stale {
			s.removeClassFromIndex(ctx, occ.ID)
		}
	} else {
		occs, err := s.occurrences.ListFutureLiveBySeries(ctx, id, now)
		if err != nil {
			return nil, nil, err
		}

		remapped := make([]models.ClassOccurrence, 0, len(occs))
		for _, occ := range occs {
			index := recurrence.IndexBetween(old.Pattern, old.StartTime, occ.StartTime, s.loc)
			start := recurrence.ApplyIndex(updated.Pattern, updated.StartTime, index, s.loc)

			occ.StartTime = start
			occ.EndTime = recurrence.EndOf(start, updated.DurationMinutes)
			occ.ActivityTypeID = updated.ActivityTypeID
			occ.InstructorID = updated.InstructorID
			occ.RoomID = updated.RoomID
			occ.Capacity = updated.Capacity
			occ.Note = updated.Note
			remapped = append(remapped, occ)
		}
		if err := s.occurrences.UpdateBatch(ctx, remapped); err != nil {
			return nil, nil, err
		}
		result.Updated = len(remapped)

		removed, err := s.occurrences.DeleteLiveStartingAfter(ctx, id, updated.RecurrenceUntil, now)
		if err != nil {
			return nil, nil, err
		}
		result.Removed = int(removed)

		for _, occ := range remapped {
			if occ.StartTime.After(updated.RecurrenceUntil) && occ.StartTime.After(now) {
				s.removeClassFromIndex(ctx, occ.ID)
			} else {
				s.indexClass(ctx, occ.ID)
			}
		}
	}

	if _, err := s.generate(ctx, updated); err != nil {
		return nil, nil, err
	}

	s.publish(models.SubjectSeriesUpdated, models.SeriesUpdatedEvent{
		SeriesID: id, Action: "updated", Timestamp: s.now(),
	})
	s.invalidateSchedule(ctx)
	return updated, result, nil
}

// SetSeriesActive toggles generation for a series. Reactivating tops
// the horizon up immediately.
func (s *Service) SetSeriesActive(ctx context.Context, id int64, active bool) (*models.ClassSeries, error) {
	if err := s.series.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	series, err := s.series.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		if _, err := s.generate(ctx, series); err != nil {
			return nil, err
		}
	}
	s.publish(models.SubjectSeriesUpdated, models.SeriesUpdatedEvent{
		SeriesID: id, Action: "toggled", Timestamp: s.now(),
	})
	return series, nil
}

// DeleteSeries removes a series: still-planned occurrences are deleted
// with it, anything already opened, finished or cancelled is kept as
// history and detached.
func (s *Service) DeleteSeries(ctx context.Context, id int64) error {
	if _, err := s.series.GetByID(ctx, id); err != nil {
		return err
	}

	owned, err := s.occurrences.List(ctx, models.OccurrenceFilter{SeriesID: id})
	if err != nil {
		return err
	}

	if _, err := s.occurrences.DeletePlannedBySeries(ctx, id); err != nil {
		return err
	}
	if err := s.occurrences.DetachSeries(ctx, id); err != nil {
		return err
	}
	if err := s.series.Delete(ctx, id); err != nil {
		return err
	}

	for _, occ := range owned {
		if occ.Status == models.StatusPlanned {
			s.removeClassFromIndex(ctx, occ.ID)
		} else {
			s.indexClass(ctx, occ.ID)
		}
	}

	s.publish(models.SubjectSeriesUpdated, models.SeriesUpdatedEvent{
		SeriesID: id, Action: "deleted", Timestamp: s.now(),
	})
	s.invalidateSchedule(ctx)
	return nil
}

// TopUpAll re-runs the generator over every active series. Used by the
// worker's cron pass; generation is idempotent so any frequency is safe.
func (s *Service) TopUpAll(ctx context.Context) (int, error) {
	series, err := s.series.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range series {
		result, err := s.generate(ctx, &series[i])
		if err != nil {
			logger.Get().Error("top-up failed for series",
				"series_id", series[i].ID, "error", err)
			continue
		}
		created += result.Created
	}
	return created, nil
}
