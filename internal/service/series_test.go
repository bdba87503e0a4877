package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/models"
)

func weeklyRequest(fx fixtures) *models.CreateSeriesRequest {
	return &models.CreateSeriesRequest{
		ActivityTypeID:  fx.activity.ID,
		InstructorID:    fx.instructor.ID,
		RoomID:          fx.room.ID,
		StartDate:       "2024-01-08",
		StartTime:       "18:00",
		DurationMinutes: 60,
		Pattern:         "WEEKLY",
		UntilDate:       "2024-01-29",
		Capacity:        15,
	}
}

func seriesOccurrences(t *testing.T, svc *Service, seriesID int64) []models.ClassOccurrence {
	t.Helper()
	occs, err := svc.ListClasses(context.Background(), models.OccurrenceFilter{SeriesID: seriesID})
	require.NoError(t, err)
	return occs
}

func TestCreateSeriesGeneratesWeeklyOccurrences(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)
	assert.True(t, series.Active)

	occs := seriesOccurrences(t, svc, series.ID)
	require.Len(t, occs, 4)

	loc := series.StartTime.Location()
	for i, day := range []int{8, 15, 22, 29} {
		want := time.Date(2024, 1, day, 18, 0, 0, 0, loc)
		assert.True(t, occs[i].StartTime.Equal(want), "occurrence %d start", i)
		assert.True(t, occs[i].EndTime.Equal(want.Add(time.Hour)), "occurrence %d end", i)
		assert.Equal(t, models.StatusPlanned, occs[i].Status)
		assert.Equal(t, 15, occs[i].Capacity)
		require.NotNil(t, occs[i].SeriesID)
		assert.Equal(t, series.ID, *occs[i].SeriesID)
	}

	assert.Contains(t, fx.publisher.events, models.SubjectOccurrencesGenerated)
	assert.Contains(t, fx.publisher.events, models.SubjectSeriesUpdated)
}

func TestGenerateIsIdempotent(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)

	result, err := svc.Generate(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 4, result.Skipped)

	assert.Len(t, seriesOccurrences(t, svc, series.ID), 4)
}

func TestGenerateRespectsHorizon(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	req := weeklyRequest(fx)
	req.StartDate = "2024-01-01"
	req.UntilDate = "2024-06-01"

	series, err := svc.CreateSeries(ctx, req)
	require.NoError(t, err)

	// horizon is now + 30 days (Jan 31 12:00), so Feb 5 does not exist yet
	occs := seriesOccurrences(t, svc, series.ID)
	require.Len(t, occs, 5)
	assert.Equal(t, 29, occs[4].StartTime.Day())
}

func TestGenerateInactiveSeriesIsNoOp(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)

	_, err = svc.SetSeriesActive(ctx, series.ID, false)
	require.NoError(t, err)

	result, err := svc.Generate(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Skipped)
}

func TestReactivatingSeriesTopsUp(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)

	_, err = svc.SetSeriesActive(ctx, series.ID, false)
	require.NoError(t, err)

	_, err = svc.occurrences.DeleteFutureLiveBySeries(ctx, series.ID, testNow())
	require.NoError(t, err)
	require.Empty(t, seriesOccurrences(t, svc, series.ID))

	_, err = svc.SetSeriesActive(ctx, series.ID, true)
	require.NoError(t, err)
	assert.Len(t, seriesOccurrences(t, svc, series.ID), 4)
}

func TestCreateSeriesValidation(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	t.Run("unknown pattern", func(t *testing.T) {
		req := weeklyRequest(fx)
		req.Pattern = "FORTNIGHTLY"
		_, err := svc.CreateSeries(ctx, req)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	})

	t.Run("until before start", func(t *testing.T) {
		req := weeklyRequest(fx)
		req.UntilDate = "2024-01-07"
		_, err := svc.CreateSeries(ctx, req)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	})

	t.Run("until on start date is allowed", func(t *testing.T) {
		req := weeklyRequest(fx)
		req.UntilDate = req.StartDate
		series, err := svc.CreateSeries(ctx, req)
		require.NoError(t, err)
		assert.Len(t, seriesOccurrences(t, svc, series.ID), 1)
	})

	t.Run("oversized duration", func(t *testing.T) {
		req := weeklyRequest(fx)
		req.DurationMinutes = 10001
		_, err := svc.CreateSeries(ctx, req)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	})

	t.Run("zero duration defaults to an hour", func(t *testing.T) {
		req := weeklyRequest(fx)
		req.StartDate = "2024-01-09"
		req.UntilDate = "2024-01-09"
		req.DurationMinutes = 0
		series, err := svc.CreateSeries(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 60, series.DurationMinutes)
	})

	t.Run("unknown room", func(t *testing.T) {
		req := weeklyRequest(fx)
		req.RoomID = 999
		_, err := svc.CreateSeries(ctx, req)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	})

	t.Run("capacity clamped to room", func(t *testing.T) {
		req := weeklyRequest(fx)
		req.StartDate = "2024-01-10"
		req.UntilDate = "2024-01-10"
		req.Capacity = 500
		series, err := svc.CreateSeries(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, fx.room.Capacity, series.Capacity)
	})
}

func TestUpdateSeriesParameterOnlyPreservesIdentity(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)

	before := seriesOccurrences(t, svc, series.ID)
	require.Len(t, before, 4)
	ids := make([]int64, 0, 4)
	for _, occ := range before {
		ids = append(ids, occ.ID)
	}

	req := &models.UpdateSeriesRequest{
		ActivityTypeID:  fx.activity.ID,
		InstructorID:    fx.instructor.ID,
		RoomID:          fx.room.ID,
		StartDate:       "2024-01-08",
		StartTime:       "19:00",
		DurationMinutes: 90,
		Pattern:         "WEEKLY",
		UntilDate:       "2024-01-29",
		Capacity:        10,
	}
	_, result, err := svc.UpdateSeries(ctx, series.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Updated)
	assert.Equal(t, 0, result.Removed)

	after := seriesOccurrences(t, svc, series.ID)
	require.Len(t, after, 4)
	for i, occ := range after {
		assert.Equal(t, ids[i], occ.ID, "identity preserved")
		assert.Equal(t, 19, occ.StartTime.Hour())
		assert.Equal(t, 90*time.Minute, occ.EndTime.Sub(occ.StartTime))
		assert.Equal(t, 10, occ.Capacity)
	}
}

func TestUpdateSeriesAnchorShiftTrimsPastUntil(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)
	before := seriesOccurrences(t, svc, series.ID)
	require.Len(t, before, 4)

	// shift the anchor one day later: the last slot lands on Jan 30,
	// past the unchanged until, and must go
	req := &models.UpdateSeriesRequest{
		ActivityTypeID:  fx.activity.ID,
		InstructorID:    fx.instructor.ID,
		RoomID:          fx.room.ID,
		StartDate:       "2024-01-09",
		StartTime:       "18:00",
		DurationMinutes: 60,
		Pattern:         "WEEKLY",
		UntilDate:       "2024-01-29",
		Capacity:        15,
	}
	_, result, err := svc.UpdateSeries(ctx, series.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Updated)
	assert.Equal(t, 1, result.Removed)

	after := seriesOccurrences(t, svc, series.ID)
	require.Len(t, after, 3)
	for i, day := range []int{9, 16, 23} {
		assert.Equal(t, day, after[i].StartTime.Day())
		assert.Equal(t, before[i].ID, after[i].ID)
	}
}

func TestUpdateSeriesPatternChangeRegenerates(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)
	before := seriesOccurrences(t, svc, series.ID)
	require.Len(t, before, 4)
	oldIDs := make(map[int64]bool)
	for _, occ := range before {
		oldIDs[occ.ID] = true
	}

	req := &models.UpdateSeriesRequest{
		ActivityTypeID:  fx.activity.ID,
		InstructorID:    fx.instructor.ID,
		RoomID:          fx.room.ID,
		StartDate:       "2024-01-08",
		StartTime:       "18:00",
		DurationMinutes: 60,
		Pattern:         "DAILY",
		UntilDate:       "2024-01-12",
		Capacity:        15,
	}
	_, result, err := svc.UpdateSeries(ctx, series.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 4, result.Removed)

	after := seriesOccurrences(t, svc, series.ID)
	require.Len(t, after, 5)
	for i, occ := range after {
		assert.Equal(t, 8+i, occ.StartTime.Day())
		assert.False(t, oldIDs[occ.ID], "regenerated occurrences are new rows")
	}
}

func TestUpdateSeriesUntilShorteningRemoves(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)

	req := &models.UpdateSeriesRequest{
		ActivityTypeID:  fx.activity.ID,
		InstructorID:    fx.instructor.ID,
		RoomID:          fx.room.ID,
		StartDate:       "2024-01-08",
		StartTime:       "18:00",
		DurationMinutes: 60,
		Pattern:         "WEEKLY",
		UntilDate:       "2024-01-15",
		Capacity:        15,
	}
	_, result, err := svc.UpdateSeries(ctx, series.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Removed)

	after := seriesOccurrences(t, svc, series.ID)
	require.Len(t, after, 2)
	assert.Equal(t, 8, after[0].StartTime.Day())
	assert.Equal(t, 15, after[1].StartTime.Day())
}

func TestUpdateSeriesUntilShortenedIntoPastKeepsHistory(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	req := weeklyRequest(fx)
	req.StartDate = "2023-12-04"
	req.UntilDate = "2024-01-01"
	series, err := svc.CreateSeries(ctx, req)
	require.NoError(t, err)
	require.Len(t, seriesOccurrences(t, svc, series.ID), 5)

	// pull the end date back before now: only the not-yet-held class
	// falls off, everything already in the past stays
	update := &models.UpdateSeriesRequest{
		ActivityTypeID:  fx.activity.ID,
		InstructorID:    fx.instructor.ID,
		RoomID:          fx.room.ID,
		StartDate:       "2023-12-04",
		StartTime:       "18:00",
		DurationMinutes: 60,
		Pattern:         "WEEKLY",
		UntilDate:       "2023-12-18",
		Capacity:        15,
	}
	_, result, err := svc.UpdateSeries(ctx, series.ID, update)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)

	after := seriesOccurrences(t, svc, series.ID)
	require.Len(t, after, 4)
	days := make([]string, 0, len(after))
	for _, occ := range after {
		days = append(days, occ.StartTime.Format("2006-01-02"))
	}
	assert.Equal(t, []string{"2023-12-04", "2023-12-11", "2023-12-18", "2023-12-25"}, days)
}

func TestUpdateSeriesRemapCollidingWithArchivedSlot(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)

	occs := seriesOccurrences(t, svc, series.ID)
	require.Len(t, occs, 4)
	_, err = svc.ChangeClassStatus(ctx, occs[1].ID, "OPEN")
	require.NoError(t, err)
	_, err = svc.ChangeClassStatus(ctx, occs[1].ID, "FINISHED")
	require.NoError(t, err)

	// shifting the anchor a week back lands Jan 22 on the finished
	// Jan 15 slot, which the remap must not silently overwrite
	update := &models.UpdateSeriesRequest{
		ActivityTypeID:  fx.activity.ID,
		InstructorID:    fx.instructor.ID,
		RoomID:          fx.room.ID,
		StartDate:       "2024-01-01",
		StartTime:       "18:00",
		DurationMinutes: 60,
		Pattern:         "WEEKLY",
		UntilDate:       "2024-01-29",
		Capacity:        15,
	}
	_, _, err = svc.UpdateSeries(ctx, series.ID, update)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	after := seriesOccurrences(t, svc, series.ID)
	require.Len(t, after, 4)
	assert.Equal(t, 22, after[2].StartTime.Day())
}

func TestDeleteSeriesDetachesHistory(t *testing.T) {
	svc, fake, fx := newTestService()
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)
	occs := seriesOccurrences(t, svc, series.ID)
	require.Len(t, occs, 4)

	// first class already ran
	require.NoError(t, fake.UpdateStatus(ctx, occs[0].ID, models.StatusOpen))

	require.NoError(t, svc.DeleteSeries(ctx, series.ID))

	_, err = svc.GetSeries(ctx, series.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	survivor, err := svc.GetClass(ctx, occs[0].ID)
	require.NoError(t, err)
	assert.Nil(t, survivor.SeriesID)
	assert.Equal(t, models.StatusOpen, survivor.Status)

	for _, occ := range occs[1:] {
		_, err := svc.GetClass(ctx, occ.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	}
}

func TestTopUpAllCoversActiveSeries(t *testing.T) {
	svc, _, fx := newTestService()
	ctx := context.Background()

	first, err := svc.CreateSeries(ctx, weeklyRequest(fx))
	require.NoError(t, err)

	second := weeklyRequest(fx)
	second.StartDate = "2024-01-10"
	second.UntilDate = "2024-01-24"
	other, err := svc.CreateSeries(ctx, second)
	require.NoError(t, err)

	_, err = svc.SetSeriesActive(ctx, other.ID, false)
	require.NoError(t, err)
	_, err = svc.occurrences.DeleteFutureLiveBySeries(ctx, first.ID, testNow())
	require.NoError(t, err)
	_, err = svc.occurrences.DeleteFutureLiveBySeries(ctx, other.ID, testNow())
	require.NoError(t, err)

	created, err := svc.TopUpAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	assert.Len(t, seriesOccurrences(t, svc, first.ID), 4)
	assert.Empty(t, seriesOccurrences(t, svc, other.ID))
}
