package repository

import (
	"context"
	"database/sql"
	"errors"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/database"
	"fitgrid/internal/models"
)

type SeriesRepository struct {
	db *database.DB
}

func NewSeriesRepository(db *database.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

const seriesColumns = `id, activity_type_id, instructor_id, room_id, start_time,
	duration_minutes, recurrence_pattern, recurrence_until, capacity, note,
	active, created_at, updated_at`

func scanSeries(row interface{ Scan(...any) error }, s *models.ClassSeries) error {
	return row.Scan(
		&s.ID, &s.ActivityTypeID, &s.InstructorID, &s.RoomID, &s.StartTime,
		&s.DurationMinutes, &s.Pattern, &s.RecurrenceUntil, &s.Capacity,
		&s.Note, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
}

func (r *SeriesRepository) Create(ctx context.Context, s *models.ClassSeries) error {
	query := `
		INSERT INTO class_series
			(activity_type_id, instructor_id, room_id, start_time,
			 duration_minutes, recurrence_pattern, recurrence_until,
			 capacity, note, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.ActivityTypeID, s.InstructorID, s.RoomID, s.StartTime,
		s.DurationMinutes, s.Pattern, s.RecurrenceUntil,
		s.Capacity, s.Note, s.Active,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return apperrors.Internal("failed to create series", err)
	}
	return nil
}

func (r *SeriesRepository) GetByID(ctx context.Context, id int64) (*models.ClassSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM class_series WHERE id = $1`

	var s models.ClassSeries
	err := scanSeries(r.db.QueryRowContext(ctx, query, id), &s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("series %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get series", err)
	}
	return &s, nil
}

func (r *SeriesRepository) List(ctx context.Context) ([]models.ClassSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM class_series ORDER BY start_time`
	return r.queryList(ctx, query)
}

// ListActive returns series eligible for generation.
func (r *SeriesRepository) ListActive(ctx context.Context) ([]models.ClassSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM class_series WHERE active ORDER BY id`
	return r.queryList(ctx, query)
}

func (r *SeriesRepository) queryList(ctx context.Context, query string, args ...any) ([]models.ClassSeries, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Internal("failed to list series", err)
	}
	defer rows.Close()

	list := make([]models.ClassSeries, 0)
	for rows.Next() {
		var s models.ClassSeries
		if err := scanSeries(rows, &s); err != nil {
			return nil, apperrors.Internal("failed to scan series", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SeriesRepository) Update(ctx context.Context, s *models.ClassSeries) error {
	query := `
		UPDATE class_series
		SET activity_type_id = $2, instructor_id = $3, room_id = $4,
			start_time = $5, duration_minutes = $6, recurrence_pattern = $7,
			recurrence_until = $8, capacity = $9, note = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.ActivityTypeID, s.InstructorID, s.RoomID,
		s.StartTime, s.DurationMinutes, s.Pattern,
		s.RecurrenceUntil, s.Capacity, s.Note,
	).Scan(&s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFoundf("series %d not found", s.ID)
	}
	if err != nil {
		return apperrors.Internal("failed to update series", err)
	}
	return nil
}

func (r *SeriesRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE class_series SET active = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return apperrors.Internal("failed to toggle series", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("series %d not found", id)
	}
	return nil
}

func (r *SeriesRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM class_series WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal("failed to delete series", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("series %d not found", id)
	}
	return nil
}
