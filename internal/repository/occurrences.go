package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/database"
	"fitgrid/internal/models"
)

type OccurrenceRepository struct {
	db *database.DB
}

func NewOccurrenceRepository(db *database.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

const occurrenceColumns = `id, series_id, activity_type_id, instructor_id,
	substituted_for_id, room_id, start_time, end_time, capacity, status,
	note, created_at, updated_at`

func scanOccurrence(row interface{ Scan(...any) error }, o *models.ClassOccurrence) error {
	return row.Scan(
		&o.ID, &o.SeriesID, &o.ActivityTypeID, &o.InstructorID,
		&o.SubstitutedForID, &o.RoomID, &o.StartTime, &o.EndTime,
		&o.Capacity, &o.Status, &o.Note, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *OccurrenceRepository) Create(ctx context.Context, o *models.ClassOccurrence) error {
	query := `
		INSERT INTO class_occurrences
			(series_id, activity_type_id, instructor_id, substituted_for_id,
			 room_id, start_time, end_time, capacity, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		o.SeriesID, o.ActivityTypeID, o.InstructorID, o.SubstitutedForID,
		o.RoomID, o.StartTime, o.EndTime, o.Capacity, o.Status, o.Note,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return apperrors.Internal("failed to create occurrence", err)
	}
	return nil
}

func (r *OccurrenceRepository) GetByID(ctx context.Context, id int64) (*models.ClassOccurrence, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM class_occurrences WHERE id = $1`

	var o models.ClassOccurrence
	err := scanOccurrence(r.db.QueryRowContext(ctx, query, id), &o)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("class %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get occurrence", err)
	}
	return &o, nil
}

func (r *OccurrenceRepository) List(ctx context.Context, f models.OccurrenceFilter) ([]models.ClassOccurrence, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.RoomID != 0 {
		add("room_id = $%d", f.RoomID)
	}
	if f.InstructorID != 0 {
		add("instructor_id = $%d", f.InstructorID)
	}
	if f.SeriesID != 0 {
		add("series_id = $%d", f.SeriesID)
	}
	if !f.From.IsZero() {
		add("start_time >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("start_time < $%d", f.To)
	}

	query := `SELECT ` + occurrenceColumns + ` FROM class_occurrences`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_time"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Internal("failed to list occurrences", err)
	}
	defer rows.Close()

	list := make([]models.ClassOccurrence, 0)
	for rows.Next() {
		var o models.ClassOccurrence
		if err := scanOccurrence(rows, &o); err != nil {
			return nil, apperrors.Internal("failed to scan occurrence", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *OccurrenceRepository) Update(ctx context.Context, o *models.ClassOccurrence) error {
	query := `
		UPDATE class_occurrences
		SET activity_type_id = $2, instructor_id = $3, substituted_for_id = $4,
			room_id = $5, start_time = $6, end_time = $7, capacity = $8,
			note = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		o.ID, o.ActivityTypeID, o.InstructorID, o.SubstitutedForID,
		o.RoomID, o.StartTime, o.EndTime, o.Capacity, o.Note,
	).Scan(&o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFoundf("class %d not found", o.ID)
	}
	if err != nil {
		return apperrors.Internal("failed to update occurrence", err)
	}
	return nil
}

// UpdateBatch persists a set of remapped occurrences in one transaction
// with the (series_id, start_time) uniqueness check deferred to commit,
// so in-series time shifts cannot collide with rows not yet moved.
func (r *OccurrenceRepository) UpdateBatch(ctx context.Context, occs []models.ClassOccurrence) error {
	if len(occs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`SET CONSTRAINTS class_occurrences_series_start_key DEFERRED`); err != nil {
		return apperrors.Internal("failed to defer uniqueness check", err)
	}

	query := `
		UPDATE class_occurrences
		SET activity_type_id = $2, instructor_id = $3, room_id = $4,
			start_time = $5, end_time = $6, capacity = $7, note = $8,
			updated_at = NOW()
		WHERE id = $1`

	for _, o := range occs {
		if _, err := tx.ExecContext(ctx, query,
			o.ID, o.ActivityTypeID, o.InstructorID, o.RoomID,
			o.StartTime, o.EndTime, o.Capacity, o.Note,
		); err != nil {
			return apperrors.Internal(fmt.Sprintf("failed to remap occurrence %d", o.ID), err)
		}
	}

	// the deferred (series_id, start_time) uniqueness surfaces here
	if err := tx.Commit(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Conflict("remapped occurrence collides with an existing class slot")
		}
		return apperrors.Internal("failed to commit remap", err)
	}
	return nil
}

func (r *OccurrenceRepository) UpdateStatus(ctx context.Context, id int64, status models.ClassStatus) error {
	query := `UPDATE class_occurrences SET status = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return apperrors.Internal("failed to update status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("class %d not found", id)
	}
	return nil
}

func (r *OccurrenceRepository) UpdateInstructor(ctx context.Context, id, instructorID int64, substitutedForID *int64) error {
	query := `
		UPDATE class_occurrences
		SET instructor_id = $2, substituted_for_id = $3, updated_at = NOW()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, instructorID, substitutedForID)
	if err != nil {
		return apperrors.Internal("failed to reassign instructor", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("class %d not found", id)
	}
	return nil
}

func (r *OccurrenceRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM class_occurrences WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal("failed to delete occurrence", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("class %d not found", id)
	}
	return nil
}

func (r *OccurrenceRepository) ExistsBySeriesAndStart(ctx context.Context, seriesID int64, start time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM class_occurrences WHERE series_id = $1 AND start_time = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, seriesID, start).Scan(&exists); err != nil {
		return false, apperrors.Internal("failed to check occurrence existence", err)
	}
	return exists, nil
}

// CountOverlappingInRoom counts non-cancelled occurrences in the room
// whose interval overlaps [start, end). Back-to-back classes do not
// overlap. excludeID = 0 excludes nothing.
func (r *OccurrenceRepository) CountOverlappingInRoom(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM class_occurrences
		WHERE room_id = $1
		  AND status <> 'CANCELLED'
		  AND start_time < $3
		  AND end_time > $2
		  AND ($4 = 0 OR id <> $4)`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, roomID, start, end, excludeID).Scan(&count); err != nil {
		return 0, apperrors.Internal("failed to count room conflicts", err)
	}
	return count, nil
}

func (r *OccurrenceRepository) CountOverlappingForInstructor(ctx context.Context, instructorID int64, start, end time.Time, excludeID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM class_occurrences
		WHERE instructor_id = $1
		  AND status <> 'CANCELLED'
		  AND start_time < $3
		  AND end_time > $2
		  AND ($4 = 0 OR id <> $4)`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, instructorID, start, end, excludeID).Scan(&count); err != nil {
		return 0, apperrors.Internal("failed to count instructor conflicts", err)
	}
	return count, nil
}

// ListFutureLiveBySeries returns the series' occurrences starting at or
// after from that are neither cancelled nor finished, in start order.
func (r *OccurrenceRepository) ListFutureLiveBySeries(ctx context.Context, seriesID int64, from time.Time) ([]models.ClassOccurrence, error) {
	query := `
		SELECT ` + occurrenceColumns + `
		FROM class_occurrences
		WHERE series_id = $1
		  AND start_time >= $2
		  AND status NOT IN ('CANCELLED', 'FINISHED')
		ORDER BY start_time`

	rows, err := r.db.QueryContext(ctx, query, seriesID, from)
	if err != nil {
		return nil, apperrors.Internal("failed to list series occurrences", err)
	}
	defer rows.Close()

	list := make([]models.ClassOccurrence, 0)
	for rows.Next() {
		var o models.ClassOccurrence
		if err := scanOccurrence(rows, &o); err != nil {
			return nil, apperrors.Internal("failed to scan occurrence", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// DeleteFutureLiveBySeries removes future non-cancelled, non-finished
// occurrences of a series. Past and archived rows stay untouched.
func (r *OccurrenceRepository) DeleteFutureLiveBySeries(ctx context.Context, seriesID int64, from time.Time) (int64, error) {
	query := `
		DELETE FROM class_occurrences
		WHERE series_id = $1
		  AND start_time >= $2
		  AND status NOT IN ('CANCELLED', 'FINISHED')`

	res, err := r.db.ExecContext(ctx, query, seriesID, from)
	if err != nil {
		return 0, apperrors.Internal("failed to delete series occurrences", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteLiveStartingAfter removes live occurrences that fell past the
// series end after a reconciliation. Only future rows qualify: an
// occurrence that already happened is history even when the series end
// moves before it.
func (r *OccurrenceRepository) DeleteLiveStartingAfter(ctx context.Context, seriesID int64, after, now time.Time) (int64, error) {
	query := `
		DELETE FROM class_occurrences
		WHERE series_id = $1
		  AND start_time > $2
		  AND start_time > $3
		  AND status NOT IN ('CANCELLED', 'FINISHED')`

	res, err := r.db.ExecContext(ctx, query, seriesID, after, now)
	if err != nil {
		return 0, apperrors.Internal("failed to trim series occurrences", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeletePlannedBySeries removes the still-planned occurrences of a
// series being deleted.
func (r *OccurrenceRepository) DeletePlannedBySeries(ctx context.Context, seriesID int64) (int64, error) {
	query := `DELETE FROM class_occurrences WHERE series_id = $1 AND status = 'PLANNED'`

	res, err := r.db.ExecContext(ctx, query, seriesID)
	if err != nil {
		return 0, apperrors.Internal("failed to delete planned occurrences", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DetachSeries clears series ownership on the occurrences that survive
// a series deletion.
func (r *OccurrenceRepository) DetachSeries(ctx context.Context, seriesID int64) error {
	query := `UPDATE class_occurrences SET series_id = NULL, updated_at = NOW() WHERE series_id = $1`

	if _, err := r.db.ExecContext(ctx, query, seriesID); err != nil {
		return apperrors.Internal("failed to detach occurrences", err)
	}
	return nil
}

// ListSchedule returns the public schedule: upcoming non-cancelled
// occurrences with display names and occupancy.
func (r *OccurrenceRepository) ListSchedule(ctx context.Context, from time.Time) ([]models.ScheduleItem, error) {
	query := `
		SELECT o.id, o.series_id, a.name,
			   i.first_name || ' ' || i.last_name, r.name,
			   o.start_time, o.end_time, o.status, o.capacity,
			   COUNT(b.id) FILTER (WHERE b.status IN ('REQUESTED', 'CONFIRMED', 'PAID'))
		FROM class_occurrences o
		JOIN activity_types a ON a.id = o.activity_type_id
		JOIN instructors i ON i.id = o.instructor_id
		JOIN rooms r ON r.id = o.room_id
		LEFT JOIN bookings b ON b.occurrence_id = o.id
		WHERE o.start_time >= $1 AND o.status <> 'CANCELLED'
		GROUP BY o.id, a.name, i.first_name, i.last_name, r.name
		ORDER BY o.start_time`

	rows, err := r.db.QueryContext(ctx, query, from)
	if err != nil {
		return nil, apperrors.Internal("failed to load schedule", err)
	}
	defer rows.Close()

	items := make([]models.ScheduleItem, 0)
	for rows.Next() {
		var (
			item     models.ScheduleItem
			capacity int
			reserved int64
		)
		if err := rows.Scan(
			&item.ID, &item.SeriesID, &item.Activity, &item.Instructor,
			&item.Room, &item.StartTime, &item.EndTime, &item.Status,
			&capacity, &reserved,
		); err != nil {
			return nil, apperrors.Internal("failed to scan schedule row", err)
		}
		item.Spots = models.Spots(reserved, capacity)
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetDocument loads the search index projection of one occurrence.
func (r *OccurrenceRepository) GetDocument(ctx context.Context, id int64) (*models.ClassDocument, error) {
	query := `
		SELECT o.id, o.series_id, a.name,
			   i.first_name || ' ' || i.last_name, r.name,
			   o.start_time, o.end_time, o.status, o.capacity
		FROM class_occurrences o
		JOIN activity_types a ON a.id = o.activity_type_id
		JOIN instructors i ON i.id = o.instructor_id
		JOIN rooms r ON r.id = o.room_id
		WHERE o.id = $1`

	var doc models.ClassDocument
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.SeriesID, &doc.Activity, &doc.Instructor,
		&doc.Room, &doc.StartTime, &doc.EndTime, &doc.Status, &doc.Capacity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("class %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load class document", err)
	}
	return &doc, nil
}
