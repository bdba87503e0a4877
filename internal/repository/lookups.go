package repository

import (
	"context"
	"database/sql"
	"errors"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/database"
	"fitgrid/internal/models"
)

// LookupRepository covers rooms, instructors and activity types.
type LookupRepository struct {
	db *database.DB
}

func NewLookupRepository(db *database.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

func (r *LookupRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (name, capacity, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, room.Name, room.Capacity, room.Active).
		Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return apperrors.Internal("failed to create room", err)
	}
	return nil
}

func (r *LookupRepository) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	query := `SELECT id, name, capacity, active, created_at FROM rooms WHERE id = $1`

	var room models.Room
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&room.ID, &room.Name, &room.Capacity, &room.Active, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("room %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get room", err)
	}
	return &room, nil
}

func (r *LookupRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	query := `SELECT id, name, capacity, active, created_at FROM rooms ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Internal("failed to list rooms", err)
	}
	defer rows.Close()

	rooms := make([]models.Room, 0)
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.Active, &room.CreatedAt); err != nil {
			return nil, apperrors.Internal("failed to scan room", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *LookupRepository) CreateInstructor(ctx context.Context, ins *models.Instructor) error {
	query := `
		INSERT INTO instructors (first_name, last_name, email, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, ins.FirstName, ins.LastName, ins.Email, ins.Active).
		Scan(&ins.ID, &ins.CreatedAt)
	if err != nil {
		return apperrors.Internal("failed to create instructor", err)
	}
	return nil
}

func (r *LookupRepository) GetInstructor(ctx context.Context, id int64) (*models.Instructor, error) {
	query := `SELECT id, first_name, last_name, email, active, created_at FROM instructors WHERE id = $1`

	var ins models.Instructor
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&ins.ID, &ins.FirstName, &ins.LastName, &ins.Email, &ins.Active, &ins.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("instructor %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get instructor", err)
	}
	return &ins, nil
}

func (r *LookupRepository) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	query := `
		SELECT id, first_name, last_name, email, active, created_at
		FROM instructors
		ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Internal("failed to list instructors", err)
	}
	defer rows.Close()

	instructors := make([]models.Instructor, 0)
	for rows.Next() {
		var ins models.Instructor
		if err := rows.Scan(&ins.ID, &ins.FirstName, &ins.LastName, &ins.Email, &ins.Active, &ins.CreatedAt); err != nil {
			return nil, apperrors.Internal("failed to scan instructor", err)
		}
		instructors = append(instructors, ins)
	}
	return instructors, rows.Err()
}

func (r *LookupRepository) CreateActivityType(ctx context.Context, at *models.ActivityType) error {
	query := `
		INSERT INTO activity_types (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, at.Name, at.Description).
		Scan(&at.ID, &at.CreatedAt)
	if err != nil {
		return apperrors.Internal("failed to create activity type", err)
	}
	return nil
}

func (r *LookupRepository) GetActivityType(ctx context.Context, id int64) (*models.ActivityType, error) {
	query := `SELECT id, name, description, created_at FROM activity_types WHERE id = $1`

	var at models.ActivityType
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&at.ID, &at.Name, &at.Description, &at.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("activity type %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get activity type", err)
	}
	return &at, nil
}

func (r *LookupRepository) ListActivityTypes(ctx context.Context) ([]models.ActivityType, error) {
	query := `SELECT id, name, description, created_at FROM activity_types ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Internal("failed to list activity types", err)
	}
	defer rows.Close()

	types := make([]models.ActivityType, 0)
	for rows.Next() {
		var at models.ActivityType
		if err := rows.Scan(&at.ID, &at.Name, &at.Description, &at.CreatedAt); err != nil {
			return nil, apperrors.Internal("failed to scan activity type", err)
		}
		types = append(types, at)
	}
	return types, rows.Err()
}
