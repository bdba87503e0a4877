package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createRoomsTable,
		createInstructorsTable,
		createActivityTypesTable,
		createClassSeriesTable,
		createClassOccurrencesTable,
		createBookingsTable,
		createOccurrenceIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createRoomsTable = `
CREATE TABLE IF NOT EXISTS rooms (
    id SERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    capacity INTEGER NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (capacity > 0)
);`

const createInstructorsTable = `
CREATE TABLE IF NOT EXISTS instructors (
    id SERIAL PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    email VARCHAR(255) UNIQUE,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createActivityTypesTable = `
CREATE TABLE IF NOT EXISTS activity_types (
    id SERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    description TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createClassSeriesTable = `
CREATE TABLE IF NOT EXISTS class_series (
    id SERIAL PRIMARY KEY,
    activity_type_id INTEGER NOT NULL REFERENCES activity_types(id),
    instructor_id INTEGER NOT NULL REFERENCES instructors(id),
    room_id INTEGER NOT NULL REFERENCES rooms(id),
    start_time TIMESTAMPTZ NOT NULL,
    duration_minutes INTEGER NOT NULL,
    recurrence_pattern VARCHAR(10) NOT NULL,
    recurrence_until TIMESTAMPTZ NOT NULL,
    capacity INTEGER NOT NULL,
    note TEXT,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (recurrence_pattern IN ('DAILY', 'WEEKLY', 'MONTHLY')),
    CHECK (duration_minutes > 0),
    CHECK (capacity > 0)
);`

const createClassOccurrencesTable = `
CREATE TABLE IF NOT EXISTS class_occurrences (
    id SERIAL PRIMARY KEY,
    series_id INTEGER REFERENCES class_series(id) ON DELETE SET NULL,
    activity_type_id INTEGER NOT NULL REFERENCES activity_types(id),
    instructor_id INTEGER NOT NULL REFERENCES instructors(id),
    substituted_for_id INTEGER REFERENCES instructors(id),
    room_id INTEGER NOT NULL REFERENCES rooms(id),
    start_time TIMESTAMPTZ NOT NULL,
    end_time TIMESTAMPTZ NOT NULL,
    capacity INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'PLANNED',
    note TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT class_occurrences_series_start_key
        UNIQUE (series_id, start_time) DEFERRABLE INITIALLY IMMEDIATE,
    CHECK (status IN ('PLANNED', 'OPEN', 'CANCELLED', 'FINISHED')),
    CHECK (end_time > start_time),
    CHECK (capacity > 0)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    occurrence_id INTEGER NOT NULL REFERENCES class_occurrences(id) ON DELETE CASCADE,
    user_name VARCHAR(255) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'REQUESTED',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (status IN ('REQUESTED', 'CONFIRMED', 'PAID', 'CANCELLED'))
);`

const createOccurrenceIndexes = `
CREATE INDEX IF NOT EXISTS class_occurrences_room_time_idx
    ON class_occurrences (room_id, start_time);
CREATE INDEX IF NOT EXISTS class_occurrences_instructor_time_idx
    ON class_occurrences (instructor_id, start_time);
CREATE INDEX IF NOT EXISTS class_occurrences_series_idx
    ON class_occurrences (series_id);
CREATE INDEX IF NOT EXISTS bookings_occurrence_user_idx
    ON bookings (occurrence_id, user_name);`
