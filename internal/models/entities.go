package models

import (
	"time"
)

// RecurrencePattern is the stepping unit of a class series
type RecurrencePattern string

const (
	PatternDaily   RecurrencePattern = "DAILY"
	PatternWeekly  RecurrencePattern = "WEEKLY"
	PatternMonthly RecurrencePattern = "MONTHLY"
)

func (p RecurrencePattern) Valid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly:
		return true
	}
	return false
}

// ClassStatus is the lifecycle state of a single class occurrence
type ClassStatus string

const (
	StatusPlanned   ClassStatus = "PLANNED"
	StatusOpen      ClassStatus = "OPEN"
	StatusCancelled ClassStatus = "CANCELLED"
	StatusFinished  ClassStatus = "FINISHED"
)

func (s ClassStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusOpen, StatusCancelled, StatusFinished:
		return true
	}
	return false
}

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingRequested BookingStatus = "REQUESTED"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingPaid      BookingStatus = "PAID"
	BookingCancelled BookingStatus = "CANCELLED"
)

// ActiveBookingStatuses are the statuses that count against occurrence capacity
var ActiveBookingStatuses = []BookingStatus{BookingRequested, BookingConfirmed, BookingPaid}

func (s BookingStatus) Active() bool {
	return s == BookingRequested || s == BookingConfirmed || s == BookingPaid
}

// Room represents a bookable room
type Room struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Instructor represents a class instructor
type Instructor struct {
	ID        int64     `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     *string   `json:"email" db:"email"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (i *Instructor) FullName() string {
	return i.FirstName + " " + i.LastName
}

// ActivityType represents a kind of class (yoga, spinning, ...)
type ActivityType struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ClassSeries is a recurrence template from which occurrences are expanded
type ClassSeries struct {
	ID              int64             `json:"id" db:"id"`
	ActivityTypeID  int64             `json:"activity_type_id" db:"activity_type_id"`
	InstructorID    int64             `json:"instructor_id" db:"instructor_id"`
	RoomID          int64             `json:"room_id" db:"room_id"`
	StartTime       time.Time         `json:"start_time" db:"start_time"`
	DurationMinutes int               `json:"duration_minutes" db:"duration_minutes"`
	Pattern         RecurrencePattern `json:"recurrence_pattern" db:"recurrence_pattern"`
	RecurrenceUntil time.Time         `json:"recurrence_until" db:"recurrence_until"`
	Capacity        int               `json:"capacity" db:"capacity"`
	Note            *string           `json:"note" db:"note"`
	Active          bool              `json:"active" db:"active"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// ClassOccurrence is one concrete, bookable class
type ClassOccurrence struct {
	ID               int64       `json:"id" db:"id"`
	SeriesID         *int64      `json:"series_id" db:"series_id"`
	ActivityTypeID   int64       `json:"activity_type_id" db:"activity_type_id"`
	InstructorID     int64       `json:"instructor_id" db:"instructor_id"`
	SubstitutedForID *int64      `json:"substituted_for_id" db:"substituted_for_id"`
	RoomID           int64       `json:"room_id" db:"room_id"`
	StartTime        time.Time   `json:"start_time" db:"start_time"`
	EndTime          time.Time   `json:"end_time" db:"end_time"`
	Capacity         int         `json:"capacity" db:"capacity"`
	Status           ClassStatus `json:"status" db:"status"`
	Note             *string     `json:"note" db:"note"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// Booking represents a user reservation for a class occurrence
type Booking struct {
	ID           int64         `json:"id" db:"id"`
	OccurrenceID int64         `json:"occurrence_id" db:"occurrence_id"`
	UserName     string        `json:"user_name" db:"user_name"`
	Status       BookingStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}
