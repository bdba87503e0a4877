package models

import "time"

// CreateSeriesRequest creates a new class series. Dates and times are
// wall-clock values in the configured timezone.
type CreateSeriesRequest struct {
	ActivityTypeID  int64  `json:"activity_type_id" binding:"required"`
	InstructorID    int64  `json:"instructor_id" binding:"required"`
	RoomID          int64  `json:"room_id" binding:"required"`
	StartDate       string `json:"start_date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Pattern         string `json:"recurrence_pattern" binding:"required"`
	UntilDate       string `json:"until_date" binding:"required"`
	Capacity        int    `json:"capacity"`
	Note            string `json:"note"`
}

// UpdateSeriesRequest edits an existing series. All fields are required;
// partial edits are not supported.
type UpdateSeriesRequest struct {
	ActivityTypeID  int64  `json:"activity_type_id" binding:"required"`
	InstructorID    int64  `json:"instructor_id" binding:"required"`
	RoomID          int64  `json:"room_id" binding:"required"`
	StartDate       string `json:"start_date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Pattern         string `json:"recurrence_pattern" binding:"required"`
	UntilDate       string `json:"until_date" binding:"required"`
	Capacity        int    `json:"capacity"`
	Note            string `json:"note"`
}

// CreateOccurrenceRequest creates a standalone class occurrence.
type CreateOccurrenceRequest struct {
	ActivityTypeID  int64  `json:"activity_type_id" binding:"required"`
	InstructorID    int64  `json:"instructor_id" binding:"required"`
	RoomID          int64  `json:"room_id" binding:"required"`
	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Capacity        int    `json:"capacity"`
	Note            string `json:"note"`
}

// UpdateOccurrenceRequest edits a single occurrence in place.
type UpdateOccurrenceRequest struct {
	ActivityTypeID  int64  `json:"activity_type_id" binding:"required"`
	RoomID          int64  `json:"room_id" binding:"required"`
	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Capacity        int    `json:"capacity"`
	Note            string `json:"note"`
}

// ChangeStatusRequest moves an occurrence through its lifecycle.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ReassignInstructorRequest substitutes the instructor of an occurrence.
type ReassignInstructorRequest struct {
	InstructorID int64 `json:"instructor_id" binding:"required"`
}

// CreateBookingRequest books a user onto a class occurrence.
type CreateBookingRequest struct {
	ClassID  int64  `json:"class_id" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
}

// BookingResponse is returned after a successful reservation.
type BookingResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Spots  string `json:"spots"`
}

// CancelBookingRequest cancels a booking either by id or by
// (class_id, user_name).
type CancelBookingRequest struct {
	BookingID *int64 `json:"booking_id"`
	ClassID   *int64 `json:"class_id"`
	UserName  string `json:"user_name"`
}

// CancelBookingResponse reports occupancy after cancellation.
type CancelBookingResponse struct {
	Spots string `json:"spots"`
}

// ScheduleItem is one row of the public schedule view.
type ScheduleItem struct {
	ID         int64     `json:"id"`
	SeriesID   *int64    `json:"series_id"`
	Activity   string    `json:"activity"`
	Instructor string    `json:"instructor"`
	Room       string    `json:"room"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	Spots      string    `json:"spots"`
}

// ClassDocument is the search index projection of a class occurrence.
type ClassDocument struct {
	ID         int64     `json:"id"`
	SeriesID   *int64    `json:"series_id"`
	Activity   string    `json:"activity"`
	Instructor string    `json:"instructor"`
	Room       string    `json:"room"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	Capacity   int       `json:"capacity"`
}

// GenerationResult summarizes one generator run over a series.
type GenerationResult struct {
	SeriesID int64 `json:"series_id"`
	Created  int   `json:"created"`
	Skipped  int   `json:"skipped"`
}

// ReconcileResult summarizes a series edit applied to its occurrences.
type ReconcileResult struct {
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// OccurrenceFilter narrows occurrence listings. Zero values mean "any".
type OccurrenceFilter struct {
	RoomID       int64
	InstructorID int64
	SeriesID     int64
	From         time.Time
	To           time.Time
}
