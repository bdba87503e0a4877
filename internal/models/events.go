package models

import "time"

// NATS subjects published by the API and consumed by the worker.
const (
	SubjectSeriesUpdated        = "series.updated"
	SubjectOccurrencesGenerated = "occurrences.generated"
	SubjectBookingCreated       = "booking.created"
	SubjectBookingCancelled     = "booking.cancelled"
)

// SeriesUpdatedEvent is published after a series is created, edited,
// toggled or deleted.
type SeriesUpdatedEvent struct {
	SeriesID  int64     `json:"series_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// OccurrencesGeneratedEvent is published after a generator run that
// created at least one occurrence.
type OccurrencesGeneratedEvent struct {
	SeriesID  int64     `json:"series_id"`
	Created   int       `json:"created"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingEvent is published on booking creation and cancellation.
type BookingEvent struct {
	BookingID    int64     `json:"booking_id"`
	OccurrenceID int64     `json:"occurrence_id"`
	UserName     string    `json:"user_name"`
	Timestamp    time.Time `json:"timestamp"`
}
