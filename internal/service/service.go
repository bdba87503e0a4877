// Package service implements the domain logic: recurrence generation,
// series reconciliation, conflict detection, the class status machine
// and capacity-guarded bookings.
package service

import (
	"context"
	"time"

	"fitgrid/internal/logger"
)

const defaultHorizonDays = 30

// Deps wires the service to its stores and side channels. Publisher,
// Indexer and Cache may be nil; the service degrades to doing the work
// without events, search or caching.
type Deps struct {
	Lookups     LookupStore
	Series      SeriesStore
	Occurrences OccurrenceStore
	Bookings    BookingStore

	Publisher Publisher
	Indexer   Indexer
	Cache     ScheduleCache

	Location    *time.Location
	HorizonDays int
	Now         func() time.Time
}

type Service struct {
	lookups     LookupStore
	series      SeriesStore
	occurrences OccurrenceStore
	bookings    BookingStore

	publisher Publisher
	indexer   Indexer
	cache     ScheduleCache

	loc         *time.Location
	horizonDays int
	now         func() time.Time
}

func New(d Deps) *Service {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.HorizonDays <= 0 {
		d.HorizonDays = defaultHorizonDays
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		lookups:     d.Lookups,
		series:      d.Series,
		occurrences: d.Occurrences,
		bookings:    d.Bookings,
		publisher:   d.Publisher,
		indexer:     d.Indexer,
		cache:       d.Cache,
		loc:         d.Location,
		horizonDays: d.HorizonDays,
		now:         d.Now,
	}
}

// publish sends a domain event. Event delivery never fails the
// operation that triggered it.
func (s *Service) publish(subject string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, payload); err != nil {
		logger.Get().Error("failed to publish event", "subject", subject, "error", err)
	}
}

func (s *Service) indexClass(ctx context.Context, id int64) {
	if s.indexer == nil {
		return
	}
	doc, err := s.occurrences.GetDocument(ctx, id)
	if err != nil {
		logger.Get().Error("failed to load class document", "class_id", id, "error", err)
		return
	}
	if err := s.indexer.Index(ctx, doc); err != nil {
		logger.Get().Error("failed to index class", "class_id", id, "error", err)
	}
}

func (s *Service) removeClassFromIndex(ctx context.Context, id int64) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.Delete(ctx, id); err != nil {
		logger.Get().Error("failed to remove class from index", "class_id", id, "error", err)
	}
}

func (s *Service) invalidateSchedule(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Get().Error("failed to invalidate schedule cache", "error", err)
	}
}
