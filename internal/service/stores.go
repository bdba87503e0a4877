package service

import (
	"context"
	"time"

	"fitgrid/internal/models"
)

// Store interfaces are satisfied by the repository package and by the
// in-memory fakes used in tests.

type LookupStore interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	CreateInstructor(ctx context.Context, ins *models.Instructor) error
	GetInstructor(ctx context.Context, id int64) (*models.Instructor, error)
	ListInstructors(ctx context.Context) ([]models.Instructor, error)
	CreateActivityType(ctx context.Context, at *models.ActivityType) error
	GetActivityType(ctx context.Context, id int64) (*models.ActivityType, error)
	ListActivityTypes(ctx context.Context) ([]models.ActivityType, error)
}

type SeriesStore interface {
	Create(ctx context.Context, s *models.ClassSeries) error
	GetByID(ctx context.Context, id int64) (*models.ClassSeries, error)
	List(ctx context.Context) ([]models.ClassSeries, error)
	ListActive(ctx context.Context) ([]models.ClassSeries, error)
	Update(ctx context.Context, s *models.ClassSeries) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type OccurrenceStore interface {
	Create(ctx context.Context, o *models.ClassOccurrence) error
	GetByID(ctx context.Context, id int64) (*models.ClassOccurrence, error)
	List(ctx context.Context, f models.OccurrenceFilter) ([]models.ClassOccurrence, error)
	Update(ctx context.Context, o *models.ClassOccurrence) error
	UpdateBatch(ctx context.Context, occs []models.ClassOccurrence) error
	UpdateStatus(ctx context.Context, id int64, status models.ClassStatus) error
	UpdateInstructor(ctx context.Context, id, instructorID int64, substitutedForID *int64) error
	Delete(ctx context.Context, id int64) error
	ExistsBySeriesAndStart(ctx context.Context, seriesID int64, start time.Time) (bool, error)
	CountOverlappingInRoom(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) (int64, error)
	CountOverlappingForInstructor(ctx context.Context, instructorID int64, start, end time.Time, excludeID int64) (int64, error)
	ListFutureLiveBySeries(ctx context.Context, seriesID int64, from time.Time) ([]models.ClassOccurrence, error)
	DeleteFutureLiveBySeries(ctx context.Context, seriesID int64, from time.Time) (int64, error)
	DeleteLiveStartingAfter(ctx context.Context, seriesID int64, after, now time.Time) (int64, error)
	DeletePlannedBySeries(ctx context.Context, seriesID int64) (int64, error)
	DetachSeries(ctx context.Context, seriesID int64) error
	ListSchedule(ctx context.Context, from time.Time) ([]models.ScheduleItem, error)
	GetDocument(ctx context.Context, id int64) (*models.ClassDocument, error)
}

type BookingStore interface {
	Reserve(ctx context.Context, occurrenceID int64, userName string) (*models.Booking, string, error)
	CancelByID(ctx context.Context, bookingID int64) (int64, error)
	CancelByOccurrenceAndUser(ctx context.Context, occurrenceID int64, userName string) error
	CountActive(ctx context.Context, occurrenceID int64) (int64, error)
	Occupancy(ctx context.Context, occurrenceID int64) (string, error)
}

// Publisher fans out domain events. Implemented by messaging.Client.
type Publisher interface {
	Publish(subject string, payload any) error
}

// Indexer maintains the class search index. Implemented by search.Client.
type Indexer interface {
	Index(ctx context.Context, doc *models.ClassDocument) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, text string, day *time.Time) ([]models.ClassDocument, error)
}

// ScheduleCache caches rendered schedule responses. Implemented by
// cache.ScheduleCache.
type ScheduleCache interface {
	Get(ctx context.Context, day string) ([]byte, error)
	Set(ctx context.Context, day string, data []byte) error
	Invalidate(ctx context.Context) error
}
