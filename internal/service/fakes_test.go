package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/models"
)

// fakeStore is an in-memory implementation of every store interface.
// One mutex serializes all access, which also stands in for the row
// lock the real booking store takes.
type fakeStore struct {
	mu sync.Mutex

	rooms       map[int64]models.Room
	instructors map[int64]models.Instructor
	activities  map[int64]models.ActivityType
	series      map[int64]models.ClassSeries
	occurrences map[int64]models.ClassOccurrence
	bookings    map[int64]models.Booking

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:       make(map[int64]models.Room),
		instructors: make(map[int64]models.Instructor),
		activities:  make(map[int64]models.ActivityType),
		series:      make(map[int64]models.ClassSeries),
		occurrences: make(map[int64]models.ClassOccurrence),
		bookings:    make(map[int64]models.Booking),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// --- LookupStore ---

func (f *fakeStore) CreateRoom(_ context.Context, room *models.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room.ID = f.id()
	f.rooms[room.ID] = *room
	return nil
}

func (f *fakeStore) GetRoom(_ context.Context, id int64) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, apperrors.NotFoundf("room %d not found", id)
	}
	return &room, nil
}

func (f *fakeStore) ListRooms(_ context.Context) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Room, 0, len(f.rooms))
	for _, r := range f.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) CreateInstructor(_ context.Context, ins *models.Instructor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ins.ID = f.id()
	f.instructors[ins.ID] = *ins
	return nil
}

func (f *fakeStore) GetInstructor(_ context.Context, id int64) (*models.Instructor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ins, ok := f.instructors[id]
	if !ok {
		return nil, apperrors.NotFoundf("instructor %d not found", id)
	}
	return &ins, nil
}

func (f *fakeStore) ListInstructors(_ context.Context) ([]models.Instructor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Instructor, 0, len(f.instructors))
	for _, i := range f.instructors {
		out = append(out, i)
	}
	return out, nil
}

func (f *fakeStore) CreateActivityType(_ context.Context, at *models.ActivityType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	at.ID = f.id()
	f.activities[at.ID] = *at
	return nil
}

func (f *fakeStore) GetActivityType(_ context.Context, id int64) (*models.ActivityType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.activities[id]
	if !ok {
		return nil, apperrors.NotFoundf("activity type %d not found", id)
	}
	return &at, nil
}

func (f *fakeStore) ListActivityTypes(_ context.Context) ([]models.ActivityType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ActivityType, 0, len(f.activities))
	for _, a := range f.activities {
		out = append(out, a)
	}
	return out, nil
}

// --- SeriesStore ---

func (f *fakeStore) Create(_ context.Context, s *models.ClassSeries) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.id()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.series[s.ID] = *s
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*models.ClassSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.series[id]
	if !ok {
		return nil, apperrors.NotFoundf("series %d not found", id)
	}
	return &s, nil
}

func (f *fakeStore) List(_ context.Context) ([]models.ClassSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ClassSeries, 0, len(f.series))
	for _, s := range f.series {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeStore) ListActive(_ context.Context) ([]models.ClassSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ClassSeries, 0)
	for _, s := range f.series {
		if s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, s *models.ClassSeries) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.series[s.ID]; !ok {
		return apperrors.NotFoundf("series %d not found", s.ID)
	}
	s.UpdatedAt = time.Now()
	f.series[s.ID] = *s
	return nil
}

func (f *fakeStore) SetActive(_ context.Context, id int64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.series[id]
	if !ok {
		return apperrors.NotFoundf("series %d not found", id)
	}
	s.Active = active
	f.series[id] = s
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.series[id]; !ok {
		return apperrors.NotFoundf("series %d not found", id)
	}
	delete(f.series, id)
	return nil
}

// --- OccurrenceStore ---

func (f *fakeStore) CreateOccurrence(_ context.Context, o *models.ClassOccurrence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o.SeriesID != nil {
		for _, existing := range f.occurrences {
			if existing.SeriesID != nil && *existing.SeriesID == *o.SeriesID &&
				existing.StartTime.Equal(o.StartTime) {
				return apperrors.Internal("duplicate (series, start)", nil)
			}
		}
	}
	o.ID = f.id()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	f.occurrences[o.ID] = *o
	return nil
}

func (f *fakeStore) GetOccurrence(_ context.Context, id int64) (*models.ClassOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.occurrences[id]
	if !ok {
		return nil, apperrors.NotFoundf("class %d not found", id)
	}
	return &o, nil
}

func (f *fakeStore) ListOccurrences(_ context.Context, filter models.OccurrenceFilter) ([]models.ClassOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ClassOccurrence, 0)
	for _, o := range f.occurrences {
		if filter.RoomID != 0 && o.RoomID != filter.RoomID {
			continue
		}
		if filter.InstructorID != 0 && o.InstructorID != filter.InstructorID {
			continue
		}
		if filter.SeriesID != 0 && (o.SeriesID == nil || *o.SeriesID != filter.SeriesID) {
			continue
		}
		if !filter.From.IsZero() && o.StartTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !o.StartTime.Before(filter.To) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeStore) UpdateOccurrence(_ context.Context, o *models.ClassOccurrence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.occurrences[o.ID]; !ok {
		return apperrors.NotFoundf("class %d not found", o.ID)
	}
	o.UpdatedAt = time.Now()
	f.occurrences[o.ID] = *o
	return nil
}

func (f *fakeStore) UpdateBatch(_ context.Context, occs []models.ClassOccurrence) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	staged := make(map[int64]models.ClassOccurrence, len(occs))
	for _, o := range occs {
		stored, ok := f.occurrences[o.ID]
		if !ok {
			return apperrors.NotFoundf("class %d not found", o.ID)
		}
		o.Status = stored.Status
		o.SubstitutedForID = stored.SubstitutedForID
		o.UpdatedAt = time.Now()
		staged[o.ID] = o
	}

	// (series, start) uniqueness checks at commit, after the whole batch
	type slot struct {
		seriesID int64
		start    int64
	}
	seen := make(map[slot]bool)
	for id, o := range f.occurrences {
		if s, ok := staged[id]; ok {
			o = s
		}
		if o.SeriesID == nil {
			continue
		}
		key := slot{*o.SeriesID, o.StartTime.UnixNano()}
		if seen[key] {
			return apperrors.Conflict("remapped occurrence collides with an existing class slot")
		}
		seen[key] = true
	}

	for id, o := range staged {
		f.occurrences[id] = o
	}
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status models.ClassStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.occurrences[id]
	if !ok {
		return apperrors.NotFoundf("class %d not found", id)
	}
	o.Status = status
	f.occurrences[id] = o
	return nil
}

func (f *fakeStore) UpdateInstructor(_ context.Context, id, instructorID int64, substitutedForID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.occurrences[id]
	if !ok {
		return apperrors.NotFoundf("class %d not found", id)
	}
	o.InstructorID = instructorID
	o.SubstitutedForID = substitutedForID
	f.occurrences[id] = o
	return nil
}

func (f *fakeStore) DeleteOccurrence(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.occurrences[id]; !ok {
		return apperrors.NotFoundf("class %d not found", id)
	}
	delete(f.occurrences, id)
	return nil
}

func (f *fakeStore) ExistsBySeriesAndStart(_ context.Context, seriesID int64, start time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.occurrences {
		if o.SeriesID != nil && *o.SeriesID == seriesID && o.StartTime.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

func overlaps(o models.ClassOccurrence, start, end time.Time) bool {
	return o.StartTime.Before(end) && o.EndTime.After(start)
}

func (f *fakeStore) CountOverlappingInRoom(_ context.Context, roomID int64, start, end time.Time, excludeID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, o := range f.occurrences {
		if o.RoomID == roomID && o.Status != models.StatusCancelled &&
			o.ID != excludeID && overlaps(o, start, end) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountOverlappingForInstructor(_ context.Context, instructorID int64, start, end time.Time, excludeID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, o := range f.occurrences {
		if o.InstructorID == instructorID && o.Status != models.StatusCancelled &&
			o.ID != excludeID && overlaps(o, start, end) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListFutureLiveBySeries(_ context.Context, seriesID int64, from time.Time) ([]models.ClassOccurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ClassOccurrence, 0)
	for _, o := range f.occurrences {
		if o.SeriesID != nil && *o.SeriesID == seriesID &&
			!o.StartTime.Before(from) &&
			o.Status != models.StatusCancelled && o.Status != models.StatusFinished {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeStore) DeleteFutureLiveBySeries(_ context.Context, seriesID int64, from time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, o := range f.occurrences {
		if o.SeriesID != nil && *o.SeriesID == seriesID &&
			!o.StartTime.Before(from) &&
			o.Status != models.StatusCancelled && o.Status != models.StatusFinished {
			delete(f.occurrences, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeleteLiveStartingAfter(_ context.Context, seriesID int64, after, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, o := range f.occurrences {
		if o.SeriesID != nil && *o.SeriesID == seriesID &&
			o.StartTime.After(after) && o.StartTime.After(now) &&
			o.Status != models.StatusCancelled && o.Status != models.StatusFinished {
			delete(f.occurrences, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeletePlannedBySeries(_ context.Context, seriesID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, o := range f.occurrences {
		if o.SeriesID != nil && *o.SeriesID == seriesID && o.Status == models.StatusPlanned {
			delete(f.occurrences, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DetachSeries(_ context.Context, seriesID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, o := range f.occurrences {
		if o.SeriesID != nil && *o.SeriesID == seriesID {
			o.SeriesID = nil
			f.occurrences[id] = o
		}
	}
	return nil
}

func (f *fakeStore) ListSchedule(_ context.Context, from time.Time) ([]models.ScheduleItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ScheduleItem, 0)
	for _, o := range f.occurrences {
		if o.StartTime.Before(from) || o.Status == models.StatusCancelled {
			continue
		}
		ins := f.instructors[o.InstructorID]
		item := models.ScheduleItem{
			ID:         o.ID,
			SeriesID:   o.SeriesID,
			Activity:   f.activities[o.ActivityTypeID].Name,
			Instructor: ins.FullName(),
			Room:       f.rooms[o.RoomID].Name,
			StartTime:  o.StartTime,
			EndTime:    o.EndTime,
			Status:     string(o.Status),
			Spots:      models.Spots(f.countActiveLocked(o.ID), o.Capacity),
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeStore) GetDocument(_ context.Context, id int64) (*models.ClassDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.occurrences[id]
	if !ok {
		return nil, apperrors.NotFoundf("class %d not found", id)
	}
	ins := f.instructors[o.InstructorID]
	return &models.ClassDocument{
		ID:         o.ID,
		SeriesID:   o.SeriesID,
		Activity:   f.activities[o.ActivityTypeID].Name,
		Instructor: ins.FullName(),
		Room:       f.rooms[o.RoomID].Name,
		StartTime:  o.StartTime,
		EndTime:    o.EndTime,
		Status:     string(o.Status),
		Capacity:   o.Capacity,
	}, nil
}

// --- BookingStore ---

func (f *fakeStore) countActiveLocked(occurrenceID int64) int64 {
	var n int64
	for _, b := range f.bookings {
		if b.OccurrenceID == occurrenceID && b.Status.Active() {
			n++
		}
	}
	return n
}

func (f *fakeStore) Reserve(_ context.Context, occurrenceID int64, userName string) (*models.Booking, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	occ, ok := f.occurrences[occurrenceID]
	if !ok {
		return nil, "", apperrors.NotFoundf("class %d not found", occurrenceID)
	}

	active := f.countActiveLocked(occurrenceID)
	alreadyBooked := false
	for _, b := range f.bookings {
		if b.OccurrenceID == occurrenceID && b.UserName == userName && b.Status.Active() {
			alreadyBooked = true
			break
		}
	}

	if err := models.ValidateReservation(&occ, active, alreadyBooked); err != nil {
		return nil, "", err
	}

	booking := models.Booking{
		ID:           f.id(),
		OccurrenceID: occurrenceID,
		UserName:     userName,
		Status:       models.BookingRequested,
		CreatedAt:    time.Now(),
	}
	f.bookings[booking.ID] = booking
	return &booking, models.Spots(active+1, occ.Capacity), nil
}

func (f *fakeStore) CancelByID(_ context.Context, bookingID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return 0, apperrors.NotFoundf("booking %d not found", bookingID)
	}
	delete(f.bookings, bookingID)
	return b.OccurrenceID, nil
}

func (f *fakeStore) CancelByOccurrenceAndUser(_ context.Context, occurrenceID int64, userName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, b := range f.bookings {
		if b.OccurrenceID == occurrenceID && b.UserName == userName && b.Status.Active() {
			delete(f.bookings, id)
			return nil
		}
	}
	return apperrors.NotFound("booking not found")
}

func (f *fakeStore) CountActive(_ context.Context, occurrenceID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countActiveLocked(occurrenceID), nil
}

func (f *fakeStore) Occupancy(_ context.Context, occurrenceID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	occ, ok := f.occurrences[occurrenceID]
	if !ok {
		return "", apperrors.NotFoundf("class %d not found", occurrenceID)
	}
	return models.Spots(f.countActiveLocked(occurrenceID), occ.Capacity), nil
}

// fakeOccurrenceStore adapts fakeStore to the OccurrenceStore interface;
// the CRUD method names collide with the series ones on fakeStore itself.
type fakeOccurrenceStore struct{ *fakeStore }

func (f fakeOccurrenceStore) Create(ctx context.Context, o *models.ClassOccurrence) error {
	return f.CreateOccurrence(ctx, o)
}

func (f fakeOccurrenceStore) GetByID(ctx context.Context, id int64) (*models.ClassOccurrence, error) {
	return f.GetOccurrence(ctx, id)
}

func (f fakeOccurrenceStore) List(ctx context.Context, filter models.OccurrenceFilter) ([]models.ClassOccurrence, error) {
	return f.ListOccurrences(ctx, filter)
}

func (f fakeOccurrenceStore) Update(ctx context.Context, o *models.ClassOccurrence) error {
	return f.UpdateOccurrence(ctx, o)
}

func (f fakeOccurrenceStore) Delete(ctx context.Context, id int64) error {
	return f.DeleteOccurrence(ctx, id)
}

// fakePublisher records published events for assertions.
type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePublisher) Publish(subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, subject)
	return nil
}

type fixtures struct {
	room       *models.Room
	instructor *models.Instructor
	activity   *models.ActivityType
	publisher  *fakePublisher
}

var testNow = func() time.Time {
	loc, _ := time.LoadLocation("Europe/Warsaw")
	return time.Date(2024, 1, 1, 12, 0, 0, 0, loc)
}

// newTestService wires a Service over the in-memory store with a fixed
// clock (Mon Jan 1 2024 12:00 Warsaw) and seeded lookups.
func newTestService() (*Service, *fakeStore, fixtures) {
	loc, _ := time.LoadLocation("Europe/Warsaw")
	f := newFakeStore()
	pub := &fakePublisher{}

	svc := New(Deps{
		Lookups:     f,
		Series:      f,
		Occurrences: fakeOccurrenceStore{f},
		Bookings:    f,
		Publisher:   pub,
		Location:    loc,
		HorizonDays: 30,
		Now:         testNow,
	})

	ctx := context.Background()
	room := &models.Room{Name: "Studio A", Capacity: 20, Active: true}
	_ = f.CreateRoom(ctx, room)
	instructor := &models.Instructor{FirstName: "Anna", LastName: "Nowak", Active: true}
	_ = f.CreateInstructor(ctx, instructor)
	activity := &models.ActivityType{Name: "Yoga"}
	_ = f.CreateActivityType(ctx, activity)

	return svc, f, fixtures{room: room, instructor: instructor, activity: activity, publisher: pub}
}
