package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/google/uuid"
)

// memData holds the fake store's state. All query logic lives here so the
// locked and unlocked store views share it.
type memData struct {
	events   map[uuid.UUID]*models.Event
	bookings map[uuid.UUID]*models.Booking
}

func newMemData() *memData {
	return &memData{
		events:   make(map[uuid.UUID]*models.Event),
		bookings: make(map[uuid.UUID]*models.Booking),
	}
}

func (d *memData) eventByID(id uuid.UUID) (*models.Event, error) {
	event, ok := d.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (d *memData) countActive(eventID uuid.UUID) int {
	n := 0
	for _, b := range d.bookings {
		if b.EventID == eventID && isActive(b.Status) {
			n++
		}
	}
	return n
}

func (d *memData) hasActive(userID, eventID, excludeBooking uuid.UUID) bool {
	for _, b := range d.bookings {
		if b.ID == excludeBooking {
			continue
		}
		if b.UserID == userID && b.EventID == eventID && isActive(b.Status) {
			return true
		}
	}
	return false
}

func (d *memData) hasActiveOnDate(userID, excludeEvent uuid.UUID, date time.Time, excludeBooking uuid.UUID) bool {
	for _, b := range d.bookings {
		if b.ID == excludeBooking || b.EventID == excludeEvent {
			continue
		}
		if b.UserID != userID || !isActive(b.Status) {
			continue
		}
		event, ok := d.events[b.EventID]
		if !ok {
			continue
		}
		if sameDate(event.EventDate, date) {
			return true
		}
	}
	return false
}

func (d *memData) bookingByID(id uuid.UUID) (*models.Booking, error) {
	booking, ok := d.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func isActive(status string) bool {
	return status == models.StatusPending || status == models.StatusApproved
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// unlockedStore is the view handed to Transact callbacks: the transaction
// already holds the store mutex, so its methods must not relock.
type unlockedStore struct {
	data *memData
}

func (s *unlockedStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	return fn(s)
}

func (s *unlockedStore) EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.data.eventByID(id)
}

func (s *unlockedStore) EventForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.data.eventByID(id)
}

func (s *unlockedStore) CountActiveBookings(ctx context.Context, eventID uuid.UUID) (int, error) {
	return s.data.countActive(eventID), nil
}

func (s *unlockedStore) HasActiveBooking(ctx context.Context, userID, eventID, excludeBooking uuid.UUID) (bool, error) {
	return s.data.hasActive(userID, eventID, excludeBooking), nil
}

func (s *unlockedStore) HasActiveBookingOnDate(ctx context.Context, userID, excludeEvent uuid.UUID, date time.Time, excludeBooking uuid.UUID) (bool, error) {
	return s.data.hasActiveOnDate(userID, excludeEvent, date, excludeBooking), nil
}

func (s *unlockedStore) InsertBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	copied := *booking
	s.data.bookings[booking.ID] = &copied
	return nil
}

func (s *unlockedStore) BookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.data.bookingByID(id)
}

func (s *unlockedStore) BookingOwnedBy(ctx context.Context, id, userID uuid.UUID) (*models.Booking, error) {
	booking, err := s.data.bookingByID(id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *unlockedStore) SaveBooking(ctx context.Context, booking *models.Booking) error {
	copied := *booking
	s.data.bookings[booking.ID] = &copied
	return nil
}

// memoryStore serializes transactions with a mutex, mirroring the row lock
// the gorm store takes on the event. Concurrent Create calls therefore see
// each other's inserts, which is the property the concurrency test checks.
type memoryStore struct {
	mu   sync.Mutex
	data *memData
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: newMemData()}
}

func (s *memoryStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&unlockedStore{data: s.data})
}

func (s *memoryStore) EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.eventByID(id)
}

func (s *memoryStore) EventForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.eventByID(id)
}

func (s *memoryStore) CountActiveBookings(ctx context.Context, eventID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.countActive(eventID), nil
}

func (s *memoryStore) HasActiveBooking(ctx context.Context, userID, eventID, excludeBooking uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.hasActive(userID, eventID, excludeBooking), nil
}

func (s *memoryStore) HasActiveBookingOnDate(ctx context.Context, userID, excludeEvent uuid.UUID, date time.Time, excludeBooking uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.hasActiveOnDate(userID, excludeEvent, date, excludeBooking), nil
}

func (s *memoryStore) InsertBooking(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&unlockedStore{data: s.data}).InsertBooking(ctx, booking)
}

func (s *memoryStore) BookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.bookingByID(id)
}

func (s *memoryStore) BookingOwnedBy(ctx context.Context, id, userID uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&unlockedStore{data: s.data}).BookingOwnedBy(ctx, id, userID)
}

func (s *memoryStore) SaveBooking(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&unlockedStore{data: s.data}).SaveBooking(ctx, booking)
}

func (s *memoryStore) addEvent(capacity int, date time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.data.events[id] = &models.Event{
		ID:        id,
		Title:     "test event",
		EventDate: date,
		VenueID:   uuid.New(),
		Venue:     models.Venue{Capacity: capacity},
	}
	return id
}

func (s *memoryStore) bookingStatus(t *testing.T, id uuid.UUID) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.data.bookings[id]
	if !ok {
		t.Fatalf("booking %s not found in store", id)
	}
	return booking.Status
}

func newTestService() (*Service, *memoryStore) {
	store := newMemoryStore()
	svc := NewService(store)
	return svc, store
}

// futureDate returns noon UTC n days from now, so adding a few hours never
// crosses into the next calendar date.
func futureDate(days int) time.Time {
	t := time.Now().UTC().AddDate(0, 0, days)
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}

func TestAvailability(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(3, futureDate(7))

	if _, err := svc.Create(ctx, uuid.New(), eventID); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	avail, err := svc.Availability(ctx, eventID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if avail.Capacity != 3 || avail.Booked != 1 || avail.Available != 2 {
		t.Errorf("got capacity=%d booked=%d available=%d, want 3/1/2", avail.Capacity, avail.Booked, avail.Available)
	}
	if avail.Status != "Available" {
		t.Errorf("got status %q, want Available", avail.Status)
	}
	if avail.Available != avail.Capacity-avail.Booked {
		t.Errorf("available %d is not capacity-booked", avail.Available)
	}
}

func TestAvailabilitySoldOut(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(1, futureDate(7))

	if _, err := svc.Create(ctx, uuid.New(), eventID); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	avail, err := svc.Availability(ctx, eventID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if avail.Available != 0 || avail.Status != "Sold Out" {
		t.Errorf("got available=%d status=%q, want 0/Sold Out", avail.Available, avail.Status)
	}
}

func TestAvailabilityUnknownEvent(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Availability(context.Background(), uuid.New())
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("got %v, want ErrEventNotFound", err)
	}
}

func TestCreateDefaultsToPending(t *testing.T) {
	svc, store := newTestService()
	eventID := store.addEvent(5, futureDate(7))

	booking, err := svc.Create(context.Background(), uuid.New(), eventID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.Status != models.StatusPending {
		t.Errorf("got status %q, want %q", booking.Status, models.StatusPending)
	}
	if booking.BookingDate.IsZero() {
		t.Error("booking date was not set")
	}
}

func TestCreateUnknownEvent(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("got %v, want ErrEventNotFound", err)
	}
}

func TestCreatePastEvent(t *testing.T) {
	svc, store := newTestService()
	eventID := store.addEvent(5, futureDate(-1))

	_, err := svc.Create(context.Background(), uuid.New(), eventID)
	if !errors.Is(err, ErrEventPassed) {
		t.Fatalf("got %v, want ErrEventPassed", err)
	}
}

func TestCreateDuplicateRejected(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(5, futureDate(7))
	userID := uuid.New()

	if _, err := svc.Create(ctx, userID, eventID); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Create(ctx, userID, eventID); !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("second booking: got %v, want ErrDuplicateBooking", err)
	}

	// The rejection is idempotent: a third attempt fails the same way.
	if _, err := svc.Create(ctx, userID, eventID); !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("third booking: got %v, want ErrDuplicateBooking", err)
	}
}

func TestCreateCapacityScenario(t *testing.T) {
	// Venue capacity 2: users A and B succeed, C is turned away.
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(2, futureDate(7))

	bookingA, err := svc.Create(ctx, uuid.New(), eventID)
	if err != nil {
		t.Fatalf("user A: %v", err)
	}
	if bookingA.Status != models.StatusPending {
		t.Errorf("user A status %q, want Pending", bookingA.Status)
	}
	if _, err := svc.Create(ctx, uuid.New(), eventID); err != nil {
		t.Fatalf("user B: %v", err)
	}
	if _, err := svc.Create(ctx, uuid.New(), eventID); !errors.Is(err, ErrEventFull) {
		t.Fatalf("user C: got %v, want ErrEventFull", err)
	}
}

func TestCreateScheduleConflict(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	date := futureDate(7)
	firstEvent := store.addEvent(5, date)
	secondEvent := store.addEvent(5, date.Add(3*time.Hour))
	userID := uuid.New()

	if _, err := svc.Create(ctx, userID, firstEvent); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Create(ctx, userID, secondEvent); !errors.Is(err, ErrScheduleConflict) {
		t.Fatalf("same-date booking: got %v, want ErrScheduleConflict", err)
	}

	// A different date is fine.
	thirdEvent := store.addEvent(5, futureDate(8))
	if _, err := svc.Create(ctx, userID, thirdEvent); err != nil {
		t.Fatalf("different-date booking: %v", err)
	}
}

func TestCancelReleasesCapacity(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(1, futureDate(7))
	userA := uuid.New()

	booking, err := svc.Create(ctx, userA, eventID)
	if err != nil {
		t.Fatalf("user A: %v", err)
	}
	if err := svc.Cancel(ctx, booking.ID, userA); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.Create(ctx, uuid.New(), eventID); err != nil {
		t.Fatalf("user B after cancel: %v", err)
	}
}

func TestCancelNotOwned(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(5, futureDate(7))
	owner := uuid.New()

	booking, err := svc.Create(ctx, owner, eventID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if err := svc.Cancel(ctx, booking.ID, uuid.New()); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("got %v, want ErrBookingNotFound", err)
	}
	if got := store.bookingStatus(t, booking.ID); got != models.StatusPending {
		t.Errorf("status changed to %q after rejected cancel", got)
	}
}

func TestUpdateMoveRechecksTarget(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	fullEvent := store.addEvent(1, futureDate(7))
	sourceEvent := store.addEvent(5, futureDate(9))
	userID := uuid.New()

	if _, err := svc.Create(ctx, uuid.New(), fullEvent); err != nil {
		t.Fatalf("fill target event: %v", err)
	}
	booking, err := svc.Create(ctx, userID, sourceEvent)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	_, err = svc.Update(ctx, booking.ID, userID, UpdateRequest{EventID: &fullEvent})
	if !errors.Is(err, ErrEventFull) {
		t.Fatalf("move to full event: got %v, want ErrEventFull", err)
	}
}

func TestUpdateMoveExcludesOwnBooking(t *testing.T) {
	// Moving a booking to another event on the same date must not trip the
	// schedule-conflict check on the booking being moved.
	svc, store := newTestService()
	ctx := context.Background()
	date := futureDate(7)
	sourceEvent := store.addEvent(5, date)
	targetEvent := store.addEvent(5, date.Add(2*time.Hour))
	userID := uuid.New()

	booking, err := svc.Create(ctx, userID, sourceEvent)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	updated, err := svc.Update(ctx, booking.ID, userID, UpdateRequest{EventID: &targetEvent})
	if err != nil {
		t.Fatalf("move booking: %v", err)
	}
	if updated.EventID != targetEvent {
		t.Errorf("booking still on event %s", updated.EventID)
	}
}

func TestUpdateNotOwned(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(5, futureDate(7))

	booking, err := svc.Create(ctx, uuid.New(), eventID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	status := models.StatusCancelled
	_, err = svc.Update(ctx, booking.ID, uuid.New(), UpdateRequest{Status: &status})
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("got %v, want ErrBookingNotFound", err)
	}
}

func TestUpdateInvalidStatus(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(5, futureDate(7))
	userID := uuid.New()

	booking, err := svc.Create(ctx, userID, eventID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	status := "confirmed"
	_, err = svc.Update(ctx, booking.ID, userID, UpdateRequest{Status: &status})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("got %v, want ErrInvalidStatus", err)
	}
}

func TestSetStatusApprove(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(5, futureDate(7))

	target, err := svc.Create(ctx, uuid.New(), eventID)
	if err != nil {
		t.Fatalf("create target booking: %v", err)
	}
	other, err := svc.Create(ctx, uuid.New(), eventID)
	if err != nil {
		t.Fatalf("create other booking: %v", err)
	}

	approved, err := svc.SetStatus(ctx, target.ID, models.StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Errorf("got status %q, want Approved", approved.Status)
	}
	if got := store.bookingStatus(t, other.ID); got != models.StatusPending {
		t.Errorf("unrelated booking status changed to %q", got)
	}
}

func TestSetStatusUnknownBooking(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.SetStatus(context.Background(), uuid.New(), models.StatusApproved)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("got %v, want ErrBookingNotFound", err)
	}
}

func TestConcurrentCreateCapacityOne(t *testing.T) {
	// The serialized store mirrors the row lock the SQL store takes, so N
	// racing requests against capacity 1 must yield exactly one success.
	svc, store := newTestService()
	ctx := context.Background()
	eventID := store.addEvent(1, futureDate(7))

	const attempts = 25
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, uuid.New(), eventID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, fullRejections := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrEventFull):
			fullRejections++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("got %d successful bookings, want exactly 1", successes)
	}
	if fullRejections != attempts-1 {
		t.Errorf("got %d fully-booked rejections, want %d", fullRejections, attempts-1)
	}

	booked, err := store.CountActiveBookings(ctx, eventID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if booked != 1 {
		t.Errorf("event holds %d active bookings, capacity is 1", booked)
	}
}
