package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeStatuses are the statuses that occupy a seat. Rejected and
// Cancelled bookings release their capacity.
var activeStatuses = []string{models.StatusPending, models.StatusApproved}

// GormStore backs the booking store with Postgres through gorm. Transact
// maps to a database transaction and EventForUpdate to SELECT ... FOR
// UPDATE on the event row.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Preload("Venue").Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (s *GormStore) EventForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	// The lock clause only applies to the events row; the venue is read
	// separately since its capacity is not mutated by booking flows.
	if err := s.db.WithContext(ctx).Where("id = ?", event.VenueID).First(&event.Venue).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *GormStore) CountActiveBookings(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("event_id = ? AND status IN ?", eventID, activeStatuses).
		Count(&count).Error
	return int(count), err
}

func (s *GormStore) HasActiveBooking(ctx context.Context, userID, eventID, excludeBooking uuid.UUID) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("user_id = ? AND event_id = ? AND status IN ?", userID, eventID, activeStatuses)
	if excludeBooking != uuid.Nil {
		query = query.Where("id <> ?", excludeBooking)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (s *GormStore) HasActiveBookingOnDate(ctx context.Context, userID, excludeEvent uuid.UUID, date time.Time, excludeBooking uuid.UUID) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Joins("JOIN events ON events.id = bookings.event_id AND events.deleted_at IS NULL").
		Where("bookings.user_id = ? AND bookings.status IN ?", userID, activeStatuses).
		Where("bookings.event_id <> ?", excludeEvent).
		Where("events.event_date::date = ?::date", date)
	if excludeBooking != uuid.Nil {
		query = query.Where("bookings.id <> ?", excludeBooking)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (s *GormStore) InsertBooking(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Create(booking).Error
}

func (s *GormStore) BookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *GormStore) BookingOwnedBy(ctx context.Context, id, userID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *GormStore) SaveBooking(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Save(booking).Error
}
