// Package bookings implements the booking validation engine: capacity,
// duplicate and schedule-conflict checks on booking creation and updates,
// plus the availability query. All multi-step validation runs inside a
// store transaction holding a row lock on the event, so two concurrent
// requests cannot both pass the capacity check.
package bookings

import (
	"context"
	"time"

	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/google/uuid"
)

// Availability is the remaining-capacity document for one event.
type Availability struct {
	EventID   uuid.UUID `json:"event_id"`
	Capacity  int       `json:"capacity"`
	Booked    int       `json:"booked"`
	Available int       `json:"available"`
	Status    string    `json:"status"`
}

// UpdateRequest carries the optional mutations of a booking update. A nil
// field is left untouched.
type UpdateRequest struct {
	EventID *uuid.UUID
	Status  *string
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create books the event for the user. The event must exist, lie in the
// future, have spare capacity, and not collide with the user's existing
// active bookings (same event, or another event on the same date). The new
// booking starts as Pending until an admin resolves it.
func (s *Service) Create(ctx context.Context, userID, eventID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking

	err := s.store.Transact(ctx, func(tx Store) error {
		event, err := tx.EventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		if err := s.checkBookable(ctx, tx, userID, event, uuid.Nil); err != nil {
			return err
		}

		booking = &models.Booking{
			BookingDate: s.now(),
			Status:      models.StatusPending,
			UserID:      userID,
			EventID:     event.ID,
		}
		return tx.InsertBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// Availability reports capacity, active booking count and the derived
// remaining seats for an event. Pure read.
func (s *Service) Availability(ctx context.Context, eventID uuid.UUID) (*Availability, error) {
	event, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	booked, err := s.store.CountActiveBookings(ctx, eventID)
	if err != nil {
		return nil, err
	}

	available := event.Venue.Capacity - booked
	status := "Sold Out"
	if available > 0 {
		status = "Available"
	}

	return &Availability{
		EventID:   event.ID,
		Capacity:  event.Venue.Capacity,
		Booked:    booked,
		Available: available,
		Status:    status,
	}, nil
}

// Update mutates the caller's own booking. A booking that does not exist or
// belongs to someone else yields ErrBookingNotFound either way. Moving the
// booking to a new event re-runs the full validation against that event,
// excluding the booking being moved from the counts. Status changes are
// applied directly; there is no state machine between statuses.
func (s *Service) Update(ctx context.Context, bookingID, userID uuid.UUID, req UpdateRequest) (*models.Booking, error) {
	var booking *models.Booking

	err := s.store.Transact(ctx, func(tx Store) error {
		var err error
		booking, err = tx.BookingOwnedBy(ctx, bookingID, userID)
		if err != nil {
			return err
		}

		if req.EventID != nil && *req.EventID != booking.EventID {
			event, err := tx.EventForUpdate(ctx, *req.EventID)
			if err != nil {
				return err
			}
			if err := s.checkBookable(ctx, tx, userID, event, booking.ID); err != nil {
				return err
			}
			booking.EventID = event.ID
		}

		if req.Status != nil {
			if !models.ValidStatus(*req.Status) {
				return ErrInvalidStatus
			}
			booking.Status = *req.Status
		}

		return tx.SaveBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// Cancel flips the caller's own booking to Cancelled. Cancelled bookings no
// longer count against the venue capacity.
func (s *Service) Cancel(ctx context.Context, bookingID, userID uuid.UUID) error {
	booking, err := s.store.BookingOwnedBy(ctx, bookingID, userID)
	if err != nil {
		return err
	}

	booking.Status = models.StatusCancelled
	return s.store.SaveBooking(ctx, booking)
}

// SetStatus is the admin resolution flip (approve/reject). Capacity is not
// re-validated here: approval is a pure status change, mirroring how the
// booking was admitted at creation time.
func (s *Service) SetStatus(ctx context.Context, bookingID uuid.UUID, status string) (*models.Booking, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	booking.Status = status
	if err := s.store.SaveBooking(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// checkBookable runs the creation-time business rules against an event the
// transaction already holds a lock on. excludeBooking is the booking being
// moved during an update, or uuid.Nil on creation.
func (s *Service) checkBookable(ctx context.Context, tx Store, userID uuid.UUID, event *models.Event, excludeBooking uuid.UUID) error {
	if event.EventDate.Before(s.now()) {
		return ErrEventPassed
	}

	booked, err := tx.CountActiveBookings(ctx, event.ID)
	if err != nil {
		return err
	}
	if booked >= event.Venue.Capacity {
		return ErrEventFull
	}

	duplicate, err := tx.HasActiveBooking(ctx, userID, event.ID, excludeBooking)
	if err != nil {
		return err
	}
	if duplicate {
		return ErrDuplicateBooking
	}

	clash, err := tx.HasActiveBookingOnDate(ctx, userID, event.ID, event.EventDate, excludeBooking)
	if err != nil {
		return err
	}
	if clash {
		return ErrScheduleConflict
	}

	return nil
}
