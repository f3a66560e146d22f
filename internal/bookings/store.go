package bookings

import (
	"context"
	"time"

	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence surface the booking service validates against.
// Transact runs fn against a store whose reads and writes form a single
// atomic unit; EventForUpdate must additionally hold a write lock on the
// event row until the unit commits, so capacity checks serialize per event.
type Store interface {
	Transact(ctx context.Context, fn func(tx Store) error) error

	EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	EventForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error)

	CountActiveBookings(ctx context.Context, eventID uuid.UUID) (int, error)
	HasActiveBooking(ctx context.Context, userID, eventID, excludeBooking uuid.UUID) (bool, error)
	HasActiveBookingOnDate(ctx context.Context, userID, excludeEvent uuid.UUID, date time.Time, excludeBooking uuid.UUID) (bool, error)

	InsertBooking(ctx context.Context, booking *models.Booking) error
	BookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	BookingOwnedBy(ctx context.Context, id, userID uuid.UUID) (*models.Booking, error)
	SaveBooking(ctx context.Context, booking *models.Booking) error
}
