package bookings

import "errors"

// ErrEventNotFound is returned when the referenced event does not exist.
var ErrEventNotFound = errors.New("event does not exist")

// ErrBookingNotFound is returned when a booking does not exist or does not
// belong to the caller. Ownership failures use the same error so the API
// never reveals the existence of other users' bookings.
var ErrBookingNotFound = errors.New("booking not found")

// ErrEventFull is returned when an event has no remaining capacity.
var ErrEventFull = errors.New("event is fully booked")

// ErrDuplicateBooking is returned when the user already holds an active
// booking for the same event.
var ErrDuplicateBooking = errors.New("already booked this event")

// ErrScheduleConflict is returned when the user already holds an active
// booking for another event on the same date.
var ErrScheduleConflict = errors.New("schedule conflict with another booking")

// ErrEventPassed is returned when the event date is already in the past.
var ErrEventPassed = errors.New("event date has passed")

// ErrInvalidStatus is returned when a status value is outside the canonical
// enumeration.
var ErrInvalidStatus = errors.New("invalid booking status")
