package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Canonical booking statuses. Pending is the creation default; an admin
// resolves it to Approved or Rejected, and the owner may flip it to
// Cancelled at any time.
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

// ValidStatus reports whether s is one of the canonical booking statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	BookingDate time.Time `gorm:"not null"`
	Status      string    `gorm:"not null;default:'Pending'"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	User        User
	EventID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Event       Event
	Guests      []Guest `gorm:"foreignKey:BookingID"`
}

func (booking *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return
}
