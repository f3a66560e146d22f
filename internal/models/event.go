package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Title       string    `gorm:"not null"`
	Description string
	EventDate   time.Time `gorm:"not null;index"`
	TicketPrice float64   `gorm:"not null;default:0"`
	VenueID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Venue       Venue
	Bookings    []Booking `gorm:"foreignKey:EventID"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}
