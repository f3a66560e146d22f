package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Guest struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	FullName        string    `gorm:"not null"`
	Email           string
	SpecialRequests string
	BookingID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (guest *Guest) BeforeCreate(tx *gorm.DB) (err error) {
	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	return
}
