package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/adityarizkyr/eventbook/internal/bookings"
	"github.com/adityarizkyr/eventbook/internal/helpers"
	"github.com/adityarizkyr/eventbook/internal/middleware"
	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

type BookingRequest struct {
	EventID uuid.UUID `json:"event_id" binding:"required"`
}

type BookingUpdateRequest struct {
	EventID *uuid.UUID `json:"event_id"`
	Status  *string    `json:"status"`
}

// bookingListing is the client's my-bookings view joined with event and
// venue details.
type bookingListing struct {
	BookingID    uuid.UUID `json:"booking_id"`
	BookingDate  time.Time `json:"booking_date"`
	Status       string    `json:"status"`
	EventTitle   string    `json:"event_title"`
	EventDate    time.Time `json:"event_date"`
	TicketPrice  float64   `json:"ticket_price"`
	VenueName    string    `json:"venue_name"`
	VenueAddress string    `json:"venue_address"`
}

// respondBookingError translates the validation engine's domain errors into
// HTTP statuses. Anything unrecognized surfaces as a generic 500.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bookings.ErrEventNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Event does not exist.")
	case errors.Is(err, bookings.ErrBookingNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
	case errors.Is(err, bookings.ErrEventFull):
		helpers.RespondWithError(c, http.StatusConflict, "Event is fully booked.")
	case errors.Is(err, bookings.ErrDuplicateBooking):
		helpers.RespondWithError(c, http.StatusConflict, "You already booked this event.")
	case errors.Is(err, bookings.ErrScheduleConflict):
		helpers.RespondWithError(c, http.StatusConflict, "You already have a booking for another event on this date.")
	case errors.Is(err, bookings.ErrEventPassed):
		helpers.RespondWithError(c, http.StatusConflict, "Event date has already passed.")
	case errors.Is(err, bookings.ErrInvalidStatus):
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking status.")
	default:
		log.Printf("Booking error: %v", err)
		helpers.RespondWithError(c, http.StatusInternalServerError, "Server error during booking.")
	}
}

// ListMyBookings returns the caller's bookings, newest first.
func ListMyBookings(c *gin.Context) {
	userID, ok := helpers.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var listings []bookingListing
	err := gormDB.Model(&models.Booking{}).
		Select("bookings.id AS booking_id, bookings.booking_date, bookings.status, events.title AS event_title, events.event_date, events.ticket_price, venues.name AS venue_name, venues.address AS venue_address").
		Joins("JOIN events ON events.id = bookings.event_id").
		Joins("JOIN venues ON venues.id = events.venue_id").
		Where("bookings.user_id = ?", userID).
		Order("bookings.booking_date DESC").
		Scan(&listings).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Server error while fetching client bookings.")
		return
	}

	c.JSON(http.StatusOK, listings)
}

// CreateBooking runs the full validation engine and inserts a Pending
// booking on success.
func CreateBooking(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "event_id is required.")
		return
	}

	userID, ok := helpers.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	svc := bookings.NewService(bookings.NewGormStore(gormDB))
	booking, err := svc.Create(c.Request.Context(), userID, req.EventID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Booking successful.",
		"booking_id": booking.ID,
		"status":     booking.Status,
	})
}

// UpdateBooking moves the caller's booking to another event and/or sets its
// status. Moving re-runs the capacity, duplicate and conflict checks
// against the target event.
func UpdateBooking(c *gin.Context) {
	bookingID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking id.")
		return
	}

	var req BookingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if req.EventID == nil && req.Status == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "No fields to update.")
		return
	}

	userID, ok := helpers.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	svc := bookings.NewService(bookings.NewGormStore(gormDB))
	booking, err := svc.Update(c.Request.Context(), bookingID, userID, bookings.UpdateRequest{
		EventID: req.EventID,
		Status:  req.Status,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking updated.",
		"booking": gin.H{
			"id":       booking.ID,
			"event_id": booking.EventID,
			"status":   booking.Status,
		},
	})
}

// CancelBooking flips the caller's own booking to Cancelled. Mounted on
// both PUT /bookings/:id/cancel and DELETE /bookings/:id.
func CancelBooking(c *gin.Context) {
	bookingID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking id.")
		return
	}

	userID, ok := helpers.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	svc := bookings.NewService(bookings.NewGormStore(gormDB))
	if err := svc.Cancel(c.Request.Context(), bookingID, userID); err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled."})
}

// BookingQR renders the caller's booking reference as a PNG QR code for
// door check-in.
func BookingQR(c *gin.Context) {
	bookingID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking id.")
		return
	}

	userID, ok := helpers.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var booking models.Booking
	if err := gormDB.Where("id = ? AND user_id = ?", bookingID, userID).First(&booking).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return
	}

	payload := fmt.Sprintf("booking:%s|event:%s|status:%s", booking.ID, booking.EventID, booking.Status)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
