package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/adityarizkyr/eventbook/internal/bookings"
	"github.com/adityarizkyr/eventbook/internal/helpers"
	"github.com/adityarizkyr/eventbook/internal/middleware"
	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// adminBookingListing is the dashboard view of all bookings joined with
// the client, event and venue.
type adminBookingListing struct {
	BookingID   uuid.UUID `json:"booking_id"`
	BookingDate time.Time `json:"booking_date"`
	Status      string    `json:"status"`
	ClientName  string    `json:"client_name"`
	EventTitle  string    `json:"event_title"`
	EventDate   time.Time `json:"event_date"`
	VenueName   string    `json:"venue_name"`
	Capacity    int       `json:"capacity"`
}

// userListing hides the password hash from the admin user list.
type userListing struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// AdminListBookings returns every booking for the admin dashboard, newest
// first.
func AdminListBookings(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var listings []adminBookingListing
	err := gormDB.Model(&models.Booking{}).
		Select("bookings.id AS booking_id, bookings.booking_date, bookings.status, users.username AS client_name, events.title AS event_title, events.event_date, venues.name AS venue_name, venues.capacity").
		Joins("JOIN users ON users.id = bookings.user_id").
		Joins("JOIN events ON events.id = bookings.event_id").
		Joins("JOIN venues ON venues.id = events.venue_id").
		Order("bookings.booking_date DESC").
		Scan(&listings).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Server error while fetching bookings.")
		return
	}

	c.JSON(http.StatusOK, listings)
}

// ResolveBooking is the admin approval action: PUT /bookings/:id/:action
// with action approve or reject. The flip is a pure status change; capacity
// is not re-validated here.
func ResolveBooking(c *gin.Context) {
	bookingID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking id.")
		return
	}

	var status string
	switch c.Param("action") {
	case "approve":
		status = models.StatusApproved
	case "reject":
		status = models.StatusRejected
	default:
		helpers.RespondWithError(c, http.StatusBadRequest, "Unknown action. Use approve or reject.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	svc := bookings.NewService(bookings.NewGormStore(gormDB))
	booking, err := svc.SetStatus(c.Request.Context(), bookingID, status)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Booking %s.", booking.Status),
		"booking": gin.H{
			"id":     booking.ID,
			"status": booking.Status,
		},
	})
}

// AdminListUsers lists accounts for the admin portal, newest first.
func AdminListUsers(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var users []userListing
	err := gormDB.Model(&models.User{}).
		Select("id AS user_id, username, role").
		Order("created_at DESC").
		Scan(&users).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error fetching users.")
		return
	}

	c.JSON(http.StatusOK, users)
}
