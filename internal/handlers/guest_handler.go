package handlers

import (
	"net/http"

	"github.com/adityarizkyr/eventbook/internal/helpers"
	"github.com/adityarizkyr/eventbook/internal/middleware"
	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GuestRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	Email           string `json:"email" binding:"omitempty,email"`
	SpecialRequests string `json:"special_requests"`
}

// ownedBooking loads a booking only if it belongs to the caller. A booking
// that exists but belongs to someone else is reported as not found.
func ownedBooking(c *gin.Context, gormDB *gorm.DB, bookingID, userID uuid.UUID) (*models.Booking, bool) {
	var booking models.Booking
	if err := gormDB.Where("id = ? AND user_id = ?", bookingID, userID).First(&booking).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return nil, false
	}
	return &booking, true
}

// ListGuests returns the guest list of the caller's own booking.
func ListGuests(c *gin.Context) {
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

	booking, ok := ownedBooking(c, gormDB, bookingID, userID)
	if !ok {
		return
	}

	var guests []models.Guest
	if err := gormDB.Where("booking_id = ?", booking.ID).Order("created_at").Find(&guests).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error fetching guests.")
		return
	}

	c.JSON(http.StatusOK, guests)
}

// AddGuest attaches a guest to the caller's own booking.
func AddGuest(c *gin.Context) {
	bookingID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking id.")
		return
	}

	var req GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Guest full name is required.")
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

	booking, ok := ownedBooking(c, gormDB, bookingID, userID)
	if !ok {
		return
	}

	guest := models.Guest{
		FullName:        req.FullName,
		Email:           req.Email,
		SpecialRequests: req.SpecialRequests,
		BookingID:       booking.ID,
	}

	if err := gormDB.Create(&guest).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error adding guest.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Guest added.",
		"guest_id": guest.ID,
	})
}
