package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/adityarizkyr/eventbook/internal/bookings"
	"github.com/adityarizkyr/eventbook/internal/helpers"
	"github.com/adityarizkyr/eventbook/internal/middleware"
	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date" binding:"required"`
	TicketPrice float64   `json:"ticket_price"`
	VenueID     uuid.UUID `json:"venue_id" binding:"required"`
}

type EventUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	EventDate   *time.Time `json:"event_date"`
	TicketPrice *float64   `json:"ticket_price"`
	VenueID     *uuid.UUID `json:"venue_id"`
}

// eventListing is the public events view joined with the hosting venue.
type eventListing struct {
	EventID      uuid.UUID `json:"event_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	EventDate    time.Time `json:"event_date"`
	TicketPrice  float64   `json:"ticket_price"`
	VenueName    string    `json:"venue_name"`
	VenueAddress string    `json:"venue_address"`
}

// ListEvents is the public browse view: events with their venue info,
// soonest first, paginated.
func ListEvents(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := gormDB.Model(&models.Event{}).
		Joins("JOIN venues ON venues.id = events.venue_id")

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Server error while fetching events.")
		return
	}

	var events []eventListing
	offset := (pageNum - 1) * limitNum
	err = query.
		Select("events.id AS event_id, events.title, events.description, events.event_date, events.ticket_price, venues.name AS venue_name, venues.address AS venue_address").
		Order("events.event_date").
		Offset(offset).Limit(limitNum).
		Scan(&events).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Server error while fetching events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":      events,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

// GetAvailability reports remaining capacity for one event.
func GetAvailability(c *gin.Context) {
	eventID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event id.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	svc := bookings.NewService(bookings.NewGormStore(gormDB))
	availability, err := svc.Availability(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, bookings.ErrEventNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Server error while checking availability.")
		return
	}

	c.JSON(http.StatusOK, availability)
}

// AdminListEvents returns full event rows with venues for the admin portal.
func AdminListEvents(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var events []models.Event
	if err := gormDB.Preload("Venue").Order("event_date").Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error fetching events.")
		return
	}

	c.JSON(http.StatusOK, events)
}

func CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var venue models.Venue
	if err := gormDB.Where("id = ?", req.VenueID).First(&venue).Error; err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Venue does not exist.")
		return
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		TicketPrice: req.TicketPrice,
		VenueID:     venue.ID,
	}

	if err := gormDB.Create(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Event created successfully.",
		"event_id": event.ID,
	})
}

// UpdateEvent applies a partial update: only the fields present in the
// request body are written.
func UpdateEvent(c *gin.Context) {
	eventID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event id.")
		return
	}

	var req EventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", eventID).First(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.EventDate != nil {
		updates["event_date"] = *req.EventDate
	}
	if req.TicketPrice != nil {
		updates["ticket_price"] = *req.TicketPrice
	}
	if req.VenueID != nil {
		var venue models.Venue
		if err := gormDB.Where("id = ?", *req.VenueID).First(&venue).Error; err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Venue does not exist.")
			return
		}
		updates["venue_id"] = *req.VenueID
	}

	if len(updates) == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "No fields to update.")
		return
	}

	if err := gormDB.Model(&event).Updates(updates).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

// DeleteEvent removes an event unless bookings reference it.
func DeleteEvent(c *gin.Context) {
	eventID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event id.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var bookingCount int64
	if err := gormDB.Model(&models.Booking{}).Where("event_id = ?", eventID).Count(&bookingCount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}
	if bookingCount > 0 {
		helpers.RespondWithError(c, http.StatusConflict, "Event has existing bookings and cannot be deleted.")
		return
	}

	result := gormDB.Where("id = ?", eventID).Delete(&models.Event{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully.",
	})
}
