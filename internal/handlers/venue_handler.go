package handlers

import (
	"net/http"

	"github.com/adityarizkyr/eventbook/internal/helpers"
	"github.com/adityarizkyr/eventbook/internal/middleware"
	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/gin-gonic/gin"
)

type VenueRequest struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
}

type VenueUpdateRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Capacity *int    `json:"capacity"`
}

// ListVenues serves both the public browse view and the admin portal.
func ListVenues(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var venues []models.Venue
	if err := gormDB.Order("name").Find(&venues).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Server error while fetching venues.")
		return
	}

	c.JSON(http.StatusOK, venues)
}

func CreateVenue(c *gin.Context) {
	var req VenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	venue := models.Venue{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
	}

	if err := gormDB.Create(&venue).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error creating venue.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Venue created.",
		"venue_id": venue.ID,
	})
}

// UpdateVenue applies a partial update of the provided fields.
func UpdateVenue(c *gin.Context) {
	venueID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid venue id.")
		return
	}

	var req VenueUpdateRequest
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
	if err := gormDB.Where("id = ?", venueID).First(&venue).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Venue not found.")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			helpers.RespondWithError(c, http.StatusBadRequest, "Capacity must be a positive integer.")
			return
		}
		updates["capacity"] = *req.Capacity
	}

	if len(updates) == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "No fields to update.")
		return
	}

	if err := gormDB.Model(&venue).Updates(updates).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update venue.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Venue updated successfully.",
		"venue":   venue,
	})
}

// DeleteVenue removes a venue unless events still reference it.
func DeleteVenue(c *gin.Context) {
	venueID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid venue id.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var eventCount int64
	if err := gormDB.Model(&models.Event{}).Where("venue_id = ?", venueID).Count(&eventCount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete venue.")
		return
	}
	if eventCount > 0 {
		helpers.RespondWithError(c, http.StatusConflict, "Venue has scheduled events and cannot be deleted.")
		return
	}

	result := gormDB.Where("id = ?", venueID).Delete(&models.Venue{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete venue.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "Venue not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Venue deleted successfully.",
	})
}
