package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adityarizkyr/eventbook/internal/middleware"
	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/adityarizkyr/eventbook/internal/token"
)

const testSecret = "handlers-test-secret"

// setupTestDB opens an in-memory sqlite database with the full schema. The
// pool is pinned to one connection so every query sees the same memory
// database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.Venue{}, &models.Event{}, &models.Booking{}, &models.Guest{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// setupTestRouter wires the handlers under test with the same middleware
// chain the server uses.
func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))

	api := r.Group("/api")
	api.POST("/auth/register", Register)
	api.POST("/auth/login", Login)

	client := api.Group("")
	client.Use(middleware.JWTAuthMiddleware(testSecret), middleware.RequireRole(models.RoleClient))
	{
		client.GET("/bookings/:id/guests", ListGuests)
		client.POST("/bookings/:id/guests", AddGuest)
	}
	return r
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func createTestBooking(t *testing.T, db *gorm.DB, owner *models.User) *models.Booking {
	t.Helper()

	venue := models.Venue{Name: "City Hall", Capacity: 50}
	if err := db.Create(&venue).Error; err != nil {
		t.Fatalf("create venue: %v", err)
	}
	event := models.Event{
		Title:     "Jazz Night",
		EventDate: time.Now().UTC().AddDate(0, 0, 14),
		VenueID:   venue.ID,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	booking := models.Booking{
		BookingDate: time.Now().UTC(),
		Status:      models.StatusPending,
		UserID:      owner.ID,
		EventID:     event.ID,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return &booking
}

func bearerFor(t *testing.T, user *models.User) string {
	t.Helper()
	signed, err := token.Issue(testSecret, user.ID, user.Username, user.Role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + signed
}

func doJSON(r *gin.Engine, method, path, body, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func countGuests(t *testing.T, db *gorm.DB, bookingID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Guest{}).Where("booking_id = ?", bookingID).Count(&n).Error; err != nil {
		t.Fatalf("count guests: %v", err)
	}
	return n
}
