package server

import (
	"fmt"
	"os"
	"time"

	"github.com/adityarizkyr/eventbook/config"
	"github.com/adityarizkyr/eventbook/internal/handlers"
	"github.com/adityarizkyr/eventbook/internal/middleware"
	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	setupRoutes(r, db, cfg)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	r.Use(middleware.DatabaseMiddleware(db))

	// Credential endpoints get a per-IP limiter; the rest of the API is
	// unlimited.
	loginLimiter := middleware.RateLimitMiddleware(rate.Every(time.Second), 5)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Use(loginLimiter)
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	public := api.Group("")
	{
		public.GET("/events", handlers.ListEvents)
		public.GET("/venues", handlers.ListVenues)
		public.GET("/events/:id/availability", handlers.GetAvailability)
	}

	client := api.Group("")
	client.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.RequireRole(models.RoleClient))
	{
		client.GET("/my-bookings", handlers.ListMyBookings)
		client.POST("/bookings", handlers.CreateBooking)
		client.PUT("/bookings/:id", handlers.UpdateBooking)
		client.PUT("/bookings/:id/cancel", handlers.CancelBooking)
		client.DELETE("/bookings/:id", handlers.CancelBooking)
		client.GET("/bookings/:id/guests", handlers.ListGuests)
		client.POST("/bookings/:id/guests", handlers.AddGuest)
		client.GET("/bookings/:id/qr", handlers.BookingQR)
	}

	adminPublic := api.Group("/admin")
	adminPublic.POST("/login", loginLimiter, handlers.AdminLogin)

	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/bookings", handlers.AdminListBookings)
		admin.PUT("/bookings/:id/:action", handlers.ResolveBooking)

		admin.GET("/venues", handlers.ListVenues)
		admin.POST("/venues", handlers.CreateVenue)
		admin.PUT("/venues/:id", handlers.UpdateVenue)
		admin.DELETE("/venues/:id", handlers.DeleteVenue)

		admin.GET("/events", handlers.AdminListEvents)
		admin.POST("/events", handlers.CreateEvent)
		admin.PUT("/events/:id", handlers.UpdateEvent)
		admin.DELETE("/events/:id", handlers.DeleteEvent)

		admin.GET("/users", handlers.AdminListUsers)
	}
}
