package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/adityarizkyr/eventbook/internal/helpers"
	"github.com/adityarizkyr/eventbook/internal/middleware"
	"github.com/adityarizkyr/eventbook/internal/models"
	"github.com/adityarizkyr/eventbook/internal/token"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a client account and logs it in immediately. The role is
// fixed at creation; admin accounts are seeded, never registered.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Username and password are required for registration.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var existingUser models.User
	if result := gormDB.Where("username = ?", req.Username).First(&existingUser); result.Error == nil {
		helpers.RespondWithError(c, http.StatusConflict, "Username already taken.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to hash the password.")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleClient,
	}

	if err := gormDB.Create(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	tokenString, ok := signToken(c, &user)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Client registration successful.",
		"user_id": user.ID,
		"token":   tokenString,
	})
}

// Login authenticates a client account. Admin accounts must use the admin
// portal login instead.
func Login(c *gin.Context) {
	user, ok := authenticate(c)
	if !ok {
		return
	}

	if user.Role != models.RoleClient {
		helpers.RespondWithError(c, http.StatusForbidden, "Access denied. Only client accounts can use this login endpoint.")
		return
	}

	issueLoginToken(c, user)
}

// AdminLogin authenticates an admin account for the admin portal.
func AdminLogin(c *gin.Context) {
	user, ok := authenticate(c)
	if !ok {
		return
	}

	if user.Role != models.RoleAdmin {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	issueLoginToken(c, user)
}

func authenticate(c *gin.Context) (*models.User, bool) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Username and password are required.")
		return nil, false
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, false
	}

	var user models.User
	if err := gormDB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return nil, false
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return nil, false
	}

	return &user, true
}

// signToken issues a bearer token for the user, guarding against a missing
// signing secret. On failure the error response is already written.
func signToken(c *gin.Context, user *models.User) (string, bool) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		helpers.RespondWithError(c, http.StatusInternalServerError, "JWT_SECRET not configured.")
		return "", false
	}

	tokenString, err := token.Issue(secret, user.ID, user.Username, user.Role)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return "", false
	}

	return tokenString, true
}

func issueLoginToken(c *gin.Context, user *models.User) {
	tokenString, ok := signToken(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful.",
		"token":   tokenString,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}
