package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Karansehgal0611/meditation-app/internal/auth"
	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/Karansehgal0611/meditation-app/internal/repository"
	"github.com/gin-gonic/gin"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 20
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,excludes=@"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	DailyGoal               *int    `json:"dailyGoal" binding:"omitempty,min=1,max=1440"`
	PreferredMeditationType *string `json:"preferredMeditationType" binding:"omitempty,oneof=focus loving-kindness mindfulness gratitude other"`
}

type AuthResponse struct {
	User  models.UserResponse `json:"user"`
	Token string              `json:"token"`
}

// Register creates an account and returns it with a token
func Register(users UserStore, tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		username := strings.TrimSpace(req.Username)
		if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be between 3 and 20 characters"})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			serverError(c, "Failed to hash password", err)
			return
		}

		user := &models.User{
			Username:     username,
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: hash,
		}
		if err := users.Create(c.Request.Context(), user); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) || errors.Is(err, repository.ErrUsernameTaken) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
				return
			}
			serverError(c, "Failed to create user", err)
			return
		}

		token, err := tokens.GenerateToken(user.ID, user.Username)
		if err != nil {
			serverError(c, "Failed to generate token", err)
			return
		}

		c.JSON(http.StatusCreated, AuthResponse{User: user.ToResponse(), Token: token})
	}
}

// Login authenticates by email or username and returns a token
func Login(users UserStore, tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		email := strings.TrimSpace(req.Email)
		username := strings.TrimSpace(req.Username)

		var user *models.User
		var err error
		switch {
		case email != "":
			user, err = users.GetByEmail(c.Request.Context(), email)
		case username != "":
			user, err = users.GetByUsername(c.Request.Context(), username)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email or username is required"})
			return
		}
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
				return
			}
			serverError(c, "Failed to query user", err)
			return
		}

		if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := tokens.GenerateToken(user.ID, user.Username)
		if err != nil {
			serverError(c, "Failed to generate token", err)
			return
		}

		c.JSON(http.StatusOK, AuthResponse{User: user.ToResponse(), Token: token})
	}
}

// GetMe returns the authenticated user's profile
func GetMe(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			serverError(c, "Failed to query user", err)
			return
		}

		c.JSON(http.StatusOK, user.ToResponse())
	}
}

// UpdateMe changes the daily goal and preferred meditation type
func UpdateMe(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		user, err := users.UpdateProfile(c.Request.Context(), userID, models.ProfileUpdate{
			DailyGoal:               req.DailyGoal,
			PreferredMeditationType: req.PreferredMeditationType,
		})
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			serverError(c, "Failed to update profile", err)
			return
		}

		c.JSON(http.StatusOK, user.ToResponse())
	}
}
