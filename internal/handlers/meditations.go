package handlers

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/Karansehgal0611/meditation-app/internal/repository"
	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type StartMeditationRequest struct {
	MeditationType string `json:"meditationType" binding:"omitempty,oneof=focus loving-kindness mindfulness gratitude other"`
}

type NotesRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

// StartMeditation opens a new session for the caller
func StartMeditation(meditations MeditationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		var req StartMeditationRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		m := &models.Meditation{
			UserID:         userID,
			StartTime:      time.Now(),
			MeditationType: req.MeditationType,
		}
		if err := meditations.Start(c.Request.Context(), m); err != nil {
			serverError(c, "Failed to start meditation", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "meditation": m.ToResponse()})
	}
}

// EndMeditation completes one of the caller's open sessions and returns the
// updated streak
func EndMeditation(sessions SessionCompleter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		sessionID, ok := parseIDParam(c, "id", "Invalid session ID")
		if !ok {
			return
		}

		result, err := sessions.Complete(c.Request.Context(), sessionID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Meditation session not found or already completed"})
				return
			}
			serverError(c, "Failed to end meditation", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"meditation": result.Meditation.ToResponse(),
			"streak":     result.Streak,
		})
	}
}

// UpdateNotes sets the notes on one of the caller's sessions
func UpdateNotes(meditations MeditationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		sessionID, ok := parseIDParam(c, "id", "Invalid session ID")
		if !ok {
			return
		}

		var req NotesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		m, err := meditations.UpdateNotes(c.Request.Context(), sessionID, userID, req.Notes)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Meditation session not found"})
				return
			}
			serverError(c, "Failed to update notes", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "meditation": m.ToResponse()})
	}
}

// GetHistory returns one page of the caller's sessions, newest first
func GetHistory(meditations MeditationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
		if err != nil || limit < 1 || limit > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}

		list, total, err := meditations.History(c.Request.Context(), userID, limit, (page-1)*limit)
		if err != nil {
			serverError(c, "Failed to query meditation history", err)
			return
		}

		responses := make([]models.MeditationResponse, 0, len(list))
		for i := range list {
			responses = append(responses, list[i].ToResponse())
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"meditations": responses,
			"pagination": models.Pagination{
				Total: total,
				Page:  page,
				Pages: int(math.Ceil(float64(total) / float64(limit))),
			},
		})
	}
}

// GetStats summarizes the caller's completed sessions
func GetStats(meditations MeditationStore, users UserStore, clock DayClock) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		stats, err := meditations.Stats(c.Request.Context(), userID, clock.StartOfToday())
		if err != nil {
			serverError(c, "Failed to query meditation stats", err)
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
		stats.Streak = user.Streak
		stats.LongestStreak = user.LongestStreak

		c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
	}
}

// GetActive returns the caller's open session, if any
func GetActive(meditations MeditationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		m, err := meditations.Active(c.Request.Context(), userID)
		if err != nil {
			serverError(c, "Failed to query active meditation", err)
			return
		}

		var active *models.MeditationResponse
		if m != nil {
			resp := m.ToResponse()
			active = &resp
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "hasActive": m != nil, "meditation": active})
	}
}
