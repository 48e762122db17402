package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/middleware"
	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserStore is implemented by *repository.UserRepository
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.User, error)
}

// GroupStore is implemented by *repository.GroupRepository
type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
	Join(ctx context.Context, joinCode string, userID uuid.UUID) (*models.Group, error)
	Leave(ctx context.Context, groupID, userID uuid.UUID) error
	Update(ctx context.Context, groupID, userID uuid.UUID, update models.GroupUpdate) (*models.Group, error)
	Progress(ctx context.Context, groupID uuid.UUID, since time.Time) ([]models.MemberProgress, error)
}

// MeditationStore is implemented by *repository.MeditationRepository
type MeditationStore interface {
	Start(ctx context.Context, m *models.Meditation) error
	UpdateNotes(ctx context.Context, id, userID uuid.UUID, notes *string) (*models.Meditation, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Meditation, int, error)
	Stats(ctx context.Context, userID uuid.UUID, since time.Time) (*models.UserStats, error)
	Active(ctx context.Context, userID uuid.UUID) (*models.Meditation, error)
}

// SessionCompleter is implemented by *service.SessionService
type SessionCompleter interface {
	Complete(ctx context.Context, sessionID, userID uuid.UUID) (*models.CompletionResult, error)
}

// TokenIssuer is implemented by *auth.JWTService
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, username string) (string, error)
}

// DayClock returns the start of the current day in the streak timezone.
// *streak.Tracker implements it.
type DayClock interface {
	StartOfToday() time.Time
}

func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return uuid.Nil, false
	}
	return userID, true
}

func parseIDParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return uuid.Nil, false
	}
	return id, true
}

func serverError(c *gin.Context, message string, err error) {
	log.Printf("❌ %s: %v", message, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
}
