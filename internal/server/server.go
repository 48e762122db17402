// Package server assembles the HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/handlers"
	"github.com/Karansehgal0611/meditation-app/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Tokens is implemented by *auth.JWTService
type Tokens interface {
	handlers.TokenIssuer
	middleware.TokenValidator
}

type Deps struct {
	Version        string
	AllowedOrigins []string
	Tokens         Tokens
	Users          handlers.UserStore
	Groups         handlers.GroupStore
	Meditations    handlers.MeditationStore
	Sessions       handlers.SessionCompleter
	Clock          handlers.DayClock
	// Health reports database reachability; nil skips the check
	Health    func(ctx context.Context) error
	PoolStats func() map[string]interface{}
}

// New builds the gin engine with every route mounted
func New(d Deps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"version": d.Version,
					"error":   err.Error(),
				})
				return
			}
		}
		resp := gin.H{
			"status":  "healthy",
			"version": d.Version,
		}
		if d.PoolStats != nil {
			resp["database"] = d.PoolStats()
		}
		c.JSON(http.StatusOK, resp)
	})

	r.GET("/api/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": d.Version,
			"service": "meditation-app",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Meditation App API",
			"version": d.Version,
		})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", handlers.Register(d.Users, d.Tokens))
		authGroup.POST("/login", handlers.Login(d.Users, d.Tokens))
		authGroup.GET("/me", middleware.RequireAuth(d.Tokens), handlers.GetMe(d.Users))
		authGroup.PUT("/me", middleware.RequireAuth(d.Tokens), handlers.UpdateMe(d.Users))
	}

	groups := api.Group("/groups", middleware.RequireAuth(d.Tokens))
	{
		groups.POST("", handlers.CreateGroup(d.Groups))
		groups.GET("", handlers.ListGroups(d.Groups))
		groups.POST("/join", handlers.JoinGroup(d.Groups))
		groups.POST("/leave/:id", handlers.LeaveGroup(d.Groups))
		groups.GET("/:id", handlers.GetGroup(d.Groups))
		groups.PUT("/:id", handlers.UpdateGroup(d.Groups))
		groups.GET("/:id/progress", handlers.GetGroupProgress(d.Groups, d.Clock))
	}

	meditations := api.Group("/meditations", middleware.RequireAuth(d.Tokens))
	{
		meditations.POST("/start", handlers.StartMeditation(d.Meditations))
		meditations.POST("/end/:id", handlers.EndMeditation(d.Sessions))
		meditations.PATCH("/notes/:id", handlers.UpdateNotes(d.Meditations))
		meditations.GET("/history", handlers.GetHistory(d.Meditations))
		meditations.GET("/stats", handlers.GetStats(d.Meditations, d.Users, d.Clock))
		meditations.GET("/active", handlers.GetActive(d.Meditations))
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
