package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aeroassist/backend/internal/chat"
	"github.com/aeroassist/backend/internal/config"
	"github.com/aeroassist/backend/internal/httpapi/handlers"
	"github.com/aeroassist/backend/internal/httpapi/middleware"
	"github.com/aeroassist/backend/internal/identity"
)

func NewRouter(svc *chat.Service, verifier identity.Verifier, cfg config.Config, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "method not allowed"})
	})

	h := handlers.New(svc, cfg, log)

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/debug/auth", h.DebugAuth)
	r.GET("/debug/env", h.DebugEnv)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(verifier, log))
	authGroup.POST("/chat", h.Chat)
	authGroup.GET("/sessions/:user_id", h.ListSessions)
	authGroup.GET("/conversation/:session_id", h.GetConversation)

	return r
}
