package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aeroassist/backend/internal/chat"
	"github.com/aeroassist/backend/internal/config"
)

type Handler struct {
	Svc *chat.Service
	Cfg config.Config
	Log *zap.Logger
}

func New(svc *chat.Service, cfg config.Config, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Svc: svc, Cfg: cfg, Log: log}
}

func fail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
