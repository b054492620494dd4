package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

const version = "2.0.0"

func (h *Handler) Root(c *gin.Context) {
	ok(c, gin.H{
		"message": "Welcome to AeroAssist API",
		"status":  "running",
		"version": version,
	})
}

func (h *Handler) Health(c *gin.Context) {
	ok(c, gin.H{
		"status":    "healthy",
		"service":   "aeroassist-backend",
		"degraded":  h.Svc.Degraded(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// DebugAuth reports which collaborators are configured. Presence flags
// only; no secret material.
func (h *Handler) DebugAuth(c *gin.Context) {
	ok(c, gin.H{
		"identity_mode":       h.Cfg.IdentityMode,
		"identity_configured": h.Cfg.IdentityServiceURL != "" && h.Cfg.IdentityServiceKey != "",
		"openai_configured":   h.Cfg.OpenAIAPIKey != "",
		"database_configured": !h.Svc.Degraded(),
		"token_cache_enabled": h.Cfg.RedisAddr != "",
		"event_queue_enabled": h.Cfg.RabbitURL != "",
		"timestamp":           time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) DebugEnv(c *gin.Context) {
	ok(c, gin.H{
		"identity_url_length":     len(h.Cfg.IdentityServiceURL),
		"identity_key_length":     len(h.Cfg.IdentityServiceKey),
		"openai_key_length":       len(h.Cfg.OpenAIAPIKey),
		"database_dsn_configured": h.Cfg.DBDSN != "",
		"timestamp":               time.Now().Format(time.RFC3339),
	})
}
