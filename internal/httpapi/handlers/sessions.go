package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aeroassist/backend/internal/chat"
	"github.com/aeroassist/backend/internal/httpapi/middleware"
)

func (h *Handler) ListSessions(c *gin.Context) {
	user, okk := middleware.IdentityFromContext(c)
	if !okk {
		fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	userID := c.Param("user_id")
	sessions, err := h.Svc.ListSessions(c.Request.Context(), user, userID)
	if err != nil {
		if errors.Is(err, chat.ErrAccessDenied) {
			fail(c, http.StatusForbidden, "Access denied")
			return
		}
		h.Log.Error("session listing failed", zap.String("user_id", userID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to fetch sessions")
		return
	}

	ok(c, gin.H{"sessions": sessions})
}

func (h *Handler) GetConversation(c *gin.Context) {
	user, okk := middleware.IdentityFromContext(c)
	if !okk {
		fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sessionID := c.Param("session_id")
	conv, err := h.Svc.Conversation(c.Request.Context(), user, sessionID)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, "Session not found")
			return
		}
		h.Log.Error("conversation fetch failed",
			zap.String("session_id", sessionID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to fetch conversation")
		return
	}

	ok(c, gin.H{"conversation": conv})
}
