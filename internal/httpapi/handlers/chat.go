package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aeroassist/backend/internal/ai"
	"github.com/aeroassist/backend/internal/chat"
	"github.com/aeroassist/backend/internal/httpapi/middleware"
)

func (h *Handler) Chat(c *gin.Context) {
	user, okk := middleware.IdentityFromContext(c)
	if !okk {
		fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req chat.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := h.Svc.Chat(c.Request.Context(), user, req)
	if err != nil {
		var genErr *ai.GenerationError
		var storeErr *chat.StorageError
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			fail(c, http.StatusBadRequest, "Message is required.")
		case errors.As(err, &genErr):
			h.Log.Error("completion provider failed",
				zap.String("user_id", user.ID), zap.Error(err))
			fail(c, http.StatusInternalServerError, "AI processing error")
		case errors.As(err, &storeErr):
			h.Log.Error("chat storage failed",
				zap.String("user_id", user.ID), zap.Error(err))
			fail(c, http.StatusInternalServerError, "Chat processing error")
		default:
			h.Log.Error("chat turn failed",
				zap.String("user_id", user.ID), zap.Error(err))
			fail(c, http.StatusInternalServerError, "Chat processing error")
		}
		return
	}

	ok(c, res)
}
