package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aeroassist/backend/internal/common"
)

// SessionManager resolves a client-supplied session id to a session owned
// by the caller, creating one when needed. A nil store puts it in degraded
// mode: ids are handed out without persistence and history is not retained.
type SessionManager struct {
	store *Store
	log   *zap.Logger
}

func NewSessionManager(store *Store, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{store: store, log: log}
}

// Degraded reports whether the manager runs without a persistent store.
func (m *SessionManager) Degraded() bool { return m.store == nil }

// Resolve returns the id of the session this turn belongs to. An unknown or
// foreign id is not an error: the caller simply gets a fresh session.
// Session ids are not secrets; the only check is owner-matching.
func (m *SessionManager) Resolve(ctx context.Context, userID, sessionID string) (string, error) {
	if m.store == nil {
		if sessionID != "" {
			return sessionID, nil
		}
		return uuid.NewString(), nil
	}

	if sessionID != "" {
		sess, err := m.store.FindSession(ctx, sessionID)
		switch {
		case err == nil && sess.UserID == userID:
			if err := m.store.TouchSession(ctx, sessionID); err != nil {
				return "", &StorageError{Op: "touch session", Cause: err}
			}
			return sessionID, nil
		case err == nil:
			m.log.Warn("session owner mismatch, starting new session",
				zap.String("session_id", sessionID))
		case errors.Is(err, gorm.ErrRecordNotFound):
			// fall through to create
		default:
			return "", &StorageError{Op: "find session", Cause: err}
		}
	}

	sid, err := common.NewULID()
	if err != nil {
		return "", err
	}
	sess := &Session{SessionID: sid, UserID: userID}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return "", &StorageError{Op: "create session", Cause: err}
	}
	return sid, nil
}
