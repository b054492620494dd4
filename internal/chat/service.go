package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aeroassist/backend/internal/ai"
	"github.com/aeroassist/backend/internal/events"
	"github.com/aeroassist/backend/internal/identity"
)

// HistoryMessage is one client-supplied prior turn.
type HistoryMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ChatRequest struct {
	Message             string           `json:"message"`
	ConversationHistory []HistoryMessage `json:"conversation_history"`
	SessionID           string           `json:"session_id"`
}

type ChatResult struct {
	Reply      string    `json:"reply"`
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	TokensUsed int       `json:"tokens_used"`
}

// ConversationMessage is the retrieval shape for GET /conversation.
type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Service sequences one chat turn: resolve session, persist the user turn,
// generate, persist the assistant turn. A nil store means degraded mode;
// chat still answers but nothing is persisted.
type Service struct {
	store    *Store
	sessions *SessionManager
	provider ai.Provider
	events   events.Publisher
	log      *zap.Logger
}

func NewService(store *Store, sessions *SessionManager, provider ai.Provider, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, sessions: sessions, provider: provider, events: pub, log: log}
}

// Degraded reports whether the service runs without a persistent store.
func (s *Service) Degraded() bool { return s.store == nil }

// Chat handles one turn. The generation context is the client-supplied
// history, not the stored one; stateless clients manage their own context
// window. Writes are committed independently: a generation failure leaves
// the already stored user message in place.
func (s *Service) Chat(ctx context.Context, user identity.Identity, req ChatRequest) (ChatResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatResult{}, ErrEmptyMessage
	}

	sessionID, err := s.sessions.Resolve(ctx, user.ID, req.SessionID)
	if err != nil {
		return ChatResult{}, err
	}

	// Best effort: a failed history read degrades continuity, it does not
	// block the reply.
	if s.store != nil {
		stored, err := s.store.ListMessages(ctx, sessionID)
		if err != nil {
			s.log.Warn("failed to load stored conversation",
				zap.String("session_id", sessionID), zap.Error(err))
		} else {
			s.log.Debug("loaded stored conversation",
				zap.String("session_id", sessionID), zap.Int("messages", len(stored)))
		}
	}

	if s.store != nil {
		if _, err := s.store.AppendMessage(ctx, sessionID, "user", req.Message); err != nil {
			return ChatResult{}, &StorageError{Op: "append user message", Cause: err}
		}
	}

	prior := make([]ai.Message, 0, len(req.ConversationHistory))
	for _, m := range req.ConversationHistory {
		prior = append(prior, ai.Message{Role: m.Role, Content: m.Content})
	}

	res, err := s.provider.Generate(ctx, prior, req.Message)
	if err != nil {
		return ChatResult{}, err
	}

	if s.store != nil {
		if _, err := s.store.AppendMessage(ctx, sessionID, "assistant", res.Text); err != nil {
			return ChatResult{}, &StorageError{Op: "append assistant message", Cause: err}
		}
	}

	now := time.Now()
	if err := s.events.PublishTurnCompleted(ctx, events.TurnCompleted{
		UserID:     user.ID,
		SessionID:  sessionID,
		TokensUsed: res.TokensUsed,
		Persisted:  s.store != nil,
		At:         now,
	}); err != nil {
		s.log.Warn("failed to publish turn event",
			zap.String("session_id", sessionID), zap.Error(err))
	}

	return ChatResult{
		Reply:      res.Text,
		Timestamp:  now,
		SessionID:  sessionID,
		TokensUsed: res.TokensUsed,
	}, nil
}

// ListSessions returns the caller's session summaries. Callers may only
// list their own sessions. Listing failures degrade to an empty list.
func (s *Service) ListSessions(ctx context.Context, caller identity.Identity, userID string) ([]SessionSummary, error) {
	if caller.ID != userID {
		return nil, ErrAccessDenied
	}
	if s.store == nil {
		return []SessionSummary{}, nil
	}

	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		s.log.Warn("failed to list sessions", zap.String("user_id", userID), zap.Error(err))
		return []SessionSummary{}, nil
	}
	return sessions, nil
}

// Conversation returns the full ordered message history of a session the
// caller owns. Unknown and foreign sessions are indistinguishable.
func (s *Service) Conversation(ctx context.Context, caller identity.Identity, sessionID string) ([]ConversationMessage, error) {
	if s.store == nil {
		return []ConversationMessage{}, nil
	}

	sess, err := s.store.FindSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, &StorageError{Op: "find session", Cause: err}
	}
	if sess.UserID != caller.ID {
		return nil, ErrSessionNotFound
	}

	msgs, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, &StorageError{Op: "list messages", Cause: err}
	}

	out := make([]ConversationMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ConversationMessage{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}
	return out, nil
}
