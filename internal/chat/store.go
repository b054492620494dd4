package chat

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store issues the simple keyed queries behind sessions and messages.
// Every operation is a single statement; nothing is retried here.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the two tables if they do not exist yet.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Session{}, &Message{})
}

func (s *Store) CreateSession(ctx context.Context, sess *Session) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *Store) FindSession(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) TouchSession(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Model(&Session{}).
		Where("session_id = ?", sessionID).
		Update("updated_at", time.Now()).Error
}

func (s *Store) AppendMessage(ctx context.Context, sessionID, role, content string) (*Message, error) {
	msg := &Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns every message of the session in append order.
func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var msgs []Message
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Store) CountMessages(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Message{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ListSessionsByUser returns the user's sessions, most recently active
// first, with per-session message counts.
func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]SessionSummary, error) {
	var sessions []Session
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	out := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		count, err := s.CountMessages(ctx, sess.SessionID)
		if err != nil {
			return nil, err
		}
		out = append(out, SessionSummary{
			SessionID:    sess.SessionID,
			CreatedAt:    sess.CreatedAt,
			UpdatedAt:    sess.UpdatedAt,
			MessageCount: count,
		})
	}
	return out, nil
}
