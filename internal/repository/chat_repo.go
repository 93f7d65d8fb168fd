package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wavelength/matchops/internal/db"
)

// ChatRepository provides read access to chat transcripts.
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new repository bound to the given DB connection.
func NewChatRepository(database *gorm.DB) *ChatRepository {
	return &ChatRepository{db: database}
}

// SessionsByUser returns a user's sessions of one chat type, newest
// first.
func (r *ChatRepository) SessionsByUser(ctx context.Context, userID, chatType string) ([]db.ChatSession, error) {
	var sessions []db.ChatSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chat_type = ?", userID, chatType).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// GetSession returns one session.
func (r *ChatRepository) GetSession(ctx context.Context, sessionID string) (*db.ChatSession, error) {
	var session db.ChatSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// MessagesBySession returns a session's messages in conversation
// order.
func (r *ChatRepository) MessagesBySession(ctx context.Context, sessionID string) ([]db.ChatMessage, error) {
	var messages []db.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// CountMessages returns per-session message counts for the given
// sessions, so listings can show sizes without loading transcripts.
func (r *ChatRepository) CountMessages(ctx context.Context, sessionIDs []string) (map[string]int64, error) {
	if len(sessionIDs) == 0 {
		return map[string]int64{}, nil
	}

	type row struct {
		SessionID string
		N         int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&db.ChatMessage{}).
		Select("session_id, COUNT(*) AS n").
		Where("session_id IN ?", sessionIDs).
		Group("session_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.SessionID] = r.N
	}
	return counts, nil
}
