package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// SessionTranscript selects a session's turns oldest first, the order they are replayed to the model.
func SessionTranscript(sessionId uuid.UUID) []Specification {
	return []Specification{
		ByChatSessionID{ChatSessionID: sessionId},
		OrderBy{Field: "created_at"},
	}
}
