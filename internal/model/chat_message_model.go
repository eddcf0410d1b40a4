package model

import (
	"time"

	"github.com/google/uuid"
)

// CreatedAt is assigned by the application so turns in a session stay strictly ordered.
type ChatMessage struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId    uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_messages_session_created,priority:1"`
	UserText         string    `gorm:"type:text;not null"`
	ResponseText     *string   `gorm:"type:text"`
	ImageDescription *string   `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"not null;index:idx_chat_messages_session_created,priority:2"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
