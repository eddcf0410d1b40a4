package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultSessionTitle = "New Chat"

type ChatSession struct {
	Id        uuid.UUID
	OwnerId   uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
