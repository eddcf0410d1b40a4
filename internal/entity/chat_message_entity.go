package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one turn: the user's text and the assistant's reply together.
type ChatMessage struct {
	Id               uuid.UUID
	ChatSessionId    uuid.UUID
	UserText         string
	ResponseText     *string
	ImageDescription *string
	CreatedAt        time.Time
}
