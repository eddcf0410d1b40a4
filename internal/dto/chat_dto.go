package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title" validate:"max=255"`
}

type SessionResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type SendMessageRequest struct {
	Text             string  `json:"text" validate:"required,max=8000"`
	ImageDescription *string `json:"image_description" validate:"omitempty,max=4000"`
}

type MessageResponse struct {
	Id               uuid.UUID `json:"id"`
	UserText         string    `json:"user_text"`
	ResponseText     *string   `json:"response_text"`
	ImageDescription *string   `json:"image_description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type SendMessageResponse struct {
	ChatSessionId    uuid.UUID        `json:"chat_session_id"`
	ChatSessionTitle string           `json:"chat_session_title"`
	Reply            string           `json:"reply"`
	Fallback         bool             `json:"fallback"`
	Intent           string           `json:"intent"`
	DocumentName     *string          `json:"document_name,omitempty"`
	ChunkCount       int              `json:"chunk_count"`
	Message          *MessageResponse `json:"message,omitempty"`
}
