package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDocumentUploaded    = "document.uploaded"
	TypeDocumentIndexed     = "document.indexed"
	TypeDocumentIndexFailed = "document.index_failed"
	TypeDocumentDeleted     = "document.deleted"
	TypeChatTurnCompleted   = "chat.turn_completed"
)

func DocumentUploaded(documentId, ownerId uuid.UUID, title string) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentUploaded,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"owner_id":    ownerId.String(),
			"title":       title,
		},
		OccurredAt: time.Now(),
	}
}

func DocumentIndexed(documentId uuid.UUID, chunkCount int) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentIndexed,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func DocumentIndexFailed(documentId uuid.UUID, reason string) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentIndexFailed,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

func DocumentDeleted(documentId, ownerId uuid.UUID) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentDeleted,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"owner_id":    ownerId.String(),
		},
		OccurredAt: time.Now(),
	}
}

func ChatTurnCompleted(sessionId uuid.UUID, intent string, chunkCount int, fallback bool) BaseEvent {
	return BaseEvent{
		Type: TypeChatTurnCompleted,
		Data: map[string]interface{}{
			"session_id":  sessionId.String(),
			"intent":      intent,
			"chunk_count": chunkCount,
			"fallback":    fallback,
		},
		OccurredAt: time.Now(),
	}
}
