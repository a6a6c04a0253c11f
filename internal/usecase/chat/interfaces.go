package chat

import (
	"context"

	"github.com/softsite/advisor-backend/internal/entity"
)

type Retriever interface {
	ForChat(ctx context.Context, query string) ([]entity.RetrievedChunk, error)
}

type ModelProvider interface {
	Generate(ctx context.Context, system string, history []entity.ChatMessage, message string) (string, error)
	GenerateStream(ctx context.Context, system string, history []entity.ChatMessage, message string, onDelta func(full string)) (string, error)
}

type ConversationLog interface {
	AppendTurn(ctx context.Context, userID string, role entity.Role, content string) error
	GetUserMessages(ctx context.Context, userID string, limit int) ([]*entity.StoredChatMessage, error)
}
