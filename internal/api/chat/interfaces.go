package chat

import (
	"context"

	"github.com/softsite/advisor-backend/internal/entity"
)

type ChatUsecase interface {
	Respond(ctx context.Context, userID, message string, history []entity.ChatMessage) (string, error)
	RespondStream(ctx context.Context, userID, message string, history []entity.ChatMessage, onDelta func(full string)) (string, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]*entity.StoredChatMessage, error)
}
