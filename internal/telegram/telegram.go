package telegram

import (
	"context"

	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// ChatUsecase is the advisor conversation surface the bot talks to.
type ChatUsecase interface {
	RespondStream(ctx context.Context, userID, message string, history []entity.ChatMessage, onDelta func(full string)) (string, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]*entity.StoredChatMessage, error)
}

// NewBot initializes the telegram advisor bot
func NewBot(cfg *config.TelegramConfig, chatUC ChatUsecase, logger *zap.Logger) (Bot, error) {
	return newAdvisorBot(cfg, chatUC, logger)
}
