package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
)

const (
	greetingText = "Hi! I am the start-up grant advisor. Ask me anything about " +
		"building your website with the grant program."
	rateLimitText = "You are sending messages too fast. Please wait a moment."
	errorText     = "Something went wrong. Please try again."

	// How often a streamed answer may edit the telegram message.
	// Telegram throttles edits aggressively, one per second is safe.
	editInterval = time.Second
)

type advisorBot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	chatUC      ChatUsecase
	rateLimiter *rateLimiter
	logger      *zap.Logger
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

func newAdvisorBot(cfg *config.TelegramConfig, chatUC ChatUsecase, logger *zap.Logger) (*advisorBot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	return &advisorBot{
		api:         api,
		cfg:         cfg,
		chatUC:      chatUC,
		rateLimiter: newRateLimiter(cfg.RateLimitPerMinute),
		logger:      logger,
		stopChan:    make(chan struct{}),
	}, nil
}

// Start starts the bot
func (b *advisorBot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *advisorBot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *advisorBot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update := <-b.updatesChan:
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, u)
			}(update)
		}
	}
}

func (b *advisorBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic recovered in telegram handler",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
				zap.Int("update_id", update.UpdateID),
			)
			if update.Message != nil {
				b.send(tgbotapi.NewMessage(update.Message.Chat.ID, errorText))
			}
		}
	}()

	if update.Message == nil || update.Message.From == nil {
		return
	}
	message := update.Message

	if !b.rateLimiter.Allow(message.From.ID) {
		b.logger.Warn("rate limit exceeded", zap.Int64("user_id", message.From.ID))
		b.send(tgbotapi.NewMessage(message.Chat.ID, rateLimitText))
		return
	}

	if message.IsCommand() {
		b.handleCommand(message)
		return
	}
	if message.Text == "" {
		return
	}

	b.answer(ctx, message)
}

func (b *advisorBot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start", "help":
		b.send(tgbotapi.NewMessage(message.Chat.ID, greetingText))
	default:
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Just ask your question in plain text."))
	}
}

// answer streams the advisor's reply into a single telegram message,
// editing it as the answer grows.
func (b *advisorBot) answer(ctx context.Context, message *tgbotapi.Message) {
	userID := strconv.FormatInt(message.From.ID, 10)
	ctx = ctxzap.ToContext(ctx, b.logger.With(zap.String("user_id", userID)))

	history := b.loadHistory(ctx, userID)

	typing := tgbotapi.NewChatAction(message.Chat.ID, tgbotapi.ChatTyping)
	b.api.Request(typing)

	placeholder, err := b.api.Send(tgbotapi.NewMessage(message.Chat.ID, "…"))
	if err != nil {
		ctxzap.Error(ctx, "failed to send placeholder message", zap.Error(err))
		return
	}

	var (
		mu       sync.Mutex
		lastText string
		lastEdit time.Time
	)
	answer, err := b.chatUC.RespondStream(ctx, userID, message.Text, history, func(full string) {
		mu.Lock()
		defer mu.Unlock()
		lastText = full
		if time.Since(lastEdit) < editInterval || full == "" {
			return
		}
		lastEdit = time.Now()
		b.edit(message.Chat.ID, placeholder.MessageID, full)
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to answer", zap.Error(err))
		b.edit(message.Chat.ID, placeholder.MessageID, errorText)
		return
	}

	// Final edit carries the complete answer even when the last
	// delta fell inside the throttling window.
	mu.Lock()
	if answer == "" {
		answer = lastText
	}
	mu.Unlock()
	if answer != "" {
		b.edit(message.Chat.ID, placeholder.MessageID, answer)
	}
}

func (b *advisorBot) loadHistory(ctx context.Context, userID string) []entity.ChatMessage {
	stored, err := b.chatUC.GetHistory(ctx, userID, b.cfg.MaxHistoryTurns)
	if err != nil {
		ctxzap.Warn(ctx, "failed to load history, answering without it", zap.Error(err))
		return nil
	}
	history := make([]entity.ChatMessage, 0, len(stored))
	for _, m := range stored {
		history = append(history, entity.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return history
}

func (b *advisorBot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send telegram message",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
		)
	}
}

func (b *advisorBot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Debug("failed to edit telegram message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
		)
	}
}
