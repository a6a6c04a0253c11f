package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/entity"
)

// fallbackAnswer is returned when the model provider fails. The chat
// surface never propagates a provider outage to the end user.
const fallbackAnswer = "I am sorry, I cannot answer right now. Please try again in a moment."

const defaultHistoryLimit = 50

// UseCase assembles grounded answers for the advisor chat. A failed
// retrieval degrades to an answer without documentation context and a
// failed model call degrades to a fixed fallback text; neither is
// surfaced as an error to the caller.
type UseCase struct {
	retriever Retriever
	model     ModelProvider
	log       ConversationLog
	policy    string
	logger    *zap.Logger
}

func NewUseCase(retriever Retriever, model ModelProvider, log ConversationLog, policy string, logger *zap.Logger) *UseCase {
	return &UseCase{
		retriever: retriever,
		model:     model,
		log:       log,
		policy:    policy,
		logger:    logger,
	}
}

// Respond produces one complete answer for the user's message.
func (u *UseCase) Respond(ctx context.Context, userID, message string, history []entity.ChatMessage) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: chat message is empty", entity.ErrEmptyMessage)
	}

	system := u.systemInstruction(ctx, message)

	answer, err := u.model.Generate(ctx, system, history, message)
	if err != nil {
		u.logger.Error("model generation failed, answering with fallback", zap.Error(err))
		answer = fallbackAnswer
	}

	u.persistTurns(ctx, userID, message, answer)
	return answer, nil
}

// RespondStream produces the answer incrementally. Every onDelta call
// receives the full accumulated text so far, so each delta supersedes
// the previous one. The fallback text is also delivered through onDelta
// when the model fails mid-stream.
func (u *UseCase) RespondStream(ctx context.Context, userID, message string, history []entity.ChatMessage, onDelta func(full string)) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: chat message is empty", entity.ErrEmptyMessage)
	}

	system := u.systemInstruction(ctx, message)

	answer, err := u.model.GenerateStream(ctx, system, history, message, onDelta)
	if err != nil {
		u.logger.Error("streaming generation failed, answering with fallback", zap.Error(err))
		answer = fallbackAnswer
		onDelta(answer)
	}

	u.persistTurns(ctx, userID, message, answer)
	return answer, nil
}

// GetHistory returns the persisted conversation of one user in
// chronological order.
func (u *UseCase) GetHistory(ctx context.Context, userID string, limit int) ([]*entity.StoredChatMessage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	messages, err := u.log.GetUserMessages(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: loading history: %v", entity.ErrConversationLog, err)
	}
	return messages, nil
}

func (u *UseCase) systemInstruction(ctx context.Context, message string) string {
	chunks, err := u.retriever.ForChat(ctx, message)
	if err != nil {
		u.logger.Warn("retrieval failed, answering without documentation context", zap.Error(err))
		chunks = nil
	}
	return buildSystemInstruction(u.policy, chunks)
}

// persistTurns logs the user message and then the assistant answer. The
// chat log is best effort: a write failure is logged and swallowed so
// the already-generated answer still reaches the user.
func (u *UseCase) persistTurns(ctx context.Context, userID, message, answer string) {
	if userID == "" {
		return
	}
	if err := u.log.AppendTurn(ctx, userID, entity.RoleUser, message); err != nil {
		u.logger.Error("failed to log user turn", zap.Error(err), zap.String("user_id", userID))
		return
	}
	if err := u.log.AppendTurn(ctx, userID, entity.RoleAssistant, answer); err != nil {
		u.logger.Error("failed to log assistant turn", zap.Error(err), zap.String("user_id", userID))
	}
}
