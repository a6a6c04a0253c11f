package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/pkg/logger"
	"github.com/softsite/advisor-backend/internal/pkg/response"
)

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Chat handles POST /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	req, ok := h.decodeRequest(ctx, w, r)
	if !ok {
		return
	}

	answer, err := h.usecase.Respond(ctx, req.UserID, req.Message, req.History)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.ChatResponse{Response: answer})
}

// ChatStream handles POST /chat/stream. Each event carries the full
// accumulated answer so far; the final event is followed by [DONE].
func (h *Handler) ChatStream(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ChatStream")

	req, ok := h.decodeRequest(ctx, w, r)
	if !ok {
		return
	}

	// Validate before the response is upgraded to an event stream,
	// afterwards a status code can no longer be sent.
	if strings.TrimSpace(req.Message) == "" {
		ctxzap.Warn(ctx, "chat validation failed")
		response.Error(w, http.StatusBadRequest, "chat message is empty")
		return
	}

	sse, err := response.NewSSEWriter(w)
	if err != nil {
		ctxzap.Error(ctx, "failed to start event stream", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	_, err = h.usecase.RespondStream(ctx, req.UserID, req.Message, req.History, func(full string) {
		if sendErr := sse.Send(entity.ChatResponse{Response: full}); sendErr != nil {
			ctxzap.Warn(ctx, "client dropped the event stream", zap.Error(sendErr))
		}
	})
	if err != nil {
		// Headers are already written, the best we can do is log.
		ctxzap.Error(ctx, "streaming chat failed", zap.Error(err))
	}

	sse.Done()
}

// History handles GET /chat/history/{user_id}
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.WithUser(logger.WithAction(r.Context(), "ChatHistory"), userID)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.usecase.GetHistory(ctx, userID, limit)
	if err != nil {
		ctxzap.Error(ctx, "failed to load chat history", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}

	response.Success(w, entity.ChatHistoryResponse{Messages: messages})
}

func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (entity.ChatRequest, bool) {
	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode chat request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrEmptyMessage) {
		ctxzap.Warn(ctx, "chat validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ctxzap.Error(ctx, "chat failed", zap.Error(err))
	response.Error(w, http.StatusInternalServerError, "failed to answer")
}
