package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/entity"
)

const testPolicy = "You are a grant advisor."

type fakeRetriever struct {
	chunks []entity.RetrievedChunk
	err    error
}

func (f *fakeRetriever) ForChat(_ context.Context, _ string) ([]entity.RetrievedChunk, error) {
	return f.chunks, f.err
}

type fakeModel struct {
	answer     string
	err        error
	gotSystem  string
	gotHistory []entity.ChatMessage
	deltas     []string
}

func (f *fakeModel) Generate(_ context.Context, system string, history []entity.ChatMessage, _ string) (string, error) {
	f.gotSystem = system
	f.gotHistory = history
	return f.answer, f.err
}

func (f *fakeModel) GenerateStream(_ context.Context, system string, history []entity.ChatMessage, _ string, onDelta func(string)) (string, error) {
	f.gotSystem = system
	f.gotHistory = history
	if f.err != nil {
		return "", f.err
	}
	if f.deltas == nil {
		f.deltas = []string{f.answer}
	}
	for _, d := range f.deltas {
		onDelta(d)
	}
	return f.deltas[len(f.deltas)-1], nil
}

type turn struct {
	role    entity.Role
	content string
}

type fakeLog struct {
	turns []turn
	err   error
}

func (f *fakeLog) AppendTurn(_ context.Context, _ string, role entity.Role, content string) error {
	if f.err != nil {
		return f.err
	}
	f.turns = append(f.turns, turn{role: role, content: content})
	return nil
}

func (f *fakeLog) GetUserMessages(_ context.Context, _ string, _ int) ([]*entity.StoredChatMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*entity.StoredChatMessage{}, nil
}

func newTestUseCase(retriever Retriever, model ModelProvider, log ConversationLog) *UseCase {
	return NewUseCase(retriever, model, log, testPolicy, zap.NewNop())
}

func TestRespond(t *testing.T) {
	t.Run("blank message is a validation error", func(t *testing.T) {
		uc := newTestUseCase(&fakeRetriever{}, &fakeModel{answer: "hi"}, &fakeLog{})

		_, err := uc.Respond(context.Background(), "u1", "   ", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrEmptyMessage)
	})

	t.Run("retrieved chunks end up in the system instruction", func(t *testing.T) {
		retriever := &fakeRetriever{chunks: []entity.RetrievedChunk{
			{Content: "grants cap at 100k", Metadata: entity.ChunkMetadata{Filename: "rules.md"}},
		}}
		model := &fakeModel{answer: "the cap is 100k"}
		uc := newTestUseCase(retriever, model, &fakeLog{})

		answer, err := uc.Respond(context.Background(), "u1", "what is the cap", nil)
		require.NoError(t, err)
		assert.Equal(t, "the cap is 100k", answer)
		assert.True(t, strings.HasPrefix(model.gotSystem, testPolicy))
		assert.Contains(t, model.gotSystem, contextHeader)
		assert.Contains(t, model.gotSystem, "[Source: rules.md]\ngrants cap at 100k")
	})

	t.Run("retrieval failure drops the documentation block", func(t *testing.T) {
		retriever := &fakeRetriever{err: errors.New("store down")}
		model := &fakeModel{answer: "general advice"}
		uc := newTestUseCase(retriever, model, &fakeLog{})

		answer, err := uc.Respond(context.Background(), "u1", "what is the cap", nil)
		require.NoError(t, err)
		assert.Equal(t, "general advice", answer)
		assert.Equal(t, testPolicy, model.gotSystem)
		assert.NotContains(t, model.gotSystem, contextHeader)
	})

	t.Run("model failure degrades to the fallback answer", func(t *testing.T) {
		log := &fakeLog{}
		uc := newTestUseCase(&fakeRetriever{}, &fakeModel{err: errors.New("quota")}, log)

		answer, err := uc.Respond(context.Background(), "u1", "hello", nil)
		require.NoError(t, err)
		assert.Equal(t, fallbackAnswer, answer)

		require.Len(t, log.turns, 2)
		assert.Equal(t, fallbackAnswer, log.turns[1].content)
	})

	t.Run("turns are logged user first then assistant", func(t *testing.T) {
		log := &fakeLog{}
		uc := newTestUseCase(&fakeRetriever{}, &fakeModel{answer: "sure"}, log)

		_, err := uc.Respond(context.Background(), "u1", "help me", nil)
		require.NoError(t, err)

		require.Len(t, log.turns, 2)
		assert.Equal(t, entity.RoleUser, log.turns[0].role)
		assert.Equal(t, "help me", log.turns[0].content)
		assert.Equal(t, entity.RoleAssistant, log.turns[1].role)
		assert.Equal(t, "sure", log.turns[1].content)
	})

	t.Run("log failure does not fail the answer", func(t *testing.T) {
		log := &fakeLog{err: errors.New("disk full")}
		uc := newTestUseCase(&fakeRetriever{}, &fakeModel{answer: "sure"}, log)

		answer, err := uc.Respond(context.Background(), "u1", "help me", nil)
		require.NoError(t, err)
		assert.Equal(t, "sure", answer)
	})

	t.Run("anonymous conversations are not logged", func(t *testing.T) {
		log := &fakeLog{}
		uc := newTestUseCase(&fakeRetriever{}, &fakeModel{answer: "sure"}, log)

		_, err := uc.Respond(context.Background(), "", "help me", nil)
		require.NoError(t, err)
		assert.Empty(t, log.turns)
	})

	t.Run("caller history reaches the model untouched", func(t *testing.T) {
		model := &fakeModel{answer: "continuing"}
		uc := newTestUseCase(&fakeRetriever{}, model, &fakeLog{})

		history := []entity.ChatMessage{
			{Role: entity.RoleUser, Content: "earlier question"},
			{Role: entity.RoleAssistant, Content: "earlier answer"},
		}
		_, err := uc.Respond(context.Background(), "u1", "follow up", history)
		require.NoError(t, err)
		assert.Equal(t, history, model.gotHistory)
	})
}

func TestRespondStream(t *testing.T) {
	t.Run("deltas grow monotonically", func(t *testing.T) {
		model := &fakeModel{deltas: []string{"The", "The cap", "The cap is 100k"}}
		uc := newTestUseCase(&fakeRetriever{}, model, &fakeLog{})

		var got []string
		answer, err := uc.RespondStream(context.Background(), "u1", "what is the cap", nil, func(full string) {
			got = append(got, full)
		})
		require.NoError(t, err)
		assert.Equal(t, "The cap is 100k", answer)

		require.Len(t, got, 3)
		for i := 1; i < len(got); i++ {
			assert.True(t, strings.HasPrefix(got[i], got[i-1]))
		}
	})

	t.Run("stream failure delivers the fallback through the callback", func(t *testing.T) {
		log := &fakeLog{}
		uc := newTestUseCase(&fakeRetriever{}, &fakeModel{err: errors.New("quota")}, log)

		var got []string
		answer, err := uc.RespondStream(context.Background(), "u1", "hello", nil, func(full string) {
			got = append(got, full)
		})
		require.NoError(t, err)
		assert.Equal(t, fallbackAnswer, answer)
		assert.Equal(t, []string{fallbackAnswer}, got)

		require.Len(t, log.turns, 2)
		assert.Equal(t, fallbackAnswer, log.turns[1].content)
	})
}

func TestGetHistory(t *testing.T) {
	t.Run("log failure is a conversation log error", func(t *testing.T) {
		uc := newTestUseCase(&fakeRetriever{}, &fakeModel{}, &fakeLog{err: errors.New("down")})

		_, err := uc.GetHistory(context.Background(), "u1", 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrConversationLog)
	})
}
