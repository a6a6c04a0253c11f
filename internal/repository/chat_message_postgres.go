package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/softsite/advisor-backend/internal/entity"
)

// ChatMessageRepository defines the interface for the append-only
// conversation log.
type ChatMessageRepository interface {
	AppendTurn(ctx context.Context, userID string, role entity.Role, content string) error
	GetUserMessages(ctx context.Context, userID string, limit int) ([]*entity.StoredChatMessage, error)
}

var _ ChatMessageRepository = &ChatMessagePostgres{}

// ChatMessagePostgres implements ChatMessageRepository using PostgreSQL
type ChatMessagePostgres struct {
	db *pgxpool.Pool
}

func NewChatMessagePostgres(db *pgxpool.Pool) *ChatMessagePostgres {
	return &ChatMessagePostgres{db: db}
}

func (r *ChatMessagePostgres) AppendTurn(ctx context.Context, userID string, role entity.Role, content string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_messages (user_id, role, content) VALUES ($1, $2, $3)`,
		userID, string(role), content,
	)
	if err != nil {
		return fmt.Errorf("append chat turn: %w", err)
	}
	return nil
}

func (r *ChatMessagePostgres) GetUserMessages(ctx context.Context, userID string, limit int) ([]*entity.StoredChatMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, role, content, created_at
		 FROM chat_messages
		 WHERE user_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*entity.StoredChatMessage
	for rows.Next() {
		var (
			msg  entity.StoredChatMessage
			role string
		)
		if err := rows.Scan(&msg.ID, &msg.UserID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msg.Role = entity.Role(role)
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}

	// Rows come newest-first for the LIMIT; callers want chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
