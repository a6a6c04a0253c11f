package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/softsite/advisor-backend/internal/entity"
)

// DocumentRepository defines the interface for the reference-document
// vector store.
type DocumentRepository interface {
	InsertChunks(ctx context.Context, chunks []entity.DocumentChunk) error
	MatchChunks(ctx context.Context, embedding []float32, threshold float64, limit int) ([]entity.RetrievedChunk, error)
}

var _ DocumentRepository = &DocumentPostgres{}

// DocumentPostgres implements DocumentRepository using PostgreSQL with the
// pgvector extension.
type DocumentPostgres struct {
	db *pgxpool.Pool
}

func NewDocumentPostgres(db *pgxpool.Pool) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

// InsertChunks persists all chunks of one ingestion in a single
// transactional batch. Chunk ids are assigned in slice order, which is what
// the retrieval tie-break relies on.
func (r *DocumentPostgres) InsertChunks(ctx context.Context, chunks []entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert chunks: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}

		batch.Queue(
			`INSERT INTO documents (content, metadata, embedding) VALUES ($1, $2, $3)`,
			chunk.Content,
			metadata,
			pgvector.NewVector(chunk.Embedding),
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert chunks: %w", err)
	}

	return nil
}

// MatchChunks returns up to limit chunks whose cosine similarity to the
// query embedding is at least threshold, most similar first. Equal scores
// keep insertion order.
func (r *DocumentPostgres) MatchChunks(ctx context.Context, embedding []float32, threshold float64, limit int) ([]entity.RetrievedChunk, error) {
	query := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT content, metadata, 1 - (embedding <=> $1) AS similarity
		 FROM documents
		 WHERE 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1, id
		 LIMIT $3`,
		query, threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("match chunks: %w", err)
	}
	defer rows.Close()

	var matches []entity.RetrievedChunk
	for rows.Next() {
		var (
			chunk    entity.RetrievedChunk
			metadata []byte
		)
		if err := rows.Scan(&chunk.Content, &metadata, &chunk.Similarity); err != nil {
			return nil, fmt.Errorf("scan matched chunk: %w", err)
		}
		if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
		}
		matches = append(matches, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matched chunks: %w", err)
	}

	return matches, nil
}
