package entity

import "time"

// ChunkMetadata describes where a document chunk came from.
type ChunkMetadata struct {
	Filename   string `json:"filename"`
	DocumentID string `json:"documentId"`
	ChunkIndex int    `json:"chunkIndex"`
}

// DocumentChunk is the unit of embedding and retrieval. Chunks are created
// once during ingestion and never mutated afterwards.
type DocumentChunk struct {
	Content   string
	Metadata  ChunkMetadata
	Embedding []float32
}

// RetrievedChunk is a stored chunk together with its similarity to a query.
type RetrievedChunk struct {
	Content    string
	Metadata   ChunkMetadata
	Similarity float64
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single turn of dialogue history as supplied by the caller.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// StoredChatMessage is a persisted conversation-log row.
type StoredChatMessage struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultFormat selects the export rendering for generated reports.
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)
