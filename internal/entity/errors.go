package entity

import "errors"

// Domain errors. Each external collaborator failure is surfaced under its
// own category so callers can decide to degrade, fail, or mask.
var (
	// Validation errors
	ErrEmptyContent = errors.New("document content is empty")
	ErrEmptyQuery   = errors.New("query is empty")
	ErrEmptyMessage = errors.New("message is empty")

	// Pipeline errors
	ErrEmbeddingProvider = errors.New("embedding provider failure")
	ErrPersistence       = errors.New("document store failure")
	ErrRetrieval         = errors.New("retrieval failure")
	ErrModelProvider     = errors.New("model provider failure")

	// ErrConversationLog is never surfaced to callers, only logged.
	ErrConversationLog = errors.New("conversation log failure")

	// Analysis errors
	ErrUnsupportedAnalysis = errors.New("unsupported analysis type")
	ErrInvalidParameter    = errors.New("invalid parameter")
)
