package entity

// IngestRequest is the payload of POST /admin/ingest.
type IngestRequest struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// IngestResponse reports how many chunks were embedded and persisted.
type IngestResponse struct {
	Success         bool `json:"success"`
	ChunksProcessed int  `json:"chunksProcessed"`
}

// SearchRequest is the payload of POST /search. TopK and Threshold fall back
// to configured defaults when zero.
type SearchRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"topK,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// SearchResultDocument is one matched chunk in a search response.
type SearchResultDocument struct {
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float64       `json:"similarity"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Documents []SearchResultDocument `json:"documents"`
}

// ChatRequest is the payload of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
	UserID  string        `json:"userId,omitempty"`
}

// ChatResponse carries the assistant's answer.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatHistoryResponse is the body of GET /chat/history.
type ChatHistoryResponse struct {
	Messages []*StoredChatMessage `json:"messages"`
}

// AnalyzeRequest is the payload of POST /analyze. Exactly one of the typed
// data fields is consulted depending on Type.
type AnalyzeRequest struct {
	Type string      `json:"type"`
	Data AnalyzeData `json:"data"`
}

// AnalyzeData holds the union of analysis tool parameters.
type AnalyzeData struct {
	URL      string `json:"url,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
	Industry string `json:"industry,omitempty"`
	Location string `json:"location,omitempty"`
}
