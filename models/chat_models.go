package models

import "time"

// Intent is the result of classifying a user message.
type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentCompany  Intent = "company"
	IntentFallback Intent = "fallback"
)

// StreamMode selects how the response text is cut into frames.
type StreamMode string

const (
	// ModeChunk groups several whitespace-delimited pieces per frame.
	ModeChunk StreamMode = "chunk"
	// ModeWord sends one piece per frame with finer-grained pacing.
	ModeWord StreamMode = "word"
)

// Valid reports whether m is a known streaming mode.
func (m StreamMode) Valid() bool {
	return m == ModeChunk || m == ModeWord
}

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	BaseRequest
	Message   string     `json:"message"`
	Mode      StreamMode `json:"mode,omitempty"`
	ChunkSize int        `json:"chunk_size,omitempty"`
}

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatResponse represents a complete, non-streamed answer
type ChatResponse struct {
	BaseResponse
	Message   string               `json:"message"`
	Intent    Intent               `json:"intent"`
	SessionID string               `json:"session_id"`
	Cards     map[string]CardGroup `json:"cards,omitempty"` // keyed by placeholder
}

// Session is an entry in the sidebar's chat history list.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}
