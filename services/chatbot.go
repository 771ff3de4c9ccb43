package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"medichat/models"
)

// StreamOptions controls how a single answer is streamed.
type StreamOptions struct {
	StreamID  string
	Mode      models.StreamMode
	ChunkSize int
}

// StreamResult summarises a finished (or aborted) stream.
type StreamResult struct {
	Intent   models.Intent
	Frames   int
	Duration time.Duration
}

// StreamStats counts streams served since startup.
type StreamStats struct {
	Started   int64 `json:"started"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Failed    int64 `json:"failed"`
}

// Chatbot handles chat processing and response generation
type Chatbot struct {
	initialized bool
	startTime   time.Time
	kb          *KnowledgeBase
	classifier  *Classifier
	chunker     *Chunker
	pacer       *Pacer
	defaultMode models.StreamMode
	chunkSize   int

	started   atomic.Int64
	completed atomic.Int64
	cancelled atomic.Int64
	failed    atomic.Int64
}

// NewChatbot creates a chatbot answering from kb. mode and chunkSize are the
// defaults used when a request does not override them.
func NewChatbot(kb *KnowledgeBase, pacer *Pacer, mode models.StreamMode, chunkSize int) *Chatbot {
	if !mode.Valid() {
		mode = models.ModeChunk
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	greeting, company := kb.Keywords()
	log.Printf("[chat] chatbot initialized (mode=%s, chunk_size=%d, delay_scale=%.2f)", mode, chunkSize, pacer.Scale())

	return &Chatbot{
		initialized: true,
		startTime:   time.Now(),
		kb:          kb,
		classifier:  NewClassifier(greeting, company),
		chunker:     NewChunker(kb),
		pacer:       pacer,
		defaultMode: mode,
		chunkSize:   chunkSize,
	}
}

// KnowledgeBase returns the catalog the chatbot answers from.
func (c *Chatbot) KnowledgeBase() *KnowledgeBase {
	return c.kb
}

// Respond classifies message and returns the canned answer for it.
func (c *Chatbot) Respond(message string) (models.Intent, string) {
	message = strings.TrimSpace(message)
	intent := c.classifier.Classify(message)
	return intent, c.kb.Response(intent, message)
}

// ProcessMessage returns the whole answer at once, with the card groups its
// placeholders refer to.
func (c *Chatbot) ProcessMessage(message string, sessionID string) models.ChatResponse {
	intent, text := c.Respond(message)

	var cards map[string]models.CardGroup
	for _, key := range Placeholders(text) {
		group, ok := c.kb.Group(key)
		if !ok {
			continue
		}
		if cards == nil {
			cards = make(map[string]models.CardGroup)
		}
		cards[key] = group
	}

	log.Printf("[chat] complete response session=%s intent=%s", sessionID, intent)

	return models.ChatResponse{
		BaseResponse: models.BaseResponse{
			Status:    models.StatusSuccess,
			Timestamp: time.Now(),
		},
		Message:   text,
		Intent:    intent,
		SessionID: sessionID,
		Cards:     cards,
	}
}

// Plan classifies message and builds its frame sequence without sending it.
func (c *Chatbot) Plan(message string, opts StreamOptions) (models.Intent, []Step) {
	mode, size := c.resolveOptions(opts)
	intent, text := c.Respond(message)
	return intent, c.chunker.Plan(text, mode, size)
}

// Stream answers message by writing paced frames to sink. It blocks until
// the stream finishes, ctx is cancelled, or the sink fails.
func (c *Chatbot) Stream(ctx context.Context, message string, opts StreamOptions, sink FrameSink) (StreamResult, error) {
	start := time.Now()
	mode, size := c.resolveOptions(opts)
	intent, steps := c.Plan(message, opts)

	c.started.Add(1)
	log.Printf("[chat] stream %s started intent=%s mode=%s chunk_size=%d frames=%d", opts.StreamID, intent, mode, size, len(steps))

	written, err := c.pacer.Run(ctx, opts.StreamID, steps, sink)
	result := StreamResult{Intent: intent, Frames: written, Duration: time.Since(start)}

	switch {
	case err == nil:
		c.completed.Add(1)
		log.Printf("[chat] stream %s completed frames=%d duration=%s", opts.StreamID, written, result.Duration.Round(time.Millisecond))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.cancelled.Add(1)
		log.Printf("[chat] stream %s cancelled after %d/%d frames", opts.StreamID, written, len(steps))
	default:
		c.failed.Add(1)
		log.Printf("[chat] stream %s failed after %d frames: %v", opts.StreamID, written, err)
	}

	return result, err
}

func (c *Chatbot) resolveOptions(opts StreamOptions) (models.StreamMode, int) {
	mode := opts.Mode
	if !mode.Valid() {
		mode = c.defaultMode
	}
	size := opts.ChunkSize
	if size <= 0 {
		size = c.chunkSize
	}
	return mode, size
}

// Stats returns a snapshot of the stream counters.
func (c *Chatbot) Stats() StreamStats {
	return StreamStats{
		Started:   c.started.Load(),
		Completed: c.completed.Load(),
		Cancelled: c.cancelled.Load(),
		Failed:    c.failed.Load(),
	}
}

// GetStatus returns the current status of the chatbot
func (c *Chatbot) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"status":       "active",
		"mode":         "canned",
		"initialized":  c.initialized,
		"uptime":       time.Since(c.startTime).Round(time.Second).String(),
		"stream_mode":  string(c.defaultMode),
		"chunk_size":   c.chunkSize,
		"delay_scale":  c.pacer.Scale(),
		"cards":        len(c.kb.CardIDs()),
		"streams":      c.Stats(),
		"capabilities": []string{"keyword_classification", "sse_streaming", "websocket_streaming", "card_placeholders"},
	}
}

// IsReady checks if the chatbot is ready to process messages
func (c *Chatbot) IsReady() bool {
	return c.initialized
}
