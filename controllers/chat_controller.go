package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"medichat/models"
	"medichat/services"
)

const maxChatBodyBytes = 64 * 1024

// ChatHandler streams the answer to a chat message as server-sent events.
func (c *Controller) ChatHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r.Body)
	if err != nil {
		writeError(w, errorStatus(err), requestErrorMessage(err))
		return
	}

	streamID := newStreamID()
	sink, ok := newSSEWriter(w, streamID)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	opts := services.StreamOptions{StreamID: streamID, Mode: req.Mode, ChunkSize: req.ChunkSize}
	if _, err := c.chatbot.Stream(r.Context(), req.Message, opts, sink); err != nil {
		// Headers are gone; the client sees a truncated stream.
		log.Printf("[sse] stream %s ended early: %v", streamID, err)
	}
}

// CompleteHandler returns the whole answer as a single JSON document.
func (c *Controller) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r.Body)
	if err != nil {
		writeError(w, errorStatus(err), requestErrorMessage(err))
		return
	}

	if req.SessionID == "" {
		req.SessionID = newSessionID()
	}

	writeJSON(w, http.StatusOK, c.chatbot.ProcessMessage(req.Message, req.SessionID))
}

// requestError carries the client-facing message for a rejected request.
type requestError struct {
	message string
}

func (e *requestError) Error() string { return e.message }

func (e *requestError) Unwrap() error { return models.ErrBadRequest }

func badRequest(format string, args ...interface{}) error {
	return &requestError{message: fmt.Sprintf(format, args...)}
}

func requestErrorMessage(err error) string {
	var re *requestError
	if errors.As(err, &re) {
		return re.message
	}
	return err.Error()
}

// decodeChatRequest parses and validates a chat request body.
func decodeChatRequest(body io.Reader) (models.ChatRequest, error) {
	var req models.ChatRequest
	if err := json.NewDecoder(io.LimitReader(body, maxChatBodyBytes)).Decode(&req); err != nil {
		return req, badRequest("Invalid JSON format")
	}
	return req, validateChatRequest(req)
}

func validateChatRequest(req models.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return badRequest("Message cannot be empty")
	}
	if req.Mode != "" && !req.Mode.Valid() {
		return badRequest("Invalid mode %q (want chunk or word)", req.Mode)
	}
	if req.ChunkSize < 0 {
		return badRequest("chunk_size must be positive")
	}
	return nil
}
