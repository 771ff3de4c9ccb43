package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"medichat/models"
)

// sseWriter writes frames as server-sent events, flushing after each one.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEWriter returns false when w cannot flush, in which case nothing has
// been written yet.
func newSSEWriter(w http.ResponseWriter, streamID string) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Stream-ID", streamID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseWriter{w: w, flusher: flusher}, true
}

// WriteFrame implements services.FrameSink.
func (s *sseWriter) WriteFrame(frame models.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
