package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"medichat/models"
	"medichat/services"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsSink writes frames as JSON text messages.
type wsSink struct {
	conn *websocket.Conn
}

func (s wsSink) WriteFrame(frame models.Frame) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(frame)
}

// WebSocketHandler upgrades the connection and answers each chat request
// with the same frames the SSE endpoint sends. Requests are served one at a
// time; a closed connection cancels the stream in flight.
func (c *Controller) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	requests := make(chan []byte, 4)
	go func() {
		defer cancel()
		defer close(requests)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[ws] unexpected close: %v", err)
				}
				return
			}
			select {
			case requests <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	sink := wsSink{conn: conn}
	ip := clientIP(r)

	for raw := range requests {
		if ok, _ := c.limiter.Allow(ip); !ok {
			if err := sink.WriteFrame(models.ErrorFrame("Too many requests, please slow down")); err != nil {
				return
			}
			continue
		}

		var req models.ChatRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			err = badRequest("Invalid JSON format")
			if werr := sink.WriteFrame(models.ErrorFrame(requestErrorMessage(err))); werr != nil {
				return
			}
			continue
		}
		if err := validateChatRequest(req); err != nil {
			if werr := sink.WriteFrame(models.ErrorFrame(requestErrorMessage(err))); werr != nil {
				return
			}
			continue
		}

		opts := services.StreamOptions{StreamID: newStreamID(), Mode: req.Mode, ChunkSize: req.ChunkSize}
		if _, err := c.chatbot.Stream(ctx, req.Message, opts, sink); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("[ws] stream %s failed: %v", opts.StreamID, err)
			return
		}
	}
}
