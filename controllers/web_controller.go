package controllers

import (
	"net/http"
	"time"

	"medichat/models"
)

// IndexHandler serves the chat page
func (c *Controller) IndexHandler(w http.ResponseWriter, r *http.Request) {
	c.renderTemplate(w, "index.html", map[string]interface{}{
		"Title":   "Medichat",
		"Welcome": c.chatbot.KnowledgeBase().Welcome(),
		"Mode":    c.cfg.Stream.Mode,
	})
}

// HealthHandler reports service status and stream counters
func (c *Controller) HealthHandler(w http.ResponseWriter, r *http.Request) {
	discord := map[string]interface{}{"status": "disabled"}
	if c.discordService != nil {
		discord = c.discordService.GetStatus()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"chatbot": c.chatbot.GetStatus(),
		"cards":   c.cardIndex.Count(),
		"discord": discord,
		"config": map[string]interface{}{
			"addr":        c.cfg.Server.Addr(),
			"stream_mode": c.cfg.Stream.Mode,
			"chunk_size":  c.cfg.Stream.ChunkSize,
			"delay_scale": c.cfg.Stream.DelayScale,
			"rate_limit":  c.cfg.RateLimit.RPS,
		},
		"endpoints": []string{"/", "/api/chat", "/api/chat/complete", "/api/cards", "/api/sessions", "/ws/chat", "/health"},
	})
}

// SessionsResponse is the body of GET /api/sessions.
type SessionsResponse struct {
	Sessions []models.Session `json:"sessions"`
}

// SessionsHandler returns the sidebar's mock chat history
func (c *Controller) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionsResponse{
		Sessions: c.chatbot.KnowledgeBase().Sessions(time.Now()),
	})
}
