package controllers

import (
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"

	"medichat/config"
	"medichat/models"
	"medichat/services"
	"medichat/views"

	"github.com/google/uuid"
)

// Controller holds the services every HTTP handler needs
type Controller struct {
	cfg            *config.Config
	chatbot        *services.Chatbot
	cardIndex      *services.CardIndex
	discordService *services.DiscordService
	limiter        *ClientLimiter
	templates      *template.Template
}

// NewController wires the handlers to their services. discord may be nil.
func NewController(cfg *config.Config, chatbot *services.Chatbot, cardIndex *services.CardIndex, discord *services.DiscordService) (*Controller, error) {
	tmpl, err := template.ParseFS(views.Files, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Controller{
		cfg:            cfg,
		chatbot:        chatbot,
		cardIndex:      cardIndex,
		discordService: discord,
		limiter:        NewClientLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		templates:      tmpl,
	}, nil
}

// Limiter returns the per-client chat rate limiter.
func (c *Controller) Limiter() *ClientLimiter {
	return c.limiter
}

// StartServices starts background services (the Discord bot).
func (c *Controller) StartServices() error {
	if !c.cfg.Discord.Enabled {
		log.Printf("[main] Discord transport disabled")
		return nil
	}
	if c.discordService == nil || !c.discordService.IsEnabled() {
		log.Printf("[main] Discord requested but not configured (missing DISCORD_BOT_TOKEN)")
		return nil
	}
	return c.discordService.Start()
}

// StopServices stops all background services
func (c *Controller) StopServices() error {
	if c.discordService != nil {
		return c.discordService.Stop()
	}
	return nil
}

// renderTemplate renders an embedded HTML template with data
func (c *Controller) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if err := c.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[web] error executing template %s: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func newStreamID() string {
	return uuid.NewString()
}

func newSessionID() string {
	return "sess_" + uuid.NewString()
}
