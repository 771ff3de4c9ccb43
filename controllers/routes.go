package controllers

import (
	"io/fs"
	"net/http"

	"medichat/views"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Routes builds the router wrapped in CORS handling.
func (c *Controller) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", c.IndexHandler).Methods("GET")
	router.HandleFunc("/health", c.HealthHandler).Methods("GET")

	chat := router.PathPrefix("/api/chat").Subrouter()
	chat.Use(c.limiter.Middleware)
	chat.HandleFunc("", c.ChatHandler).Methods("POST")
	chat.HandleFunc("/complete", c.CompleteHandler).Methods("POST")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", c.SessionsHandler).Methods("GET")
	// search and groups must be registered before the {id} route
	api.HandleFunc("/cards", c.ListCardsHandler).Methods("GET")
	api.HandleFunc("/cards/search", c.SearchCardsHandler).Methods("GET")
	api.HandleFunc("/cards/groups/{key}", c.CardGroupHandler).Methods("GET")
	api.HandleFunc("/cards/{id}", c.CardHandler).Methods("GET")

	router.HandleFunc("/ws/chat", c.WebSocketHandler).Methods("GET")

	static, err := fs.Sub(views.Files, "static")
	if err == nil {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: c.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Stream-ID", "Retry-After"},
	})

	return corsHandler.Handler(router)
}
