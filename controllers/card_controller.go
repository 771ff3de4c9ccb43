package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"medichat/models"
	"medichat/services"

	"github.com/gorilla/mux"
)

// CardListResponse is the body of GET /api/cards.
type CardListResponse struct {
	Cards []models.Card `json:"cards"`
	Total int           `json:"total"`
}

// ListCardsHandler returns every individual card in id order.
func (c *Controller) ListCardsHandler(w http.ResponseWriter, r *http.Request) {
	cards := c.chatbot.KnowledgeBase().Cards()
	writeJSON(w, http.StatusOK, CardListResponse{Cards: cards, Total: len(cards)})
}

// CardHandler returns a single card by catalog id.
func (c *Controller) CardHandler(w http.ResponseWriter, r *http.Request) {
	card, err := c.chatbot.KnowledgeBase().Card(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, errorStatus(err), "Card not found")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// CardGroupHandler returns the group bound to a placeholder key or number.
func (c *Controller) CardGroupHandler(w http.ResponseWriter, r *http.Request) {
	group, ok := c.chatbot.KnowledgeBase().Group(mux.Vars(r)["key"])
	if !ok {
		writeError(w, http.StatusNotFound, "Card group not found")
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// SearchCardsHandler ranks cards against the q parameter.
func (c *Controller) SearchCardsHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	limit := services.DefaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := c.cardIndex.Search(r.Context(), query, limit)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.CardSearchResponse{
		BaseResponse: models.BaseResponse{Status: models.StatusSuccess, Timestamp: time.Now()},
		Query:        query,
		Results:      results,
		Total:        len(results),
	})
}
