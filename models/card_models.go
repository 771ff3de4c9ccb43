package models

// Card types
const (
	CardTypeService      = "service_card"
	CardTypeStrength     = "strength_card"
	GroupTypeServices    = "service_cards"
	GroupTypeStrengths   = "strength_cards"
	PlaceholderKeyPrefix = "CARD_PLACEHOLDER_"
)

// Card is a single service or strength tile.
type Card struct {
	Type        string   `json:"type" toml:"type"`
	ID          string   `json:"id" toml:"id"`
	Title       string   `json:"title" toml:"title"`
	Description string   `json:"description" toml:"description"`
	Icon        string   `json:"icon,omitempty" toml:"icon"`
	Features    []string `json:"features,omitempty" toml:"features"`
	Highlights  []string `json:"highlights,omitempty" toml:"highlights"`
	Color       string   `json:"color,omitempty" toml:"color"`
	Price       string   `json:"price,omitempty" toml:"price"`
	Link        string   `json:"link,omitempty" toml:"link"`
}

// Bullets returns the card's feature list, falling back to its highlights.
func (c Card) Bullets() []string {
	if len(c.Features) > 0 {
		return c.Features
	}
	return c.Highlights
}

// CardGroup is an ordered set of cards substituted for one placeholder.
type CardGroup struct {
	Type  string `json:"type" toml:"type"`
	Title string `json:"title" toml:"title"`
	Cards []Card `json:"cards" toml:"cards"`
}

// CardSearchResult is a card matched by the card index.
type CardSearchResult struct {
	CardID string  `json:"card_id"`
	Card   Card    `json:"card"`
	Score  float32 `json:"score"`
}

// CardSearchResponse represents the response from the card search endpoint
type CardSearchResponse struct {
	BaseResponse
	Query   string             `json:"query"`
	Results []CardSearchResult `json:"results"`
	Total   int                `json:"total"`
}
