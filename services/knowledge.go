package services

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"medichat/models"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var defaultCatalog []byte

// catalogFile mirrors the TOML layout of the knowledge base.
type catalogFile struct {
	Welcome   string `toml:"welcome"`
	Responses struct {
		Greeting string `toml:"greeting"`
		Company  string `toml:"company"`
		Fallback string `toml:"fallback"`
	} `toml:"responses"`
	Keywords struct {
		Greeting []string `toml:"greeting"`
		Company  []string `toml:"company"`
	} `toml:"keywords"`
	Cards    map[string]models.Card `toml:"cards"`
	Groups   map[string]groupSpec   `toml:"groups"`
	Sessions []sessionSpec          `toml:"sessions"`
}

type groupSpec struct {
	Type    string   `toml:"type"`
	Title   string   `toml:"title"`
	CardIDs []string `toml:"card_ids"`
}

type sessionSpec struct {
	ID      string `toml:"id"`
	Title   string `toml:"title"`
	AgeDays int    `toml:"age_days"`
}

// KnowledgeBase holds the canned responses and cards. It is built once at
// startup and never mutated afterwards, so it is safe for concurrent use.
type KnowledgeBase struct {
	welcome          string
	greeting         string
	company          string
	fallback         string
	greetingKeywords []string
	companyKeywords  []string
	cards            map[string]models.Card
	cardIDs          []string
	groups           map[string]models.CardGroup
	sessions         []sessionSpec
}

// LoadKnowledgeBase reads the catalog at path, or the embedded catalog when
// path is empty.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	if path == "" {
		return ParseKnowledgeBase(defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog %s: %w", path, err)
	}
	log.Printf("[catalog] loading knowledge base from %s", path)
	return ParseKnowledgeBase(data)
}

// DefaultKnowledgeBase returns the embedded catalog. It panics if the
// embedded file is invalid, which is a build defect.
func DefaultKnowledgeBase() *KnowledgeBase {
	kb, err := ParseKnowledgeBase(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return kb
}

// ParseKnowledgeBase decodes and validates a TOML catalog.
func ParseKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var file catalogFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("error decoding catalog: %w", err)
	}

	kb := &KnowledgeBase{
		welcome:          file.Welcome,
		greeting:         file.Responses.Greeting,
		company:          file.Responses.Company,
		fallback:         file.Responses.Fallback,
		greetingKeywords: file.Keywords.Greeting,
		companyKeywords:  file.Keywords.Company,
		cards:            make(map[string]models.Card, len(file.Cards)),
		groups:           make(map[string]models.CardGroup, len(file.Groups)),
		sessions:         file.Sessions,
	}

	if kb.greeting == "" || kb.company == "" || kb.fallback == "" {
		return nil, fmt.Errorf("catalog must define greeting, company and fallback responses")
	}
	if !strings.Contains(kb.fallback, "%s") {
		return nil, fmt.Errorf("fallback response must contain %%s for the user message")
	}

	slugs := make(map[string]string)
	for id, card := range file.Cards {
		if other, ok := slugs[card.ID]; ok {
			return nil, fmt.Errorf("cards %s and %s share id %q", other, id, card.ID)
		}
		slugs[card.ID] = id
		kb.cards[id] = card
		kb.cardIDs = append(kb.cardIDs, id)
	}
	sort.Slice(kb.cardIDs, func(i, j int) bool {
		return lessCardID(kb.cardIDs[i], kb.cardIDs[j])
	})

	for key, spec := range file.Groups {
		group := models.CardGroup{Type: spec.Type, Title: spec.Title}
		for _, id := range spec.CardIDs {
			card, ok := kb.cards[id]
			if !ok {
				return nil, fmt.Errorf("group %s references unknown card %s", key, id)
			}
			group.Cards = append(group.Cards, card)
		}
		kb.groups[PlaceholderKey(key)] = group
	}

	for _, text := range []string{kb.greeting, kb.company, kb.fallback} {
		for _, key := range Placeholders(text) {
			if _, ok := kb.groups[key]; !ok {
				return nil, fmt.Errorf("response references undefined card group %s", key)
			}
		}
	}

	return kb, nil
}

// lessCardID orders numeric ids numerically and everything else lexically.
func lessCardID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

// Welcome returns the assistant's opening line.
func (kb *KnowledgeBase) Welcome() string {
	return kb.welcome
}

// Response returns the canned text for an intent. The fallback response
// quotes message.
func (kb *KnowledgeBase) Response(intent models.Intent, message string) string {
	switch intent {
	case models.IntentGreeting:
		return kb.greeting
	case models.IntentCompany:
		return kb.company
	default:
		return strings.Replace(kb.fallback, "%s", message, 1)
	}
}

// Keywords returns the greeting and company keyword lists.
func (kb *KnowledgeBase) Keywords() (greeting, company []string) {
	return kb.greetingKeywords, kb.companyKeywords
}

// Card looks up an individual card by its catalog id ("1".."7").
func (kb *KnowledgeBase) Card(id string) (models.Card, error) {
	card, ok := kb.cards[strings.TrimSpace(id)]
	if !ok {
		return models.Card{}, fmt.Errorf("card %s: %w", id, models.ErrNotFound)
	}
	return card, nil
}

// CardIDs returns every card id in catalog order.
func (kb *KnowledgeBase) CardIDs() []string {
	return append([]string(nil), kb.cardIDs...)
}

// Cards returns every individual card ordered by id.
func (kb *KnowledgeBase) Cards() []models.Card {
	cards := make([]models.Card, 0, len(kb.cardIDs))
	for _, id := range kb.cardIDs {
		cards = append(cards, kb.cards[id])
	}
	return cards
}

// Group returns the card group bound to a placeholder key or bare number.
func (kb *KnowledgeBase) Group(key string) (models.CardGroup, bool) {
	group, ok := kb.groups[PlaceholderKey(key)]
	if !ok {
		return models.CardGroup{}, false
	}
	group.Cards = append([]models.Card(nil), group.Cards...)
	return group, true
}

// Sessions returns the mock sidebar history with timestamps relative to now.
func (kb *KnowledgeBase) Sessions(now time.Time) []models.Session {
	sessions := make([]models.Session, 0, len(kb.sessions))
	for _, s := range kb.sessions {
		sessions = append(sessions, models.Session{
			ID:        s.ID,
			Title:     s.Title,
			Timestamp: now.Add(-time.Duration(s.AgeDays) * 24 * time.Hour),
		})
	}
	return sessions
}
