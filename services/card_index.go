package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"strings"
	"unicode"

	"medichat/models"

	"github.com/philippgille/chromem-go"
)

const (
	cardCollectionName = "cards"
	cardEmbeddingDims  = 256
	DefaultSearchLimit = 3
	maxCardSearchLimit = 20
)

// CardIndex answers free-text card lookups using an in-memory chromem
// collection. Embeddings are hashed word and bigram counts computed
// locally, so the index needs no external model.
type CardIndex struct {
	kb         *KnowledgeBase
	db         *chromem.DB
	collection *chromem.Collection
}

// NewCardIndex indexes every card in kb.
func NewCardIndex(ctx context.Context, kb *KnowledgeBase) (*CardIndex, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(cardCollectionName, nil, HashEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	ids := kb.CardIDs()
	docs := make([]chromem.Document, 0, len(ids))
	for _, id := range ids {
		card, err := kb.Card(id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, chromem.Document{
			ID:      id,
			Content: cardDocument(card),
			Metadata: map[string]string{
				"type": card.Type,
				"slug": card.ID,
			},
		})
	}

	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("failed to index cards: %w", err)
	}

	log.Printf("[cards] indexed %d cards", collection.Count())
	return &CardIndex{kb: kb, db: db, collection: collection}, nil
}

// Count returns the number of indexed cards.
func (i *CardIndex) Count() int {
	return i.collection.Count()
}

// Search returns up to limit cards ranked by similarity to query. limit <= 0
// uses DefaultSearchLimit.
func (i *CardIndex) Search(ctx context.Context, query string, limit int) ([]models.CardSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", models.ErrBadRequest)
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > maxCardSearchLimit {
		limit = maxCardSearchLimit
	}
	if n := i.collection.Count(); limit > n {
		limit = n
	}
	if limit == 0 {
		return []models.CardSearchResult{}, nil
	}

	results, err := i.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}

	out := make([]models.CardSearchResult, 0, len(results))
	for _, r := range results {
		card, err := i.kb.Card(r.ID)
		if err != nil {
			continue
		}
		out = append(out, models.CardSearchResult{CardID: r.ID, Card: card, Score: r.Similarity})
	}
	return out, nil
}

// cardDocument flattens a card into the text that gets embedded.
func cardDocument(card models.Card) string {
	parts := []string{card.Title, card.Description}
	parts = append(parts, card.Bullets()...)
	return strings.Join(parts, "\n")
}

// HashEmbedding maps text to a normalized vector of hashed word and word
// bigram counts.
func HashEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, cardEmbeddingDims)

	words := strings.FieldsFunc(normalizeText(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for idx, w := range words {
		vec[hashBucket(w)] += 1
		if idx > 0 {
			vec[hashBucket(words[idx-1]+" "+w)] += 0.5
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		// A zero vector cannot be normalized; give empty text a fixed direction.
		vec[0] = 1
		return vec, nil
	}

	n := float32(math.Sqrt(norm))
	for idx := range vec {
		vec[idx] /= n
	}
	return vec, nil
}

func hashBucket(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % cardEmbeddingDims)
}
