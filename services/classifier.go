package services

import (
	"strings"

	"medichat/models"

	"golang.org/x/text/unicode/norm"
)

// Classifier picks a canned response by plain substring matching.
type Classifier struct {
	greeting []string
	company  []string
}

// NewClassifier creates a classifier for the given keyword lists.
func NewClassifier(greeting, company []string) *Classifier {
	return &Classifier{
		greeting: normalizeKeywords(greeting),
		company:  normalizeKeywords(company),
	}
}

// Classify returns the intent of message. Greetings win over company
// questions; anything else falls back.
func (c *Classifier) Classify(message string) models.Intent {
	text := normalizeText(message)

	if containsAny(text, c.greeting) {
		return models.IntentGreeting
	}
	if containsAny(text, c.company) {
		return models.IntentCompany
	}
	return models.IntentFallback
}

// normalizeText composes Hangul jamo (macOS input arrives decomposed) and
// lowercases Latin text.
func normalizeText(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = normalizeText(strings.TrimSpace(k)); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
