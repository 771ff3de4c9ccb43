package services

import (
	"strings"

	"medichat/models"
)

// GroupLookup resolves a placeholder key to its card group.
type GroupLookup func(key string) (models.CardGroup, bool)

// RenderCardGroupText renders a card group as Markdown.
func RenderCardGroupText(group models.CardGroup) string {
	var b strings.Builder
	if group.Title != "" {
		b.WriteString("### ")
		b.WriteString(group.Title)
		b.WriteString("\n\n")
	}
	for _, card := range group.Cards {
		b.WriteString("- ")
		if card.Icon != "" {
			b.WriteString(card.Icon)
			b.WriteString(" ")
		}
		b.WriteString("**")
		b.WriteString(card.Title)
		b.WriteString("**")
		if card.Description != "" {
			b.WriteString(": ")
			b.WriteString(card.Description)
		}
		b.WriteString("\n")
		for _, bullet := range card.Bullets() {
			b.WriteString("  - ")
			b.WriteString(bullet)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderAnswer replaces every resolvable card marker in text with the
// Markdown rendering of its group. Unknown markers stay as they are.
func RenderAnswer(text string, lookup GroupLookup) string {
	var b strings.Builder
	for _, seg := range SplitPlaceholders(text) {
		if !seg.IsCard() {
			b.WriteString(seg.Text)
			continue
		}
		group, ok := lookup(seg.Placeholder)
		if !ok {
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString(RenderCardGroupText(group))
	}
	return b.String()
}
