package services

import (
	"strings"
	"testing"

	"medichat/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderCardGroupText(t *testing.T) {
	group := models.CardGroup{
		Title: "Services",
		Cards: []models.Card{
			{Icon: "🏥", Title: "HIS", Description: "hospital system", Features: []string{"a", "b"}},
			{Title: "Plain"},
		},
	}

	got := RenderCardGroupText(group)
	assert.Equal(t, "### Services\n\n- 🏥 **HIS**: hospital system\n  - a\n  - b\n- **Plain**", got)
}

func TestRenderAnswer(t *testing.T) {
	kb := DefaultKnowledgeBase()

	got := RenderAnswer("intro [CARD_PLACEHOLDER_2] [CARD_PLACEHOLDER_8] end", kb.Group)
	assert.True(t, strings.HasPrefix(got, "intro ### 메디씨앤씨의 핵심 강점"))
	assert.Contains(t, got, "**보안 및 안정성**")
	assert.Contains(t, got, "[CARD_PLACEHOLDER_8] end")
	assert.NotContains(t, got, "[CARD_PLACEHOLDER_2]")
}
