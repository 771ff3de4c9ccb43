package services

import (
	"strings"
	"testing"
	"time"

	"medichat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupMap map[string]models.CardGroup

func (g groupMap) Group(key string) (models.CardGroup, bool) {
	group, ok := g[PlaceholderKey(key)]
	return group, ok
}

var testGroups = groupMap{
	"CARD_PLACEHOLDER_1": {Type: models.GroupTypeServices, Title: "Services", Cards: []models.Card{{ID: "his", Title: "HIS"}}},
}

func noJitter() time.Duration { return 0 }

// reassemble rebuilds the text a client would display from a plan.
func reassemble(t *testing.T, steps []Step) string {
	t.Helper()
	var b strings.Builder
	for i, s := range steps {
		switch s.Frame.Type {
		case models.FrameText:
			b.WriteString(s.Frame.Text())
		case models.FrameCard:
			b.WriteString(Marker(s.Frame.Placeholder))
		default:
			t.Fatalf("unexpected frame type %q", s.Frame.Type)
		}
		assert.Equal(t, i == len(steps)-1, s.Frame.Done, "only the last frame is done")
	}
	return b.String()
}

func frameTypes(steps []Step) []string {
	types := make([]string, len(steps))
	for i, s := range steps {
		types[i] = s.Frame.Type
	}
	return types
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"Hello", " ", "big", "\n\n", "world", " "}, Tokenize("Hello big\n\nworld "))
	assert.Equal(t, []string{"  ", "x"}, Tokenize("  x"))
	assert.Nil(t, Tokenize(""))
}

func TestChunker_PlanReconstructsText(t *testing.T) {
	kb := DefaultKnowledgeBase()
	chunker := NewChunker(kb).WithJitter(noJitter)

	texts := []string{
		kb.Response(models.IntentGreeting, ""),
		kb.Response(models.IntentCompany, ""),
		kb.Response(models.IntentFallback, "무엇이든"),
		"  leading and trailing  ",
		"",
	}

	for _, text := range texts {
		for _, size := range []int{1, 3, 8, 1000} {
			steps := chunker.Plan(text, models.ModeChunk, size)
			assert.Equal(t, text, reassemble(t, steps), "chunk size %d", size)
		}
		steps := chunker.Plan(text, models.ModeWord, 0)
		assert.Equal(t, text, reassemble(t, steps), "word mode")
	}
}

func TestChunker_CardFramesCarryGroups(t *testing.T) {
	kb := DefaultKnowledgeBase()
	steps := NewChunker(kb).Plan(kb.Response(models.IntentCompany, ""), models.ModeChunk, 8)

	var keys []string
	for _, s := range steps {
		if s.Frame.Type != models.FrameCard {
			continue
		}
		keys = append(keys, s.Frame.Placeholder)
		group, ok := s.Frame.Content.(models.CardGroup)
		require.True(t, ok)
		assert.NotEmpty(t, group.Cards)
	}
	assert.Equal(t, []string{"CARD_PLACEHOLDER_1", "CARD_PLACEHOLDER_2"}, keys)
}

func TestChunker_TextAroundCardKeepsOrder(t *testing.T) {
	steps := NewChunker(testGroups).Plan("before [CARD_PLACEHOLDER_1] after", models.ModeChunk, 8)

	require.Equal(t, []string{models.FrameText, models.FrameCard, models.FrameText, models.FrameText}, frameTypes(steps))
	assert.Equal(t, "before ", steps[0].Frame.Text())
	assert.Equal(t, "CARD_PLACEHOLDER_1", steps[1].Frame.Placeholder)
	assert.Equal(t, " after", steps[2].Frame.Text())
	assert.Equal(t, "", steps[3].Frame.Text())
	assert.True(t, steps[3].Frame.Done)
}

func TestChunker_UnknownPlaceholderStaysInText(t *testing.T) {
	text := "see [CARD_PLACEHOLDER_9] now"
	steps := NewChunker(testGroups).Plan(text, models.ModeChunk, 8)

	assert.Equal(t, []string{models.FrameText, models.FrameText}, frameTypes(steps))
	assert.Equal(t, text, steps[0].Frame.Text())
}

func TestChunker_WhitespaceIsCarriedForward(t *testing.T) {
	steps := NewChunker(testGroups).Plan("a  b ", models.ModeChunk, 1)

	require.Len(t, steps, 3)
	assert.Equal(t, "a", steps[0].Frame.Text())
	assert.Equal(t, "  b", steps[1].Frame.Text())
	assert.Equal(t, " ", steps[2].Frame.Text())
	assert.True(t, steps[2].Frame.Done)
}

func TestChunker_ChunkDelays(t *testing.T) {
	steps := NewChunker(testGroups).Plan("one two\nthree four. five", models.ModeChunk, 4)

	// units: "one two\n", "three four. ", "five"
	require.Len(t, steps, 4)
	assert.Equal(t, "three four. ", steps[1].Frame.Text())
	assert.Equal(t, InitialDelay, steps[0].Delay)
	assert.Equal(t, ChunkNewlineDelay, steps[1].Delay)
	assert.Equal(t, ChunkSentenceDelay, steps[2].Delay)
	assert.Equal(t, ChunkDelay, steps[3].Delay)
}

func TestChunker_WordDelays(t *testing.T) {
	steps := NewChunker(testGroups).WithJitter(noJitter).Plan("Hi, **there**.", models.ModeWord, 0)

	require.Len(t, steps, 4)
	assert.Equal(t, "Hi,", steps[0].Frame.Text())
	assert.Equal(t, InitialDelay, steps[0].Delay)
	assert.Equal(t, WordClauseDelay, steps[1].Delay)
	assert.Equal(t, WordDelay, steps[2].Delay)
	assert.Equal(t, WordSentenceDelay, steps[3].Delay)
}

func TestChunker_WordModeCardGap(t *testing.T) {
	steps := NewChunker(testGroups).WithJitter(noJitter).Plan("[CARD_PLACEHOLDER_1] x", models.ModeWord, 0)

	require.Equal(t, []string{models.FrameCard, models.FrameText, models.FrameText, models.FrameText}, frameTypes(steps))
	assert.Equal(t, InitialDelay, steps[0].Delay)
	assert.Equal(t, CardGapDelay, steps[1].Delay)
	assert.Equal(t, WordDelay, steps[2].Delay)
}

func TestChunker_JitterIsBounded(t *testing.T) {
	c := NewChunker(testGroups)
	for i := 0; i < 100; i++ {
		j := c.jitter()
		assert.GreaterOrEqual(t, j, time.Duration(0))
		assert.Less(t, j, WordMaxJitter)
	}
}
