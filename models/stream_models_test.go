package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameJSON(t *testing.T) {
	data, err := json.Marshal(TextFrame("hi", false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","content":"hi","done":false}`, string(data))

	group := CardGroup{Type: GroupTypeServices, Title: "S", Cards: []Card{{Type: CardTypeService, ID: "his", Title: "HIS"}}}
	data, err = json.Marshal(CardFrame("CARD_PLACEHOLDER_1", group))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "card",
		"content": {"type": "service_cards", "title": "S", "cards": [{"type": "service_card", "id": "his", "title": "HIS", "description": ""}]},
		"done": false,
		"placeholder": "CARD_PLACEHOLDER_1"
	}`, string(data))
}

func TestDecodeFrame(t *testing.T) {
	text, err := DecodeFrame([]byte(`{"type":"text","content":"안녕","done":true,"stream_id":"s1"}`))
	require.NoError(t, err)
	assert.Equal(t, "안녕", text.Text())
	assert.True(t, text.Done)
	assert.Equal(t, "s1", text.StreamID)

	card, err := DecodeFrame([]byte(`{"type":"card","content":{"type":"strength_cards","cards":[{"id":"tech"}]},"placeholder":"CARD_PLACEHOLDER_2"}`))
	require.NoError(t, err)
	group, ok := card.Content.(CardGroup)
	require.True(t, ok)
	assert.Equal(t, "tech", group.Cards[0].ID)
	assert.Equal(t, "", card.Text())

	errFrame, err := DecodeFrame([]byte(`{"type":"error","content":"boom","done":true}`))
	require.NoError(t, err)
	assert.Equal(t, ErrorFrame("boom"), errFrame)
}

func TestDecodeFrame_Invalid(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"type":"video","content":"x"}`,
		`{"type":"card","content":"not a group"}`,
		`{"type":"text","content":42}`,
	} {
		_, err := DecodeFrame([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestStreamMode_Valid(t *testing.T) {
	assert.True(t, ModeChunk.Valid())
	assert.True(t, ModeWord.Valid())
	assert.False(t, StreamMode("").Valid())
	assert.False(t, StreamMode("sentence").Valid())
}
