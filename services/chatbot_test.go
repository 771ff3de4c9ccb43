package services

import (
	"context"
	"testing"

	"medichat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatbot() *Chatbot {
	return NewChatbot(DefaultKnowledgeBase(), NewPacer(0), models.ModeChunk, 8)
}

func TestChatbot_Respond(t *testing.T) {
	c := newTestChatbot()

	intent, text := c.Respond("  안녕하세요  ")
	assert.Equal(t, models.IntentGreeting, intent)
	assert.Contains(t, text, "메디씨앤씨 전문 AI")

	intent, text = c.Respond("점심 메뉴 추천")
	assert.Equal(t, models.IntentFallback, intent)
	assert.Contains(t, text, `"점심 메뉴 추천"`)
}

func TestChatbot_StreamDeliversWholeAnswer(t *testing.T) {
	c := newTestChatbot()
	kb := c.KnowledgeBase()

	for _, mode := range []models.StreamMode{models.ModeChunk, models.ModeWord} {
		t.Run(string(mode), func(t *testing.T) {
			r := NewReassembler()
			result, err := c.Stream(context.Background(), "회사 소개해 주세요", StreamOptions{StreamID: "abc", Mode: mode}, FrameSinkFunc(r.Apply))
			require.NoError(t, err)

			assert.Equal(t, models.IntentCompany, result.Intent)
			assert.True(t, r.Done())
			assert.Equal(t, kb.Response(models.IntentCompany, ""), r.Text())
			assert.Equal(t, 2, r.Cards())

			group, ok := r.Card("CARD_PLACEHOLDER_2")
			require.True(t, ok)
			assert.Len(t, group.Cards, 3)
		})
	}

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Started)
	assert.Equal(t, int64(2), stats.Completed)
}

func TestChatbot_StreamCancelled(t *testing.T) {
	c := newTestChatbot()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Stream(ctx, "hello", StreamOptions{StreamID: "x"}, FrameSinkFunc(func(models.Frame) error { return nil }))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1), c.Stats().Cancelled)
}

func TestChatbot_PlanUsesRequestOptions(t *testing.T) {
	c := newTestChatbot()

	_, chunked := c.Plan("회사", StreamOptions{})
	_, single := c.Plan("회사", StreamOptions{ChunkSize: 1})
	_, words := c.Plan("회사", StreamOptions{Mode: models.ModeWord})

	assert.Greater(t, len(single), len(chunked))
	assert.Greater(t, len(words), len(chunked))
}

func TestChatbot_ProcessMessage(t *testing.T) {
	c := newTestChatbot()

	resp := c.ProcessMessage("메디씨앤씨 서비스", "sess_1")
	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Equal(t, models.IntentCompany, resp.Intent)
	assert.Equal(t, "sess_1", resp.SessionID)
	require.Len(t, resp.Cards, 2)
	assert.Len(t, resp.Cards["CARD_PLACEHOLDER_1"].Cards, 4)

	greeting := c.ProcessMessage("hello", "sess_2")
	assert.Nil(t, greeting.Cards)
}

func TestChatbot_Status(t *testing.T) {
	c := newTestChatbot()

	assert.True(t, c.IsReady())
	status := c.GetStatus()
	assert.Equal(t, "active", status["status"])
	assert.Equal(t, 7, status["cards"])
	assert.Equal(t, "chunk", status["stream_mode"])
}
