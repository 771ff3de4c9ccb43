package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"medichat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameRecorder struct {
	frames []models.Frame
	failAt int
}

func (r *frameRecorder) WriteFrame(f models.Frame) error {
	if r.failAt > 0 && len(r.frames)+1 == r.failAt {
		return errors.New("broken pipe")
	}
	r.frames = append(r.frames, f)
	return nil
}

func testSteps() []Step {
	return []Step{
		{Delay: 400 * time.Millisecond, Frame: models.TextFrame("a", false)},
		{Delay: 150 * time.Millisecond, Frame: models.TextFrame("b", false)},
		{Delay: 300 * time.Millisecond, Frame: models.TextFrame("", true)},
	}
}

func TestPacer_RunScalesDelaysAndStampsStreamID(t *testing.T) {
	p := NewPacer(0.5)
	var waits []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	rec := &frameRecorder{}
	n, err := p.Run(context.Background(), "stream-1", testSteps(), rec)
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 75 * time.Millisecond, 150 * time.Millisecond}, waits)
	for _, f := range rec.frames {
		assert.Equal(t, "stream-1", f.StreamID)
	}
}

func TestPacer_ZeroScaleDoesNotWait(t *testing.T) {
	p := NewPacer(0)
	start := time.Now()

	n, err := p.Run(context.Background(), "s", testSteps(), &frameRecorder{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPacer_NegativeScaleIsClamped(t *testing.T) {
	assert.Equal(t, 0.0, NewPacer(-1).Scale())
}

func TestPacer_CancelStopsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	rec := &frameRecorder{}
	sink := FrameSinkFunc(func(f models.Frame) error {
		cancel()
		return rec.WriteFrame(f)
	})

	n, err := NewPacer(0).Run(ctx, "s", testSteps(), sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n)
	assert.Len(t, rec.frames, 1)
}

func TestPacer_CancelInterruptsWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	steps := []Step{{Delay: time.Hour, Frame: models.TextFrame("never", true)}}
	start := time.Now()
	n, err := NewPacer(1).Run(ctx, "s", steps, &frameRecorder{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, n)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPacer_SinkErrorIsWrapped(t *testing.T) {
	rec := &frameRecorder{failAt: 2}
	n, err := NewPacer(0).Run(context.Background(), "s", testSteps(), rec)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write text frame")
	assert.Contains(t, err.Error(), "broken pipe")
	assert.Equal(t, 1, n)
}
