package services

import (
	"context"
	"fmt"
	"time"

	"medichat/models"
)

// FrameSink receives the frames of a stream in order.
type FrameSink interface {
	WriteFrame(frame models.Frame) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(frame models.Frame) error

// WriteFrame calls f(frame).
func (f FrameSinkFunc) WriteFrame(frame models.Frame) error {
	return f(frame)
}

// Pacer replays a plan against a sink, waiting between frames.
type Pacer struct {
	scale float64
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer. scale multiplies every delay; 0 sends frames
// back to back.
func NewPacer(scale float64) *Pacer {
	if scale < 0 {
		scale = 0
	}
	return &Pacer{scale: scale, sleep: sleepContext}
}

// Scale returns the delay multiplier.
func (p *Pacer) Scale() float64 {
	return p.scale
}

// Run writes every step's frame to sink after its delay, stamping each frame
// with streamID. It returns the number of frames written. A cancelled context
// stops the stream before the next frame.
func (p *Pacer) Run(ctx context.Context, streamID string, steps []Step, sink FrameSink) (int, error) {
	written := 0
	for _, step := range steps {
		if err := p.sleep(ctx, p.scaled(step.Delay)); err != nil {
			return written, err
		}

		frame := step.Frame
		frame.StreamID = streamID
		if err := sink.WriteFrame(frame); err != nil {
			return written, fmt.Errorf("failed to write %s frame: %w", frame.Type, err)
		}
		written++
	}
	return written, nil
}

func (p *Pacer) scaled(d time.Duration) time.Duration {
	return time.Duration(float64(d) * p.scale)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
