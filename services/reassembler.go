package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"medichat/models"
)

// Reassembler rebuilds a streamed answer from its frames. Card frames are
// stored by placeholder and their marker is put back into the text at the
// point the card arrived, so Segments splices cards where the server
// placed them.
type Reassembler struct {
	mu    sync.RWMutex
	text  strings.Builder
	cards map[string]models.CardGroup
	done  bool
	err   error
}

// NewReassembler creates an empty reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{cards: make(map[string]models.CardGroup)}
}

// Apply folds one frame into the message.
func (r *Reassembler) Apply(frame models.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return fmt.Errorf("frame after end of stream")
	}

	switch frame.Type {
	case models.FrameText:
		r.text.WriteString(frame.Text())
	case models.FrameCard:
		group, ok := frame.Content.(models.CardGroup)
		if !ok || frame.Placeholder == "" {
			return fmt.Errorf("malformed card frame")
		}
		r.cards[frame.Placeholder] = group
		r.text.WriteString(Marker(frame.Placeholder))
	case models.FrameError:
		r.err = errors.New(frame.Text())
	default:
		return fmt.Errorf("unknown frame type %q", frame.Type)
	}

	if frame.Done {
		r.done = true
	}
	return nil
}

// Text returns the accumulated message with card markers in place.
func (r *Reassembler) Text() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.text.String()
}

// Card returns the group received for a placeholder key.
func (r *Reassembler) Card(key string) (models.CardGroup, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	group, ok := r.cards[key]
	return group, ok
}

// Cards returns the number of card groups received.
func (r *Reassembler) Cards() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cards)
}

// Segments splits the message into text and card parts in display order.
func (r *Reassembler) Segments() []Segment {
	return SplitPlaceholders(r.Text())
}

// Done reports whether the final frame has arrived.
func (r *Reassembler) Done() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.done
}

// Err returns the error carried by an error frame, if any.
func (r *Reassembler) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// ReadSSE parses an event stream body and calls fn for every frame. It
// returns when the body ends, fn fails, or ctx is cancelled.
func ReadSSE(ctx context.Context, body io.Reader, fn func(models.Frame) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		frame, err := models.DecodeFrame([]byte(strings.TrimPrefix(line, "data: ")))
		if err != nil {
			return err
		}
		if err := fn(frame); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading event stream: %w", err)
	}
	return nil
}
