package models

import (
	"encoding/json"
	"fmt"
)

// Frame types
const (
	FrameText  = "text"
	FrameCard  = "card"
	FrameError = "error"
)

// Frame is one unit of a streamed answer. Content is a string for text and
// error frames and a CardGroup for card frames.
type Frame struct {
	Type        string      `json:"type"`
	Content     interface{} `json:"content"`
	Done        bool        `json:"done"`
	Placeholder string      `json:"placeholder,omitempty"`
	StreamID    string      `json:"stream_id,omitempty"`
}

// TextFrame builds a text frame.
func TextFrame(text string, done bool) Frame {
	return Frame{Type: FrameText, Content: text, Done: done}
}

// CardFrame builds a card frame for the group bound to placeholder key.
func CardFrame(key string, group CardGroup) Frame {
	return Frame{Type: FrameCard, Content: group, Placeholder: key}
}

// ErrorFrame builds a terminal error frame.
func ErrorFrame(message string) Frame {
	return Frame{Type: FrameError, Content: message, Done: true}
}

// Text returns the frame's text content, or "" for non-text frames.
func (f Frame) Text() string {
	s, _ := f.Content.(string)
	return s
}

// DecodeFrame parses a JSON frame, decoding card content into a CardGroup.
func DecodeFrame(data []byte) (Frame, error) {
	var wire struct {
		Type        string          `json:"type"`
		Content     json.RawMessage `json:"content"`
		Done        bool            `json:"done"`
		Placeholder string          `json:"placeholder"`
		StreamID    string          `json:"stream_id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Frame{}, fmt.Errorf("invalid frame: %w", err)
	}

	frame := Frame{Type: wire.Type, Done: wire.Done, Placeholder: wire.Placeholder, StreamID: wire.StreamID}
	switch wire.Type {
	case FrameCard:
		var group CardGroup
		if err := json.Unmarshal(wire.Content, &group); err != nil {
			return Frame{}, fmt.Errorf("invalid card frame: %w", err)
		}
		frame.Content = group
	case FrameText, FrameError:
		var text string
		if len(wire.Content) > 0 {
			if err := json.Unmarshal(wire.Content, &text); err != nil {
				return Frame{}, fmt.Errorf("invalid %s frame: %w", wire.Type, err)
			}
		}
		frame.Content = text
	default:
		return Frame{}, fmt.Errorf("unknown frame type %q", wire.Type)
	}
	return frame, nil
}
