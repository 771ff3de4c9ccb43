package services

import (
	"context"
	"io"
	"time"
	"unicode/utf8"
)

// Per-character delays of the typing animation.
const (
	TypeDelay         = 15 * time.Millisecond
	TypeSpaceDelay    = 30 * time.Millisecond
	TypeClauseDelay   = 100 * time.Millisecond
	TypeSentenceDelay = 150 * time.Millisecond
)

// CharDelay returns the pause after typing r.
func CharDelay(r rune) time.Duration {
	switch r {
	case '.', '!', '?':
		return TypeSentenceDelay
	case ',', ';':
		return TypeClauseDelay
	case ' ':
		return TypeSpaceDelay
	default:
		return TypeDelay
	}
}

// Typewriter reveals text one rune at a time.
type Typewriter struct {
	out   io.Writer
	scale float64
	sleep func(ctx context.Context, d time.Duration) error
}

// NewTypewriter writes to out; scale multiplies every delay.
func NewTypewriter(out io.Writer, scale float64) *Typewriter {
	if scale < 0 {
		scale = 0
	}
	return &Typewriter{out: out, scale: scale, sleep: sleepContext}
}

// Type writes text rune by rune, pausing after each.
func (t *Typewriter) Type(ctx context.Context, text string) error {
	buf := make([]byte, utf8.UTFMax)
	for _, r := range text {
		n := utf8.EncodeRune(buf, r)
		if _, err := t.out.Write(buf[:n]); err != nil {
			return err
		}
		if err := t.sleep(ctx, time.Duration(float64(CharDelay(r))*t.scale)); err != nil {
			return err
		}
	}
	return nil
}
