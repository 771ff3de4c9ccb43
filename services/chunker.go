package services

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"medichat/models"
)

// Pacing constants. Each delay is the wait before the next frame goes out.
const (
	InitialDelay = 400 * time.Millisecond

	ChunkDelay         = 150 * time.Millisecond
	ChunkNewlineDelay  = 300 * time.Millisecond
	ChunkSentenceDelay = 400 * time.Millisecond

	WordDelay         = 50 * time.Millisecond
	WordMarkupDelay   = 100 * time.Millisecond
	WordClauseDelay   = 150 * time.Millisecond
	WordNewlineDelay  = 200 * time.Millisecond
	WordSentenceDelay = 300 * time.Millisecond
	WordMaxJitter     = 30 * time.Millisecond
	CardGapDelay      = 100 * time.Millisecond

	DefaultChunkSize = 8
)

// Step is one frame of a planned stream and the wait before sending it.
type Step struct {
	Delay time.Duration
	Frame models.Frame
}

// GroupResolver resolves placeholder keys to card groups.
type GroupResolver interface {
	Group(key string) (models.CardGroup, bool)
}

// Chunker turns a response text into a paced sequence of frames.
type Chunker struct {
	groups GroupResolver
	jitter func() time.Duration
}

// NewChunker creates a chunker that resolves placeholders against groups.
func NewChunker(groups GroupResolver) *Chunker {
	return &Chunker{
		groups: groups,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(WordMaxJitter)))
		},
	}
}

// WithJitter replaces the word-mode jitter source.
func (c *Chunker) WithJitter(jitter func() time.Duration) *Chunker {
	c.jitter = jitter
	return c
}

// Tokenize splits text into alternating runs of whitespace and
// non-whitespace. Joining the pieces gives back text.
func Tokenize(text string) []string {
	var pieces []string
	start := 0
	inSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			pieces = append(pieces, text[start:i])
			start = i
			inSpace = space
		}
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

// Plan builds the frame sequence for text. The last step is always an empty
// (or trailing-whitespace) text frame with Done set.
func (c *Chunker) Plan(text string, mode models.StreamMode, chunkSize int) []Step {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var units []string
	pieces := Tokenize(text)
	if mode == models.ModeWord {
		units = pieces
	} else {
		for i := 0; i < len(pieces); i += chunkSize {
			end := i + chunkSize
			if end > len(pieces) {
				end = len(pieces)
			}
			units = append(units, strings.Join(pieces[i:end], ""))
		}
	}

	p := planner{groups: c.groups, pending: InitialDelay}
	for _, unit := range units {
		endsWithCard := p.add(unit, mode == models.ModeChunk)
		switch {
		case endsWithCard && mode == models.ModeWord:
			p.pending += CardGapDelay
		case mode == models.ModeWord:
			p.pending += wordDelay(unit) + c.jitter()
		default:
			p.pending += chunkDelay(unit)
		}
	}

	p.steps = append(p.steps, Step{Delay: p.pending, Frame: models.TextFrame(p.carry, true)})
	return p.steps
}

// planner accumulates steps while walking the units of a response.
type planner struct {
	groups  GroupResolver
	steps   []Step
	pending time.Duration
	carry   string // whitespace held back from skipped units
}

// add emits the frames for one unit and reports whether its last frame was a
// card. In chunk mode a unit that is only whitespace is held back and
// prepended to the next text frame instead of being sent on its own.
func (p *planner) add(unit string, holdWhitespace bool) bool {
	segments := p.resolve(unit)

	if holdWhitespace && len(segments) == 1 && !segments[0].IsCard() && strings.TrimSpace(unit) == "" {
		p.carry += unit
		return false
	}

	endsWithCard := false
	for _, seg := range segments {
		if seg.IsCard() {
			group, _ := p.groups.Group(seg.Placeholder)
			if p.carry != "" {
				p.emit(models.TextFrame(p.carry, false))
				p.carry = ""
			}
			p.emit(models.CardFrame(seg.Placeholder, group))
			endsWithCard = true
			continue
		}
		text := p.carry + seg.Text
		p.carry = ""
		if text == "" {
			continue
		}
		p.emit(models.TextFrame(text, false))
		endsWithCard = false
	}
	return endsWithCard
}

func (p *planner) emit(frame models.Frame) {
	p.steps = append(p.steps, Step{Delay: p.pending, Frame: frame})
	p.pending = 0
}

// resolve splits unit at known placeholders. Markers whose group is unknown
// stay in the text untouched.
func (p *planner) resolve(unit string) []Segment {
	var out []Segment
	for _, seg := range SplitPlaceholders(unit) {
		if seg.IsCard() {
			if _, ok := p.groups.Group(seg.Placeholder); !ok {
				seg.Placeholder = ""
			}
		}
		if !seg.IsCard() && len(out) > 0 && !out[len(out)-1].IsCard() {
			out[len(out)-1].Text += seg.Text
			continue
		}
		out = append(out, seg)
	}
	if len(out) == 0 {
		out = append(out, Segment{Text: unit})
	}
	return out
}

func chunkDelay(unit string) time.Duration {
	switch {
	case strings.ContainsAny(unit, ".!?"):
		return ChunkSentenceDelay
	case strings.Contains(unit, "\n"):
		return ChunkNewlineDelay
	default:
		return ChunkDelay
	}
}

func wordDelay(word string) time.Duration {
	switch {
	case strings.ContainsAny(word, ".!?"):
		return WordSentenceDelay
	case strings.ContainsAny(word, ",;"):
		return WordClauseDelay
	case strings.Contains(word, "\n"):
		return WordNewlineDelay
	case strings.ContainsAny(word, "*#"):
		return WordMarkupDelay
	default:
		return WordDelay
	}
}
