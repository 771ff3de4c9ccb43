package services

import (
	"regexp"
	"strings"

	"medichat/models"
)

// placeholderPattern matches card markers such as [CARD_PLACEHOLDER_1].
var placeholderPattern = regexp.MustCompile(`\[CARD_PLACEHOLDER_(\d+)\]`)

// Segment is one part of a message: either plain text or a card marker.
type Segment struct {
	Text        string
	Placeholder string // group key, empty for text segments
}

// IsCard reports whether the segment is a card marker.
func (s Segment) IsCard() bool {
	return s.Placeholder != ""
}

// PlaceholderKey turns a bare group number ("1") into its key
// ("CARD_PLACEHOLDER_1"). Keys that already carry the prefix are returned as is.
func PlaceholderKey(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimSuffix(strings.TrimPrefix(id, "["), "]")
	if strings.HasPrefix(id, models.PlaceholderKeyPrefix) {
		return id
	}
	return models.PlaceholderKeyPrefix + id
}

// Marker returns the in-text marker for a group key.
func Marker(key string) string {
	return "[" + key + "]"
}

// Placeholders returns the group keys referenced in text, in order of appearance.
func Placeholders(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, models.PlaceholderKeyPrefix+m[1])
	}
	return keys
}

// SplitPlaceholders cuts text into text and card segments. Empty text
// segments are omitted; concatenating the segments (with markers restored)
// yields the original text.
func SplitPlaceholders(text string) []Segment {
	var segments []Segment
	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: text[last:loc[0]]})
		}
		segments = append(segments, Segment{
			Text:        text[loc[0]:loc[1]],
			Placeholder: models.PlaceholderKeyPrefix + text[loc[2]:loc[3]],
		})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}
