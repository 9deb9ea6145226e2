package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Segment is one diarized slice of a transcript. Offsets are seconds from the
// start of the recording.
type Segment struct {
	Speaker     string  `json:"speaker"`
	Text        string  `json:"text"`
	StartOffset float64 `json:"start_offset"`
	EndOffset   float64 `json:"end_offset"`
}

// Transcript is the recorded text of one meeting. Created exactly once per
// bot, immutable thereafter.
type Transcript struct {
	ID        uuid.UUID
	BotID     uuid.UUID
	Segments  []Segment
	FetchedAt time.Time
}

// NormalizeSegments drops empty segments and orders the rest by start offset
// ascending. The input slice is not modified.
func NormalizeSegments(in []Segment) []Segment {
	out := make([]Segment, 0, len(in))
	for _, s := range in {
		if s.Text == "" {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartOffset < out[j].StartOffset
	})
	return out
}

// Text renders the transcript as speaker-prefixed lines, the form fed into
// content generation prompts.
func (t *Transcript) Text() string {
	var b []byte
	for i, s := range t.Segments {
		if i > 0 {
			b = append(b, '\n')
		}
		if s.Speaker != "" {
			b = append(b, s.Speaker...)
			b = append(b, ':', ' ')
		}
		b = append(b, s.Text...)
	}
	return string(b)
}
