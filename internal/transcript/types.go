// Package transcript implements the streaming hypothesis-reconciliation
// buffer and sentence segmentation that turn successive, revisable ASR
// word hypotheses into a monotonic committed transcript.
package transcript

import "strings"

// Word is a single transcribed word with sub-second timestamps,
// offset-corrected to a monotonic global clock.
type Word struct {
	Start float64
	End   float64
	Text  string
}

// Segment is a concatenation of Words, or the empty segment when no
// text exists yet.
type Segment struct {
	Start *float64
	End   *float64
	Text  string
}

// EmptySegment is the canonical zero-value segment: no timestamps, no text.
var EmptySegment = Segment{}

// Concat joins words into a single Segment using the teacher's
// whitespace-joined text convention. An empty slice yields EmptySegment.
func Concat(words []Word) Segment {
	if len(words) == 0 {
		return EmptySegment
	}
	start := words[0].Start
	end := words[len(words)-1].End
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return Segment{Start: &start, End: &end, Text: strings.Join(parts, " ")}
}

// IsEmpty reports whether the segment carries no text.
func (s Segment) IsEmpty() bool {
	return s.Text == ""
}
