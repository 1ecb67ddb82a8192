package transcript

import (
	"regexp"
	"strings"
)

var digitDotPattern = regexp.MustCompile(`^\d+\.$`)

// Split applies a naive punctuation-based segmentation over a run of
// committed words, returning closed sentences and the trailing words
// that have not yet closed a sentence.
//
// Rules, applied per word in order:
//   - a word containing "?" or "!" anywhere closes the sentence here.
//   - a leading "." is stripped (a known ASR leading-dot artifact) and
//     the remaining rules apply to the stripped text.
//   - "..." is collapsed to a single ellipsis codepoint and never closes
//     a sentence.
//   - a word that is only digits followed by a dot (e.g. "3.") never
//     closes a sentence.
//   - any other "." closes the sentence here.
func Split(words []Word) (sentences []Segment, tail []Word) {
	var current []Word
	for _, w := range words {
		text := w.Text
		closes := false

		if strings.ContainsAny(text, "?!") {
			closes = true
		} else {
			if strings.HasPrefix(text, ".") {
				text = text[1:]
			}
			switch {
			case strings.Contains(text, "..."):
				text = strings.ReplaceAll(text, "...", "…")
			case digitDotPattern.MatchString(text):
				// not a sentence end
			case strings.Contains(text, "."):
				closes = true
			}
		}

		w.Text = text
		current = append(current, w)
		if closes {
			sentences = append(sentences, Concat(current))
			current = nil
		}
	}
	return sentences, current
}

// CheckWords applies the pathological-repetition sanity filter: when more
// than five words are present and the most frequent word text occurs in
// over half of them, the whole hypothesis is treated as noise and dropped.
func CheckWords(words []Word) []Word {
	if len(words) <= 5 {
		return words
	}

	counts := make(map[string]int, len(words))
	best := 0
	for _, w := range words {
		counts[w.Text]++
		if counts[w.Text] > best {
			best = counts[w.Text]
		}
	}
	if float64(best) > 0.5*float64(len(words)) {
		return nil
	}
	return words
}
