package asr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vocalstream/translator/internal/audio"
	"github.com/vocalstream/translator/internal/transcript"
)

// TrimMode selects how the Processor decides where to cut its audio
// re-transcription window (spec §4.3's buffer_trimming option).
type TrimMode string

const (
	TrimSentence TrimMode = "sentence"
	TrimSegment  TrimMode = "segment"
)

// maxPromptLen bounds the lexical-context prompt passed to the ASR on each
// re-transcription (spec §3's 200-character prompt invariant).
const maxPromptLen = 200

// TrimConfig is the buffer_trimming configuration: a mode plus a seconds
// threshold in (0, 30], validated at construction (spec §4.3, §7.1).
type TrimConfig struct {
	Mode    TrimMode
	Seconds float64
}

// Validate enforces the Configuration error kind (spec §7.1): invalid
// mode or out-of-range seconds must fail fast at construction.
func (c TrimConfig) Validate() error {
	if c.Mode != TrimSentence && c.Mode != TrimSegment {
		return fmt.Errorf("buffer_trimming mode must be %q or %q, got %q", TrimSentence, TrimSegment, c.Mode)
	}
	if c.Seconds <= 0 || c.Seconds > 30 {
		return fmt.Errorf("buffer_trimming seconds must be in (0, 30], got %v", c.Seconds)
	}
	return nil
}

// Processor is the Online ASR Processor (C3): it owns an audio ring-buffer
// and a hypothesis-reconciliation buffer, drives re-transcription on every
// process_iter, and decides when to trim the audio window.
type Processor struct {
	asr     Transcriber
	trim    TrimConfig
	sampler string // informational label for logging only

	audio             *audio.Buffer
	lastTranscribed   int
	hyp               *transcript.HypothesisBuffer
	prompt            string
	finalTranscript   []transcript.Word
	committedNotFinal []transcript.Word
}

// NewProcessor creates a Processor bound to an ASR collaborator and a
// buffer-trimming configuration, both fixed for the processor's lifetime.
func NewProcessor(transcriber Transcriber, trim TrimConfig) (*Processor, error) {
	if err := trim.Validate(); err != nil {
		return nil, fmt.Errorf("asr processor config: %w", err)
	}
	p := &Processor{asr: transcriber, trim: trim}
	p.Init(0)
	return p, nil
}

// Init resets the audio buffer, hypothesis buffer, prompt, and transcripts,
// anchoring the processor at the given wall-clock offset. Called at
// construction and whenever a VAC wrapper starts a new utterance.
func (p *Processor) Init(offsetS float64) {
	p.audio = audio.NewBuffer(offsetS)
	p.lastTranscribed = 0
	p.hyp = transcript.NewHypothesisBuffer(offsetS)
	p.prompt = ""
	p.finalTranscript = nil
	p.committedNotFinal = nil
}

// InsertAudio appends samples to the processor's audio buffer. Non-blocking.
func (p *Processor) InsertAudio(samples []float32) {
	p.audio.Append(samples)
}

// AudioSeconds reports the current re-transcription window length, used by
// callers to enforce the bounded-audio invariant (spec §8).
func (p *Processor) AudioSeconds() float64 {
	return p.audio.Seconds()
}

// ProcessIter runs the single re-transcription step driven by the
// transcription thread (spec §4.3). It transcribes the whole current audio
// buffer, reconciles the hypothesis, decides a trim point, and returns the
// newly-final committed segment plus the current best-guess uncommitted tail.
func (p *Processor) ProcessIter(ctx context.Context) (committed, uncommitted transcript.Segment) {
	if p.audio.Len() == p.lastTranscribed {
		return transcript.EmptySegment, transcript.EmptySegment
	}
	p.lastTranscribed = p.audio.Len()

	words, err := p.asr.Transcribe(ctx, p.audio.Samples(), p.prompt)
	if err != nil {
		slog.Warn("asr transcribe failed, treating as empty hypothesis", "error", err)
		words = nil
	}
	for i := range words {
		words[i].Start += p.audio.TimeOffset
		words[i].End += p.audio.TimeOffset
	}

	words = transcript.CheckWords(words)
	if len(words) == 0 {
		return transcript.EmptySegment, transcript.EmptySegment
	}

	p.hyp.Insert(words, 0)
	committedWords := p.hyp.Flush()

	completed := transcript.EmptySegment
	if len(committedWords) > 0 {
		p.committedNotFinal = append(p.committedNotFinal, committedWords...)

		completedWords := p.getCompletedWords()
		if len(completedWords) > 0 {
			p.finalTranscript = append(p.finalTranscript, completedWords...)
			completed = transcript.Concat(completedWords)
			p.prompt = capPrompt(p.prompt + completed.Text)
		}
	}

	uncommitted = concatTwoSegments(transcript.Concat(p.committedNotFinal), transcript.Concat(p.hyp.Remaining()))
	return completed, uncommitted
}

// getCompletedWords decides the trim point and returns the words that have
// moved from committed-not-final to final, per the buffer_trimming mode
// (spec §4.3).
func (p *Processor) getCompletedWords() []transcript.Word {
	if p.trim.Mode == TrimSentence {
		sentences, tail := transcript.Split(p.committedNotFinal)
		if len(sentences) > 0 {
			last := sentences[len(sentences)-1]
			p.chunkAt(*last.End)
			p.committedNotFinal = tail
			return wordsFromSentences(sentences)
		}
	}

	if p.audio.Seconds() < p.trim.Seconds {
		return nil
	}

	completed := p.chunkCompletedSegment(p.committedNotFinal)
	if p.trim.Mode == TrimSentence {
		slog.Warn("forced chunk after trimming threshold, no sentence boundary found", "seconds", p.trim.Seconds)
		if len(completed) == 0 {
			return nil
		}
		return []transcript.Word{{
			Start: completed[0].Start,
			End:   completed[len(completed)-1].End,
			Text:  transcript.Concat(completed).Text,
		}}
	}
	return completed
}

// chunkCompletedSegment implements "segment" mode trimming: walk backward
// over the word end timestamps, starting from the second-to-last word, to
// the latest one that is no later than the last word's end, and commit
// every word up to and including that one.
func (p *Processor) chunkCompletedSegment(words []transcript.Word) []transcript.Word {
	if len(words) <= 1 {
		return nil
	}

	ends := make([]float64, len(words))
	for i, w := range words {
		ends[i] = w.End
	}

	t := words[len(words)-1].End
	e := ends[len(ends)-2]
	for len(ends) > 2 && e > t {
		ends = ends[:len(ends)-1]
		e = ends[len(ends)-2]
	}

	if e > t {
		return nil
	}

	p.chunkAt(e)
	n := len(ends) - 1
	wordsToCommit := words[:n]
	p.committedNotFinal = words[n:]
	return wordsToCommit
}

// chunkAt discards the committed hypothesis and audio buffer prefix at or
// before t, re-anchoring both at t (spec §4.3).
func (p *Processor) chunkAt(t float64) {
	p.hyp.PopCommittedBefore(t)
	p.audio.TrimBefore(t)
}

// Finish transcribes the remaining audio once and returns it as the final
// committed segment, then clears the processor's buffers. Called when the
// caller knows the audio contains the last words of an utterance (spec §4.3).
func (p *Processor) Finish(ctx context.Context) (committed, uncommitted transcript.Segment) {
	words, err := p.asr.Transcribe(ctx, p.audio.Samples(), p.prompt)
	if err != nil {
		slog.Warn("asr transcribe failed on finish", "error", err)
		words = nil
	}
	for i := range words {
		words[i].Start += p.audio.TimeOffset
		words[i].End += p.audio.TimeOffset
	}

	finishSeg := transcript.Concat(words)

	p.committedNotFinal = nil
	p.audio = audio.NewBuffer(p.audio.TimeOffset)
	p.lastTranscribed = 0
	p.hyp = transcript.NewHypothesisBuffer(p.audio.TimeOffset)

	return finishSeg, transcript.EmptySegment
}

func capPrompt(s string) string {
	if len(s) <= maxPromptLen {
		return s
	}
	return s[len(s)-maxPromptLen:]
}

func wordsFromSentences(sentences []transcript.Segment) []transcript.Word {
	// Sentences are already-closed TimedSegments; the caller only needs
	// their concatenation for final_transcript bookkeeping, represented
	// here as single synthetic words spanning each sentence.
	words := make([]transcript.Word, len(sentences))
	for i, s := range sentences {
		words[i] = transcript.Word{Start: *s.Start, End: *s.End, Text: s.Text}
	}
	return words
}

func concatTwoSegments(first, second transcript.Segment) transcript.Segment {
	if first.End == nil {
		return second
	}
	if second.End == nil {
		return first
	}
	return transcript.Concat([]transcript.Word{
		{Start: *first.Start, End: *first.End, Text: first.Text},
		{Start: *second.Start, End: *second.End, Text: second.Text},
	})
}
