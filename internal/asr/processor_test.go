package asr

import (
	"context"
	"testing"

	"github.com/vocalstream/translator/internal/transcript"
)

// stubTranscriber always returns the same fixed word hypothesis, modeling
// an ASR collaborator whose output has stabilized across re-transcriptions.
type stubTranscriber struct {
	words []transcript.Word
}

func (s *stubTranscriber) Transcribe(ctx context.Context, samples []float32, initPrompt string) ([]transcript.Word, error) {
	return append([]transcript.Word(nil), s.words...), nil
}

func (s *stubTranscriber) TranscribeFile(ctx context.Context, path string) error {
	return nil
}

func TestProcessor_ProcessIter_NoNewAudioReturnsEmpty(t *testing.T) {
	p, err := NewProcessor(&stubTranscriber{}, TrimConfig{Mode: TrimSegment, Seconds: 15})
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	committed, uncommitted := p.ProcessIter(context.Background())
	if !committed.IsEmpty() || !uncommitted.IsEmpty() {
		t.Fatalf("expected empty result with no audio buffered, got committed=%+v uncommitted=%+v", committed, uncommitted)
	}
}

func TestProcessor_ProcessIter_CommitsOnceHypothesisStabilizes(t *testing.T) {
	words := []transcript.Word{
		{Start: 0.0, End: 0.3, Text: "hello"},
		{Start: 0.3, End: 0.6, Text: "done."},
	}
	transcriber := &stubTranscriber{words: words}
	p, err := NewProcessor(transcriber, TrimConfig{Mode: TrimSentence, Seconds: 15})
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	p.InsertAudio(make([]float32, 1600))
	committed, _ := p.ProcessIter(context.Background())
	if !committed.IsEmpty() {
		t.Fatalf("first hypothesis must not commit yet, got %+v", committed)
	}

	p.InsertAudio(make([]float32, 1600))
	committed, _ = p.ProcessIter(context.Background())
	if committed.Text != "hello done." {
		t.Fatalf("committed = %q, want %q once the hypothesis repeats and closes a sentence", committed.Text, "hello done.")
	}
}

func TestProcessor_AudioSecondsReflectsBuffer(t *testing.T) {
	p, err := NewProcessor(&stubTranscriber{}, TrimConfig{Mode: TrimSegment, Seconds: 15})
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	p.InsertAudio(make([]float32, 16000))
	if got := p.AudioSeconds(); got != 1.0 {
		t.Fatalf("AudioSeconds() = %v, want 1.0", got)
	}
}
