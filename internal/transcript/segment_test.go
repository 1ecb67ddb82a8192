package transcript

import "testing"

func TestSplit_QuestionAndBangClose(t *testing.T) {
	ws := words(0.0, 0.5, "really", 0.5, 1.0, "?", 1.0, 1.5, "yes")
	sentences, tail := Split(ws)

	if len(sentences) != 1 {
		t.Fatalf("expected 1 closed sentence, got %d", len(sentences))
	}
	if got, want := texts(tail), []string{"yes"}; len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("tail = %v, want %v", got, want)
	}
}

func TestSplit_LeadingDotStripped(t *testing.T) {
	ws := words(0.0, 0.5, ".hello")
	sentences, tail := Split(ws)

	if len(sentences) != 0 {
		t.Fatalf("leading dot alone must not close a sentence, got %d sentences", len(sentences))
	}
	if len(tail) != 1 || tail[0].Text != "hello" {
		t.Fatalf("leading dot not stripped: %+v", tail)
	}
}

func TestSplit_DigitDotIsNotABoundary(t *testing.T) {
	ws := words(0.0, 0.5, "3.", 0.5, 1.0, "oclock")
	sentences, tail := Split(ws)

	if len(sentences) != 0 {
		t.Fatalf("\"3.\" must not close a sentence, got %d sentences", len(sentences))
	}
	if len(tail) != 2 {
		t.Fatalf("expected both words in tail, got %v", tail)
	}
}

func TestSplit_EllipsisIsNotABoundary(t *testing.T) {
	ws := words(0.0, 0.5, "wait...", 0.5, 1.0, "ok")
	sentences, tail := Split(ws)

	if len(sentences) != 0 {
		t.Fatalf("ellipsis must not close a sentence, got %d sentences", len(sentences))
	}
	if tail[0].Text != "wait…" {
		t.Fatalf("ellipsis not collapsed: %q", tail[0].Text)
	}
}

func TestSplit_PlainDotCloses(t *testing.T) {
	ws := words(0.0, 0.5, "done.", 0.5, 1.0, "next")
	sentences, tail := Split(ws)

	if len(sentences) != 1 {
		t.Fatalf("expected 1 closed sentence, got %d", len(sentences))
	}
	if len(tail) != 1 || tail[0].Text != "next" {
		t.Fatalf("tail = %+v", tail)
	}
}

func TestCheckWords_PathologicalRepetition(t *testing.T) {
	ws := make([]Word, 0, 10)
	for i := range 10 {
		text := "word"
		if i < 6 {
			text = "um"
		}
		ws = append(ws, Word{Start: float64(i), End: float64(i) + 1, Text: text})
	}
	if got := CheckWords(ws); got != nil {
		t.Fatalf("expected pathological hypothesis dropped, got %d words", len(got))
	}
}

func TestCheckWords_ShortHypothesisNeverDropped(t *testing.T) {
	ws := words(0.0, 1.0, "um", 1.0, 2.0, "um", 2.0, 3.0, "um")
	if got := CheckWords(ws); len(got) != len(ws) {
		t.Fatalf("hypothesis of length <= 5 must pass through unchanged, got %v", got)
	}
}
