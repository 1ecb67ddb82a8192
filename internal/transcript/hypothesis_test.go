package transcript

import (
	"reflect"
	"testing"
)

func words(triples ...any) []Word {
	out := make([]Word, 0, len(triples)/3)
	for i := 0; i < len(triples); i += 3 {
		out = append(out, Word{
			Start: triples[i].(float64),
			End:   triples[i+1].(float64),
			Text:  triples[i+2].(string),
		})
	}
	return out
}

func texts(ws []Word) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Text
	}
	return out
}

func TestHypothesisBuffer_SimpleLocalAgreement(t *testing.T) {
	h := NewHypothesisBuffer(0)

	first := words(0.0, 0.5, "hello", 0.5, 1.0, "world")
	h.Insert(first, 0)
	if got := h.Flush(); len(got) != 0 {
		t.Fatalf("first flush should commit nothing, got %v", texts(got))
	}

	second := words(0.0, 0.5, "hello", 0.5, 1.0, "world", 1.0, 1.5, "today")
	h.Insert(second, 0)
	committed := h.Flush()

	if got, want := texts(committed), []string{"hello", "world"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("committed = %v, want %v", got, want)
	}
	if got, want := texts(h.Remaining()), []string{"today"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("remaining = %v, want %v", got, want)
	}
}

func TestHypothesisBuffer_NgramOverlapRemoval(t *testing.T) {
	h := &HypothesisBuffer{
		committed:        words(0.0, 0.5, "the", 0.5, 1.0, "cat"),
		lastCommittedEnd: 1.0,
	}

	new := words(0.9, 1.2, "the", 1.2, 1.5, "cat", 1.5, 2.0, "sat")
	h.Insert(new, 0)

	if got, want := texts(h.incoming), []string{"sat"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("incoming after dedup = %v, want %v", got, want)
	}
}

func TestHypothesisBuffer_RepeatedInsertFlushIsIdempotent(t *testing.T) {
	h := NewHypothesisBuffer(0)
	hyp := words(0.0, 0.5, "hi")

	// The first pass only primes pending; the second agreeing pass commits.
	h.Insert(hyp, 0)
	h.Flush()
	h.Insert(hyp, 0)
	if got, want := texts(h.Flush()), []string{"hi"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("first agreeing flush committed %v, want %v", got, want)
	}
	h.Insert(hyp, 0)
	if got := h.Flush(); len(got) != 0 {
		t.Fatalf("repeat flush of an already-committed hypothesis should commit nothing, got %v", texts(got))
	}
}

func TestHypothesisBuffer_PopCommittedBefore(t *testing.T) {
	h := NewHypothesisBuffer(0)
	h.committed = words(0.0, 1.0, "a", 1.0, 2.0, "b", 2.0, 3.0, "c")

	h.PopCommittedBefore(2.0)
	if got, want := texts(h.committed), []string{"c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("committed after pop = %v, want %v", got, want)
	}

	// a second pop at the same t is a no-op
	h.PopCommittedBefore(2.0)
	if got, want := texts(h.committed), []string{"c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("committed after second pop = %v, want %v", got, want)
	}
}
