package transcript

// maxNgramLookback bounds how many trailing committed words are checked
// against the head of a new hypothesis when removing ASR-induced repeats.
const maxNgramLookback = 5

// ngramOverlapWindow is how close (seconds) a new hypothesis's first word
// must start to the last committed word's end before n-gram dedup runs at all.
const ngramOverlapWindow = 1.0

// lateWordSlack lets a word starting up to 0.1s before the last commit
// through, to tolerate ASR timestamp jitter right at the commit boundary.
const lateWordSlack = 0.1

// HypothesisBuffer reconciles successive word hypotheses from the ASR
// into a monotonic committed prefix, following the LocalAgreement-2 rule:
// commit a word once two consecutive hypotheses agree on it.
type HypothesisBuffer struct {
	committed []Word
	pending   []Word
	incoming  []Word

	lastCommittedEnd  float64
	lastCommittedText string
	hasCommittedText  bool
}

// NewHypothesisBuffer returns an empty buffer anchored at the given
// starting offset (used when a VAC wrapper (re)initializes an utterance).
func NewHypothesisBuffer(offset float64) *HypothesisBuffer {
	return &HypothesisBuffer{lastCommittedEnd: offset}
}

// Insert offsets new word timestamps by offsetS, drops words that land
// at or before the last commit (with a small slack), then removes any
// leading run of words that duplicates the tail of the already-committed
// transcript (an artifact some ASR models produce by re-emitting the last
// committed words at the start of the next hypothesis).
func (h *HypothesisBuffer) Insert(new []Word, offsetS float64) {
	shifted := make([]Word, 0, len(new))
	for _, w := range new {
		w.Start += offsetS
		w.End += offsetS
		if w.Start <= h.lastCommittedEnd-lateWordSlack {
			continue
		}
		shifted = append(shifted, w)
	}
	h.incoming = shifted

	if len(h.incoming) == 0 {
		return
	}
	if abs(h.incoming[0].Start-h.lastCommittedEnd) >= ngramOverlapWindow {
		return
	}

	maxN := len(h.committed)
	if len(h.incoming) < maxN {
		maxN = len(h.incoming)
	}
	if maxN > maxNgramLookback {
		maxN = maxNgramLookback
	}

	best := 0
	for n := 1; n <= maxN; n++ {
		if h.tailMatchesHead(n) {
			best = n
		}
	}
	if best > 0 {
		h.incoming = h.incoming[best:]
	}
}

func (h *HypothesisBuffer) tailMatchesHead(n int) bool {
	tail := h.committed[len(h.committed)-n:]
	head := h.incoming[:n]
	for i := range n {
		if tail[i].Text != head[i].Text {
			return false
		}
	}
	return true
}

// Flush emits the longest common prefix, by text equality, of the
// previous hypothesis (pending) and the current one (incoming). Matching
// words are popped from both, appended to the committed transcript, and
// returned. pending becomes the remainder of incoming; incoming is cleared.
func (h *HypothesisBuffer) Flush() []Word {
	var out []Word
	for len(h.pending) > 0 && len(h.incoming) > 0 {
		if h.pending[0].Text != h.incoming[0].Text {
			break
		}
		out = append(out, h.incoming[0])
		h.pending = h.pending[1:]
		h.incoming = h.incoming[1:]
	}

	if len(out) > 0 {
		last := out[len(out)-1]
		h.lastCommittedEnd = last.End
		h.lastCommittedText = last.Text
		h.hasCommittedText = true
	}

	h.pending = h.incoming
	h.incoming = nil
	h.committed = append(h.committed, out...)
	return out
}

// PopCommittedBefore drops words from the head of the committed transcript
// whose end falls at or before t, matching an audio trim to the same point.
func (h *HypothesisBuffer) PopCommittedBefore(t float64) {
	i := 0
	for i < len(h.committed) && h.committed[i].End <= t {
		i++
	}
	h.committed = h.committed[i:]
}

// Remaining returns the current pending tail: words accepted by the
// previous flush but not yet reconciled against a following hypothesis.
func (h *HypothesisBuffer) Remaining() []Word {
	return h.pending
}

// LastCommittedEnd returns the end timestamp of the most recently
// committed word, or the buffer's initial offset if nothing has committed.
func (h *HypothesisBuffer) LastCommittedEnd() float64 {
	return h.lastCommittedEnd
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
