package asr

// VADEventKind distinguishes a voice-activity start from an end boundary.
type VADEventKind string

const (
	VADStart VADEventKind = "start"
	VADEnd   VADEventKind = "end"
)

// VADEvent is a single boundary reported by the external VAD collaborator
// (spec §6), naming the sample index (relative to the chunk stream the VAD
// has seen so far) where voice activity began or ended.
type VADEvent struct {
	Kind        VADEventKind
	SampleIndex int64
}

// VAD is the external voice-activity-detection collaborator. Apply is
// called once per incoming audio chunk and returns at most one event, per
// spec §6 ("invokes a callback... returns either nothing or exactly one
// event"). Reset clears any internal state between utterances/sessions.
type VAD interface {
	Apply(chunk []float32) *VADEvent
	Reset()
}

// PassthroughVAD treats the entire stream as one continuous utterance: it
// reports VADStart on the first chunk and never reports VADEnd. Used for
// file-replay mode and for ASR-only sessions with no VAD sidecar
// configured (spec §4 Supplemented Features).
type PassthroughVAD struct {
	started     bool
	sampleIndex int64
}

// NewPassthroughVAD creates a VAD that never segments the stream.
func NewPassthroughVAD() *PassthroughVAD {
	return &PassthroughVAD{}
}

func (p *PassthroughVAD) Apply(chunk []float32) *VADEvent {
	defer func() { p.sampleIndex += int64(len(chunk)) }()
	if p.started {
		return nil
	}
	p.started = true
	return &VADEvent{Kind: VADStart, SampleIndex: p.sampleIndex}
}

func (p *PassthroughVAD) Reset() {
	p.started = false
	p.sampleIndex = 0
}
