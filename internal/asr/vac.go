package asr

import (
	"context"
	"log/slog"

	"github.com/vocalstream/translator/internal/audio"
	"github.com/vocalstream/translator/internal/metrics"
	"github.com/vocalstream/translator/internal/transcript"
)

// onlineChunkSeconds is how much voiced audio accumulates between
// ProcessIter transcriptions while an utterance is in progress (spec §4.4).
const onlineChunkSeconds = 1.0

// VACProcessor is the VAC Wrapper (C4): it partitions a continuous audio
// stream into utterances using an external VAD collaborator and forwards
// only voiced audio into a wrapped Processor (C3).
type VACProcessor struct {
	inner *Processor
	vad   VAD
	trim  TrimConfig
	asr   Transcriber

	status            vacStatus
	preRoll           []float32
	sampleIndex       int64
	accumulatedVoice  int
	isCurrentlyFinal  bool
	startOffsetSample int64
}

type vacStatus int

const (
	vacSilence vacStatus = iota
	vacVoice
)

// NewVACProcessor creates a VAC wrapper around a fresh Processor built from
// the same ASR collaborator and trim configuration.
func NewVACProcessor(transcriber Transcriber, trim TrimConfig, vad VAD) (*VACProcessor, error) {
	inner, err := NewProcessor(transcriber, trim)
	if err != nil {
		return nil, err
	}
	return &VACProcessor{inner: inner, vad: vad, trim: trim, asr: transcriber, status: vacSilence}, nil
}

// InsertAudio feeds one chunk of audio through the VAD and, depending on the
// event it reports (or the absence of one), forwards audio into the wrapped
// Processor (spec §4.4).
func (v *VACProcessor) InsertAudio(chunk []float32) {
	event := v.vad.Apply(chunk)
	n := int64(len(chunk))

	if event == nil {
		if v.status == vacVoice {
			v.forward(chunk)
		} else {
			v.bufferPreRoll(chunk)
		}
		v.sampleIndex += n
		return
	}

	switch event.Kind {
	case VADStart:
		v.status = vacVoice
		v.startOffsetSample = event.SampleIndex
		offsetS := float64(v.startOffsetSample) / float64(audio.SampleRate)
		if v.inner.AudioSeconds() > 0 {
			slog.Warn("audio buffer is not empty, starting a new utterance anyway", "buffered_seconds", v.inner.AudioSeconds())
		}
		v.inner.Init(offsetS)
		v.accumulatedVoice = 0
		v.isCurrentlyFinal = false

		tail := chunk
		if event.SampleIndex >= v.sampleIndex && event.SampleIndex-v.sampleIndex < n {
			tail = chunk[event.SampleIndex-v.sampleIndex:]
		}
		v.forward(tail)
		v.preRoll = nil

	case VADEnd:
		head := chunk
		if event.SampleIndex >= v.sampleIndex && event.SampleIndex-v.sampleIndex < n {
			head = chunk[:event.SampleIndex-v.sampleIndex]
		}
		v.forward(head)
		v.isCurrentlyFinal = true
		v.status = vacSilence
		metrics.VACUtterancesTotal.Inc()
	}

	v.sampleIndex += n
}

func (v *VACProcessor) forward(chunk []float32) {
	if len(chunk) == 0 {
		return
	}
	v.inner.InsertAudio(chunk)
	v.accumulatedVoice += len(chunk)
}

// bufferPreRoll retains the last 0.5s of audio received while not in voice.
// The retained samples are cleared when an utterance starts; they are not
// forwarded to the wrapped Processor.
func (v *VACProcessor) bufferPreRoll(chunk []float32) {
	const maxPreRoll = audio.SampleRate / 2 // 0.5s
	v.preRoll = append(v.preRoll, chunk...)
	if len(v.preRoll) > maxPreRoll {
		v.preRoll = v.preRoll[len(v.preRoll)-maxPreRoll:]
	}
}

// ProcessIter runs the periodic transcription step: if the current
// utterance has just ended it finalizes it via the wrapped Processor,
// otherwise it re-transcribes once enough new voiced audio has accumulated.
func (v *VACProcessor) ProcessIter(ctx context.Context) (committed, uncommitted transcript.Segment) {
	if v.isCurrentlyFinal {
		committed, _ = v.inner.Finish(ctx)
		v.isCurrentlyFinal = false
		v.accumulatedVoice = 0
		return committed, transcript.EmptySegment
	}

	if v.status != vacVoice {
		return transcript.EmptySegment, transcript.EmptySegment
	}

	if v.accumulatedVoice < int(onlineChunkSeconds*audio.SampleRate) {
		return transcript.EmptySegment, transcript.EmptySegment
	}
	v.accumulatedVoice = 0
	return v.inner.ProcessIter(ctx)
}

// Finish forces the wrapped Processor to flush its remaining buffer,
// used at the end of a stream that never reports a VADEnd event (e.g.
// file-replay mode with no VAD sidecar).
func (v *VACProcessor) Finish(ctx context.Context) (committed, uncommitted transcript.Segment) {
	return v.inner.Finish(ctx)
}

// AudioSeconds returns the wrapped Processor's current re-transcription
// window length, for gauge reporting.
func (v *VACProcessor) AudioSeconds() float64 {
	return v.inner.AudioSeconds()
}

// Reset clears VAD and utterance state, used between sessions.
func (v *VACProcessor) Reset() {
	v.vad.Reset()
	v.status = vacSilence
	v.preRoll = nil
	v.sampleIndex = 0
	v.accumulatedVoice = 0
	v.isCurrentlyFinal = false
}
