package audio

// SampleRate is the fixed rate, in Hz, at which all buffers in this
// package operate. Audio arriving at any other rate is resampled on
// ingest via Resample.
const SampleRate = 16000

// Buffer is a contiguous run of 32-bit float samples at SampleRate,
// anchored to a wall-clock offset. TimeOffset is the wall-clock time
// (seconds) that sample index 0 corresponds to within the current
// utterance; it advances every time the buffer is trimmed.
type Buffer struct {
	samples    []float32
	TimeOffset float64
}

// NewBuffer returns an empty buffer anchored at the given offset.
func NewBuffer(offset float64) *Buffer {
	return &Buffer{TimeOffset: offset}
}

// Append adds samples to the tail of the buffer.
func (b *Buffer) Append(samples []float32) {
	b.samples = append(b.samples, samples...)
}

// Len returns the number of samples currently buffered.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Seconds returns the buffered duration in seconds.
func (b *Buffer) Seconds() float64 {
	return float64(len(b.samples)) / float64(SampleRate)
}

// Samples returns the buffered samples. Callers must not mutate the
// returned slice; it aliases the buffer's storage.
func (b *Buffer) Samples() []float32 {
	return b.samples
}

// TrimBefore discards the prefix of the buffer ending at wall-clock time
// t (seconds), anchoring the new sample 0 at t. If t is at or before the
// current offset, this is a no-op. If t is beyond the buffered range,
// the buffer is emptied and anchored at t.
func (b *Buffer) TrimBefore(t float64) {
	if t <= b.TimeOffset {
		return
	}
	cut := int((t - b.TimeOffset) * float64(SampleRate))
	if cut >= len(b.samples) {
		b.samples = nil
	} else if cut > 0 {
		b.samples = append([]float32(nil), b.samples[cut:]...)
	}
	b.TimeOffset = t
}

// Reset clears the buffer and anchors it at the given offset.
func (b *Buffer) Reset(offset float64) {
	b.samples = nil
	b.TimeOffset = offset
}
