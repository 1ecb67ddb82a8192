package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/vocalstream/translator/internal/audio"
	"github.com/vocalstream/translator/internal/metrics"
)

// VADClient talks to an external VAD sidecar (spec §6): it posts one chunk
// of audio and gets back at most one start/end event, matching the VAD
// interface's per-chunk contract.
type VADClient struct {
	url         string
	client      *http.Client
	sampleIndex int64
}

// NewVADClient creates a VAD client pointed at a VAD server URL.
func NewVADClient(serverURL string) *VADClient {
	return &VADClient{
		url:    serverURL,
		client: NewPooledHTTPClient(4, 5*time.Second),
	}
}

type vadEventResponse struct {
	Event string `json:"event"` // "", "start", or "end"
}

func (c *VADClient) Apply(chunk []float32) *VADEvent {
	defer func() { c.sampleIndex += int64(len(chunk)) }()

	wav := audio.SamplesToWAV(chunk, audio.SampleRate)
	req, err := http.NewRequestWithContext(context.Background(), "POST", c.url+"/vad", bytes.NewReader(wav))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("vad", "http").Inc()
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.Errors.WithLabelValues("vad", "status").Inc()
		return nil
	}

	var er vadEventResponse
	if json.NewDecoder(resp.Body).Decode(&er) != nil {
		return nil
	}

	switch er.Event {
	case "start":
		return &VADEvent{Kind: VADStart, SampleIndex: c.sampleIndex}
	case "end":
		return &VADEvent{Kind: VADEnd, SampleIndex: c.sampleIndex + int64(len(chunk))}
	default:
		return nil
	}
}

func (c *VADClient) Reset() {
	c.sampleIndex = 0
}
