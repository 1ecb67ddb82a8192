package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/vocalstream/translator/internal/audio"
	"github.com/vocalstream/translator/internal/metrics"
	"github.com/vocalstream/translator/internal/transcript"
)

// Transcriber is the external ASR collaborator (spec §6): it transcribes a
// full audio buffer with a lexical prompt prefix and returns timestamped
// words relative to sample 0.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, initPrompt string) ([]transcript.Word, error)
	TranscribeFile(ctx context.Context, path string) error
}

// Client talks to an HTTP ASR sidecar (e.g. whisper.cpp's server mode)
// that accepts multipart WAV uploads and returns word-level timestamps.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates an ASR HTTP client pointed at an ASR server URL.
func NewClient(serverURL string, poolSize int) *Client {
	return &Client{
		url:    serverURL,
		client: NewPooledHTTPClient(poolSize, 30*time.Second),
	}
}

// NewPooledHTTPClient creates an http.Client with connection pooling tuned
// for repeated same-host requests to an ASR sidecar.
func NewPooledHTTPClient(poolSize int, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:          poolSize,
			MaxIdleConnsPerHost:   poolSize,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}

type wordsResponse struct {
	Words []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"words"`
}

// Transcribe sends the full audio buffer (float32 @ 16kHz mono) plus the
// lexical prompt to the ASR server and returns word-level timestamps
// relative to sample 0, as required by the OnlineASRProcessor (§4.3).
func (c *Client) Transcribe(ctx context.Context, samples []float32, initPrompt string) ([]transcript.Word, error) {
	start := time.Now()

	body, contentType, err := buildMultipartAudio(samples, initPrompt)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/inference", body)
	if err != nil {
		return nil, fmt.Errorf("create asr request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("asr", "http").Inc()
		return nil, fmt.Errorf("asr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		metrics.Errors.WithLabelValues("asr", "status").Inc()
		return nil, fmt.Errorf("asr status %d: %s", resp.StatusCode, string(respBody))
	}

	var wr wordsResponse
	if err = json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("decode asr response: %w", err)
	}

	metrics.StageDuration.WithLabelValues("asr").Observe(time.Since(start).Seconds())

	words := make([]transcript.Word, len(wr.Words))
	for i, w := range wr.Words {
		words[i] = transcript.Word{Start: w.Start, End: w.End, Text: w.Text}
	}
	return words, nil
}

// TranscribeFile primes the ASR server with a known-good clip at startup
// (spec §6 warmup_file) so the first real utterance isn't penalized by a
// cold model load.
func (c *Client) TranscribeFile(ctx context.Context, path string) error {
	samples, rate, err := audio.LoadWAVFile(path)
	if err != nil {
		return fmt.Errorf("warmup load: %w", err)
	}
	if rate != audio.SampleRate {
		samples = audio.Resample(samples, rate, audio.SampleRate)
	}
	_, err = c.Transcribe(ctx, samples, "")
	return err
}

func buildMultipartAudio(samples []float32, prompt string) (*bytes.Buffer, string, error) {
	wavData := audio.SamplesToWAV(samples, audio.SampleRate)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err = part.Write(wavData); err != nil {
		return nil, "", fmt.Errorf("write wav data: %w", err)
	}
	if prompt != "" {
		if err = writer.WriteField("prompt", prompt); err != nil {
			return nil, "", fmt.Errorf("write prompt field: %w", err)
		}
	}
	if err = writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

// ValidServerURL reports whether a configured server URL parses as an
// absolute URL with a scheme and a host (the scheme is not restricted to
// http or https), used by internal/config's validation.
func ValidServerURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
