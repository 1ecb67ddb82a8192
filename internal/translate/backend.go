package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vocalstream/translator/internal/metrics"
)

// Backend is the external machine-translation collaborator (spec §6): it
// translates one piece of source-language text into one target language.
// Implementations may call a hosted API, a self-hosted sidecar, or a
// tokenizer+generate model pair.
type Backend interface {
	Translate(ctx context.Context, text, srcLang, tgtLang string) (string, error)
}

// Client talks to an HTTP MT sidecar (e.g. a self-hosted M2M100 server)
// that accepts a JSON {text, src_lang, tgt_lang} request and returns
// {translation}.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates an MT HTTP client pointed at a translation server URL.
func NewClient(serverURL string, poolSize int) *Client {
	return &Client{
		url:    serverURL,
		client: NewPooledHTTPClient(poolSize, 30*time.Second),
	}
}

// NewPooledHTTPClient creates an http.Client with connection pooling tuned
// for repeated same-host requests to an MT sidecar.
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

type translateRequest struct {
	Text    string `json:"text"`
	SrcLang string `json:"src_lang"`
	TgtLang string `json:"tgt_lang"`
}

type translateResponse struct {
	Translation string `json:"translation"`
}

// Translate posts one text segment to the MT sidecar and returns the
// translated string, recording latency and error metrics per spec §7.
func (c *Client) Translate(ctx context.Context, text, srcLang, tgtLang string) (string, error) {
	start := time.Now()

	body, err := json.Marshal(translateRequest{Text: text, SrcLang: srcLang, TgtLang: tgtLang})
	if err != nil {
		return "", fmt.Errorf("marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("translate", "http").Inc()
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.Errors.WithLabelValues("translate", "status").Inc()
		return "", fmt.Errorf("translate status %d: %s", resp.StatusCode, respBody)
	}

	var tr translateResponse
	if err = json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}

	metrics.StageDuration.WithLabelValues("translate").Observe(time.Since(start).Seconds())
	return tr.Translation, nil
}
