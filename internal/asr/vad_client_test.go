package asr

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVADClient_ApplyReportsStart(t *testing.T) {
	var gotPath, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"event":"start"}`))
	}))
	defer server.Close()

	c := NewVADClient(server.URL)
	event := c.Apply(make([]float32, 160))

	if gotPath != "/vad" {
		t.Fatalf("path = %q, want /vad", gotPath)
	}
	if gotContentType != "audio/wav" {
		t.Fatalf("content-type = %q, want audio/wav", gotContentType)
	}
	if event == nil || event.Kind != VADStart {
		t.Fatalf("event = %+v, want VADStart", event)
	}
	if event.SampleIndex != 0 {
		t.Fatalf("SampleIndex = %d, want 0", event.SampleIndex)
	}
}

func TestVADClient_ApplyReportsEndAtChunkBoundary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"event":"end"}`))
	}))
	defer server.Close()

	c := NewVADClient(server.URL)
	chunk := make([]float32, 160)
	event := c.Apply(chunk)

	if event == nil || event.Kind != VADEnd {
		t.Fatalf("event = %+v, want VADEnd", event)
	}
	if event.SampleIndex != int64(len(chunk)) {
		t.Fatalf("SampleIndex = %d, want %d", event.SampleIndex, len(chunk))
	}
}

func TestVADClient_ApplyReturnsNilWhenNoEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"event":""}`))
	}))
	defer server.Close()

	c := NewVADClient(server.URL)
	if event := c.Apply(make([]float32, 160)); event != nil {
		t.Fatalf("event = %+v, want nil", event)
	}
}

func TestVADClient_ApplyReturnsNilOnNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewVADClient(server.URL)
	if event := c.Apply(make([]float32, 160)); event != nil {
		t.Fatalf("event = %+v, want nil on server error", event)
	}
}

func TestVADClient_SampleIndexAdvancesAcrossChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"event":""}`))
	}))
	defer server.Close()

	c := NewVADClient(server.URL)
	chunk := make([]float32, 160)
	c.Apply(chunk)
	c.Apply(chunk)

	if c.sampleIndex != int64(2*len(chunk)) {
		t.Fatalf("sampleIndex = %d, want %d", c.sampleIndex, 2*len(chunk))
	}

	c.Reset()
	if c.sampleIndex != 0 {
		t.Fatalf("sampleIndex after Reset = %d, want 0", c.sampleIndex)
	}
}
