package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Translate_SendsRequestAndParsesResponse(t *testing.T) {
	var gotReq translateRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("path = %q, want /translate", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(translateResponse{Translation: "hola"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 4)
	got, err := c.Translate(context.Background(), "hello", "en", "es")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "hola" {
		t.Fatalf("got %q, want %q", got, "hola")
	}
	if gotReq.Text != "hello" || gotReq.SrcLang != "en" || gotReq.TgtLang != "es" {
		t.Fatalf("request body = %+v, want {hello en es}", gotReq)
	}
}

func TestClient_Translate_NonOKStatusIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend overloaded"))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 4)
	if _, err := c.Translate(context.Background(), "hello", "en", "es"); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}
